// Package templates embeds the built-in project templates.
package templates

import "embed"

// FS holds one directory per template id, each with a template.json and a
// files/ tree.
//
//go:embed all:vanilla
var FS embed.FS
