// Package cli defines the Cobra command tree for the btools CLI. Each file
// in this package registers one top-level command (create, validate,
// manifest, templates, config, version) with the root command. Commands only
// parse flags and format output; the work happens in the internal packages.
package cli
