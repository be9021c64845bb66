// Package runtime wraps the external Node.js toolchain used after a project
// is scaffolded: checking the installed node version against a template's
// engines constraint and running npm install. Callers own timeouts through
// the context.
package runtime
