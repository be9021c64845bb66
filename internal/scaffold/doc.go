// Package scaffold creates new browser-extension projects. It powers the
// "create" command: a registered template is rendered into a temporary
// directory, package.json receives the template's dependencies, a
// manifest.json is generated and checked against the rendered files, and the
// finished tree is moved into place in one step.
package scaffold
