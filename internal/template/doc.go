// Package template renders project templates and keeps the registry of
// templates available to the scaffolder.
//
// The template language is deliberately small: {{name}} substitutes a
// variable and {{#if name}}...{{/if}} keeps its body only when name is set
// to a non-empty value. Blocks do not nest and there are no loops, partials
// or escaping rules.
package template
