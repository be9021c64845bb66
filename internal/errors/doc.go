// Package errors defines the coded error type shared by the btools packages.
// Operations that fail raise an *Error whose Code identifies the failure
// category (validation, filesystem, build) and whose Context carries the
// offending values for display.
package errors
