// Package fsutil provides the filesystem capability used throughout btools.
// The FileSystem interface is implemented on top of afero so the same code runs
// against the host filesystem, an embedded template tree, or an in-memory
// filesystem in tests.
package fsutil
