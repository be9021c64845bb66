package fsutil

import (
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/btools-dev/btools/internal/errors"
)

// tempPrefix names the directories created by CreateTempDir.
const tempPrefix = "btools-"

// FileSystem is the filesystem capability consumed by the validator, the
// template engine and the scaffolder. All paths are normalized before use and
// every failure is returned as an errors.CodeFileSystem error.
type FileSystem interface {
	EnsureDir(path string) error
	CopyDir(src, dest string) error
	WriteFile(path string, content []byte) error
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
	IsDir(path string) bool
	ReadDir(path string) ([]os.FileInfo, error)
	Remove(path string) error
	CreateTempDir() (string, error)
	MoveAtomic(src, dest string) error
}

// AferoFS implements FileSystem on top of an afero.Fs.
type AferoFS struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(fs afero.Fs) *AferoFS {
	return &AferoFS{fs: fs}
}

// NewOS returns a FileSystem backed by the host filesystem.
func NewOS() *AferoFS {
	return New(afero.NewOsFs())
}

// NewMemory returns an empty in-memory FileSystem.
func NewMemory() *AferoFS {
	return New(afero.NewMemMapFs())
}

// NewReadOnly exposes an io/fs.FS (typically an embed.FS) as a FileSystem.
// Write operations fail.
func NewReadOnly(fsys iofs.FS) *AferoFS {
	return New(afero.FromIOFS{FS: fsys})
}

// EnsureDir creates path and any missing parents.
func (a *AferoFS) EnsureDir(path string) error {
	p := normalize(path)
	if err := a.fs.MkdirAll(p, 0o755); err != nil {
		return wrap("Failed to ensure directory exists: "+path, err, map[string]any{"path": path})
	}
	return nil
}

// CopyDir recursively copies src to dest. It fails if src does not exist or
// dest already exists.
func (a *AferoFS) CopyDir(src, dest string) error {
	s, d := normalize(src), normalize(dest)

	if !a.Exists(s) {
		return errors.FileSystem("Source directory does not exist: "+src, map[string]any{"src": src})
	}
	if a.Exists(d) {
		return errors.FileSystem("Destination already exists: "+dest, map[string]any{"dest": dest})
	}

	ctx := map[string]any{"src": src, "dest": dest}
	if err := a.copyTree(s, d); err != nil {
		// A partial copy must not be left at the destination.
		if rmErr := a.fs.RemoveAll(d); rmErr != nil {
			ctx["cleanup_error"] = rmErr.Error()
		}
		return wrap("Failed to copy directory: "+src+" -> "+dest, err, ctx)
	}
	return nil
}

// WriteFile writes content to path, creating parent directories as needed.
func (a *AferoFS) WriteFile(path string, content []byte) error {
	p := normalize(path)
	if err := a.EnsureDir(filepath.Dir(p)); err != nil {
		return err
	}
	if err := afero.WriteFile(a.fs, p, content, 0o644); err != nil {
		return wrap("Failed to write file: "+path, err, map[string]any{"path": path})
	}
	return nil
}

// ReadFile returns the contents of path. It fails if the file does not exist.
func (a *AferoFS) ReadFile(path string) ([]byte, error) {
	p := normalize(path)
	if !a.Exists(p) {
		return nil, errors.FileSystem("File does not exist: "+path, map[string]any{"path": path})
	}
	data, err := afero.ReadFile(a.fs, p)
	if err != nil {
		return nil, wrap("Failed to read file: "+path, err, map[string]any{"path": path})
	}
	return data, nil
}

// Exists reports whether a file or directory exists at path.
func (a *AferoFS) Exists(path string) bool {
	_, err := a.fs.Stat(normalize(path))
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (a *AferoFS) IsDir(path string) bool {
	info, err := a.fs.Stat(normalize(path))
	return err == nil && info.IsDir()
}

// ReadDir lists the entries of a directory, sorted by name.
func (a *AferoFS) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(a.fs, normalize(path))
	if err != nil {
		return nil, wrap("Failed to read directory: "+path, err, map[string]any{"path": path})
	}
	return entries, nil
}

// Remove deletes a file or directory tree. Missing paths are not an error.
func (a *AferoFS) Remove(path string) error {
	p := normalize(path)
	if !a.Exists(p) {
		return nil
	}
	if err := a.fs.RemoveAll(p); err != nil {
		return wrap("Failed to remove: "+path, err, map[string]any{"path": path})
	}
	return nil
}

// CreateTempDir creates a fresh directory under the system temp directory.
func (a *AferoFS) CreateTempDir() (string, error) {
	dir, err := afero.TempDir(a.fs, "", tempPrefix)
	if err != nil {
		return "", wrap("Failed to create temporary directory", err, nil)
	}
	return normalize(dir), nil
}

// MoveAtomic moves src to dest with a rename. When the rename fails (for
// example across devices) it falls back to copy then remove. It fails if src
// is missing or dest already exists.
func (a *AferoFS) MoveAtomic(src, dest string) error {
	s, d := normalize(src), normalize(dest)

	if !a.Exists(s) {
		return errors.FileSystem("Source does not exist: "+src, map[string]any{"src": src})
	}
	if a.Exists(d) {
		return errors.FileSystem("Destination already exists: "+dest, map[string]any{"dest": dest})
	}
	if err := a.EnsureDir(filepath.Dir(d)); err != nil {
		return err
	}

	if err := a.fs.Rename(s, d); err == nil {
		return nil
	}

	ctx := map[string]any{"src": src, "dest": dest}
	if err := a.copyTree(s, d); err != nil {
		// A partial copy must not be left at the destination.
		if rmErr := a.fs.RemoveAll(d); rmErr != nil {
			ctx["cleanup_error"] = rmErr.Error()
		}
		return wrap("Failed to move atomically: "+src+" -> "+dest, err, ctx)
	}
	if err := a.fs.RemoveAll(s); err != nil {
		return wrap("Failed to move atomically: "+src+" -> "+dest, err, ctx)
	}
	return nil
}

// copyTree copies a file or directory tree, preserving modes.
func (a *AferoFS) copyTree(src, dst string) error {
	info, err := a.fs.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return a.copyFile(src, dst, info.Mode())
	}

	if err := a.fs.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := afero.ReadDir(a.fs, src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := a.copyTree(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Mode().IsRegular() {
			if err := a.copyFile(srcPath, dstPath, entry.Mode()); err != nil {
				return err
			}
		}
		// Symlinks and special files are skipped.
	}
	return nil
}

func (a *AferoFS) copyFile(src, dst string, mode os.FileMode) error {
	data, err := afero.ReadFile(a.fs, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(a.fs, dst, data, mode.Perm())
}

// normalize resolves ".", ".." and duplicate separators.
func normalize(path string) string {
	return filepath.Clean(path)
}

func wrap(msg string, err error, ctx map[string]any) error {
	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["error"] = err.Error()
	return errors.Wrap(errors.CodeFileSystem, msg, err, ctx)
}
