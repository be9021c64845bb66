//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/template"
	"github.com/btools-dev/btools/templates"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // BTOOLS_HOME, holds config.yaml
	ProjectDir string // parent directory new projects are created in
}

// setupTestEnv creates isolated temp directories and points BTOOLS_HOME at
// one of them. The env var is restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
	}
	t.Setenv("BTOOLS_HOME", env.HomeDir)
	return env
}

// builtinRegistry loads the templates compiled into the binary.
func builtinRegistry(t *testing.T) (*template.Registry, fsutil.FileSystem) {
	t.Helper()
	fs := fsutil.NewReadOnly(templates.FS)
	reg, err := template.LoadRegistry(fs, ".")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	return reg, fs
}

// setupTemplatesDir writes a custom "vanilla" template to dir with a popup
// only, so generated manifests reference files the template lacks.
func setupTemplatesDir(t *testing.T, dir string) {
	t.Helper()

	writeFile(t, filepath.Join(dir, "vanilla", "template.json"), `{
  "id": "vanilla",
  "name": "Minimal",
  "description": "Popup only",
  "dependencies": ["lodash@^4.17.21"],
  "devDependencies": []
}
`)
	writeFile(t, filepath.Join(dir, "vanilla", "files", "package.json"), `{"name": "{{projectName}}", "version": "{{version}}"}`)
	writeFile(t, filepath.Join(dir, "vanilla", "files", "popup.html"), "<h1>{{projectName}}</h1>\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
