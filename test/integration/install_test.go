//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/runtime"
	"github.com/btools-dev/btools/internal/scaffold"
)

// TestCreateWithInstall runs a real npm install. It needs node, npm and
// network access, so it only runs when BTOOLS_E2E_NPM is set.
func TestCreateWithInstall(t *testing.T) {
	if os.Getenv("BTOOLS_E2E_NPM") == "" {
		t.Skip("set BTOOLS_E2E_NPM=1 to run npm install end to end")
	}
	if _, err := exec.LookPath("npm"); err != nil {
		t.Skip("npm not available")
	}

	env := setupTestEnv(t)
	reg, tplFS := builtinRegistry(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var stderr bytes.Buffer
	tc := &runtime.Toolchain{Stdout: &bytes.Buffer{}, Stderr: &stderr}
	res, err := scaffold.New(reg, tplFS, fsutil.NewOS()).WithInstaller(tc).Create(ctx, scaffold.Options{
		Name:      "installed-ext",
		Directory: env.ProjectDir,
		Install:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v\n%s", err, stderr.String())
	}
	if !res.Installed {
		t.Fatal("expected Installed to be true")
	}
	assertDirExists(t, filepath.Join(res.ProjectPath, "node_modules", "vite"))
	assertFileExists(t, filepath.Join(res.ProjectPath, "package-lock.json"))
}
