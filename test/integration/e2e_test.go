//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/manifest"
	"github.com/btools-dev/btools/internal/scaffold"
	"github.com/btools-dev/btools/internal/template"
)

// TestFullFlowCreateAndValidate tests the complete flow:
// create project -> validate manifest -> break it -> validate again.
func TestFullFlowCreateAndValidate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	reg, tplFS := builtinRegistry(t)
	osFS := fsutil.NewOS()

	// Step 1: Create the project.
	res, err := scaffold.New(reg, tplFS, osFS).Create(ctx, scaffold.Options{
		Name:            "flow-ext",
		Directory:       env.ProjectDir,
		Permissions:     []string{"storage", "activeTab"},
		HostPermissions: []string{"https://*.example.com/*"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	projectDir := filepath.Join(env.ProjectDir, "flow-ext")
	assertDirExists(t, projectDir)
	for _, f := range []string{"manifest.json", "package.json", "popup.html", "background.js", "content.js", "icons/icon128.png"} {
		assertFileExists(t, filepath.Join(projectDir, f))
	}
	assertFileContains(t, filepath.Join(projectDir, "manifest.json"), `"https://*.example.com/*"`)
	assertFileContains(t, filepath.Join(projectDir, "package.json"), `"@crxjs/vite-plugin"`)

	// Step 2: The generated manifest passes every check.
	doc, err := manifest.ParseFile(osFS, filepath.Join(projectDir, "manifest.json"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	checker, err := manifest.NewJSONSchemaChecker()
	if err != nil {
		t.Fatalf("NewJSONSchemaChecker: %v", err)
	}
	v := manifest.NewValidator(osFS, manifest.WithSchemaChecker(checker))
	if r := v.ValidateWithJSONSchema(doc); !r.Valid {
		t.Fatalf("schema validation failed: %v", r.Issues)
	}
	r, err := v.ValidateComplete(ctx, doc, projectDir)
	if err != nil {
		t.Fatalf("ValidateComplete: %v", err)
	}
	if !r.Valid {
		t.Fatalf("complete validation failed: %v", r.Issues)
	}

	// Step 3: Removing a referenced file is reported.
	if err := os.Remove(filepath.Join(projectDir, "background.js")); err != nil {
		t.Fatal(err)
	}
	r, err = v.ValidateComplete(ctx, doc, projectDir)
	if err != nil {
		t.Fatalf("ValidateComplete: %v", err)
	}
	if r.Valid || len(r.Issues) != 1 || r.Issues[0].Field != "background.service_worker" {
		t.Errorf("expected one background.service_worker issue, got %+v", r.Issues)
	}
}

// TestCustomTemplatesDir creates a project from a template on disk that
// lacks files the generated manifest references.
func TestCustomTemplatesDir(t *testing.T) {
	env := setupTestEnv(t)
	tplDir := filepath.Join(env.HomeDir, "templates")
	setupTemplatesDir(t, tplDir)

	osFS := fsutil.NewOS()
	reg, err := template.LoadRegistry(osFS, tplDir)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	res, err := scaffold.New(reg, osFS, osFS).Create(context.Background(), scaffold.Options{
		Name:      "minimal",
		Directory: env.ProjectDir,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	projectDir := filepath.Join(env.ProjectDir, "minimal")
	assertFileContains(t, filepath.Join(projectDir, "popup.html"), "<h1>minimal</h1>")
	assertFileContains(t, filepath.Join(projectDir, "package.json"), `"lodash": "^4.17.21"`)
	assertFileNotExists(t, filepath.Join(projectDir, "background.js"))

	fields := map[string]bool{}
	for _, w := range res.Warnings {
		if w.Severity != manifest.SeverityWarning {
			t.Errorf("warning %s has severity %q", w.Field, w.Severity)
		}
		fields[w.Field] = true
	}
	for _, f := range []string{"background.service_worker", "content_scripts[0].js[0]", "icons.16"} {
		if !fields[f] {
			t.Errorf("expected a warning for %s, got %v", f, res.Warnings)
		}
	}
}

// TestCreateFailureLeavesNothing checks that a rejected project never
// reaches the destination.
func TestCreateFailureLeavesNothing(t *testing.T) {
	env := setupTestEnv(t)
	reg, tplFS := builtinRegistry(t)
	s := scaffold.New(reg, tplFS, fsutil.NewOS())

	_, err := s.Create(context.Background(), scaffold.Options{
		Name:      "bad-version",
		Directory: env.ProjectDir,
		Version:   "1.0.0-beta",
	})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertFileNotExists(t, filepath.Join(env.ProjectDir, "bad-version"))
}
