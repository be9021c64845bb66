package scaffold

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/logging"
	"github.com/btools-dev/btools/internal/manifest"
	"github.com/btools-dev/btools/internal/template"
)

// Defaults applied to Options left empty.
const (
	DefaultTemplate    = "vanilla"
	DefaultVersion     = "1.0.0"
	DefaultDescription = "A browser extension"
	maxProjectName     = 214
	manifestFile       = "manifest.json"
	packageFile        = "package.json"
)

var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Options describes the project to create.
type Options struct {
	Name            string
	Template        string
	Directory       string
	Version         string
	Description     string
	Author          string
	Permissions     []string
	HostPermissions []string
	// Install runs the Installer in the new project after it is in place.
	Install bool
}

// Result holds the outcome of a successful Create.
type Result struct {
	ProjectPath string
	Template    *template.Template
	Files       []string
	Warnings    []manifest.ValidationIssue
	Installed   bool
}

// Installer installs a project's npm dependencies.
type Installer interface {
	CheckNode(ctx context.Context, constraint string) (*semver.Version, error)
	Install(ctx context.Context, dir string) error
}

// Scaffolder creates projects from registered templates. Templates are read
// from one FileSystem and projects written to another, so the built-in
// templates can be served from the binary.
type Scaffolder struct {
	registry  *template.Registry
	engine    *template.Engine
	project   fsutil.FileSystem
	validator *manifest.Validator
	installer Installer
	log       zerolog.Logger
}

// New returns a Scaffolder rendering templates from the registry's
// filesystem into project.
func New(registry *template.Registry, templates, project fsutil.FileSystem) *Scaffolder {
	return &Scaffolder{
		registry:  registry,
		engine:    template.NewEngine(templates),
		project:   project,
		validator: manifest.NewValidator(project),
		log:       logging.GetLogger("scaffold"),
	}
}

// WithInstaller sets the Installer used when Options.Install is set.
func (s *Scaffolder) WithInstaller(i Installer) *Scaffolder {
	s.installer = i
	return s
}

// Create renders the template into a temporary directory, adds a generated
// manifest.json, checks it and moves the project to Directory/Name. On any
// failure before the move nothing is left at the destination.
func (s *Scaffolder) Create(ctx context.Context, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	done := logging.LogOperationStart(s.log, "create "+opts.Name)
	defer done()

	if err := ValidateProjectName(opts.Name); err != nil {
		return nil, err
	}

	tpl, ok := s.registry.Get(opts.Template)
	if !ok {
		return nil, errors.Validation(
			fmt.Sprintf("Template %q not found. Available templates: %s", opts.Template, strings.Join(s.registry.IDs(), ", ")),
			map[string]any{"template": opts.Template},
		)
	}

	projectPath := filepath.Join(opts.Directory, opts.Name)
	if s.project.Exists(projectPath) {
		return nil, errors.FileSystem("Directory already exists: "+projectPath, map[string]any{"path": projectPath})
	}

	m, err := manifest.Generate(manifest.Config{
		Name:            opts.Name,
		Version:         opts.Version,
		Description:     opts.Description,
		Permissions:     opts.Permissions,
		HostPermissions: opts.HostPermissions,
		Author:          opts.Author,
	})
	if err != nil {
		return nil, err
	}

	deps, err := ParseDependencies(tpl.Dependencies)
	if err != nil {
		return nil, err
	}
	devDeps, err := ParseDependencies(tpl.DevDependencies)
	if err != nil {
		return nil, err
	}

	tmp, err := s.project.CreateTempDir()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.project.Remove(tmp); err != nil {
			s.log.Warn().Err(err).Str("path", tmp).Msg("failed to remove temporary directory")
		}
	}()
	staging := filepath.Join(tmp, opts.Name)

	vars := template.NewContext(opts.Name, opts.Version, opts.Description, opts.Author)
	files, err := s.engine.Render(ctx, tpl.Files, vars)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files)+1)
	for _, f := range files {
		content := []byte(f.Content)
		if f.Path == packageFile {
			content, err = updatePackageJSON(content, packageUpdate{
				fields: [][2]string{
					{"name", opts.Name},
					{"version", opts.Version},
					{"description", opts.Description},
				},
				dependencies:    deps,
				devDependencies: devDeps,
			})
			if err != nil {
				return nil, err
			}
		}
		if err := s.project.WriteFile(filepath.Join(staging, f.Path), content); err != nil {
			return nil, err
		}
		written = append(written, filepath.ToSlash(f.Path))
	}

	data, err := manifest.Encode(m)
	if err != nil {
		return nil, errors.Internal("Failed to encode manifest", err)
	}
	if err := s.project.WriteFile(filepath.Join(staging, manifestFile), data); err != nil {
		return nil, err
	}
	written = append(written, manifestFile)

	check, err := s.validator.ValidateComplete(ctx, m, staging)
	if err != nil {
		return nil, err
	}
	warnings := make([]manifest.ValidationIssue, 0, len(check.Issues))
	for _, issue := range check.Issues {
		issue.Severity = manifest.SeverityWarning
		warnings = append(warnings, issue)
		s.log.Warn().Str("field", issue.Field).Msg(issue.Message)
	}

	if err := s.project.MoveAtomic(staging, projectPath); err != nil {
		return nil, err
	}
	s.log.Info().Str("path", projectPath).Str("template", tpl.ID).Msg("project created")

	sort.Strings(written)
	res := &Result{
		ProjectPath: projectPath,
		Template:    tpl,
		Files:       written,
		Warnings:    warnings,
	}

	if opts.Install {
		if err := s.install(ctx, tpl, projectPath); err != nil {
			return res, err
		}
		res.Installed = true
	}
	return res, nil
}

func (s *Scaffolder) install(ctx context.Context, tpl *template.Template, dir string) error {
	if s.installer == nil {
		return errors.Build("No installer configured", map[string]any{"path": dir})
	}
	v, err := s.installer.CheckNode(ctx, tpl.Engines["node"])
	if err != nil {
		return err
	}
	s.log.Debug().Str("node", v.String()).Msg("node version accepted")
	return s.installer.Install(ctx, dir)
}

// ValidateProjectName checks name against npm package naming rules.
func ValidateProjectName(name string) error {
	if name == "" {
		return errors.Validation("Project name is required", nil)
	}
	if len(name) > maxProjectName {
		return errors.Validation(
			fmt.Sprintf("Project name must be %d characters or less", maxProjectName),
			map[string]any{"name": name},
		)
	}
	if !projectNamePattern.MatchString(name) {
		return errors.Validation(
			"Invalid project name: "+name+". Use lowercase letters, digits, '-', '.' or '_'",
			map[string]any{"name": name},
		)
	}
	return nil
}

func withDefaults(opts Options) Options {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Directory == "" {
		opts.Directory = "."
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Description == "" {
		opts.Description = DefaultDescription
	}
	return opts
}
