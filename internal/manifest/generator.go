package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/btools-dev/btools/internal/errors"
)

// Fixed project layout every generated manifest points at.
const (
	PopupPath         = "popup.html"
	ServiceWorkerPath = "background.js"
	ContentScriptPath = "content.js"
	allURLs           = "<all_urls>"
)

// Defaults used when package metadata lacks a name or version.
const (
	DefaultName    = "My Extension"
	DefaultVersion = "1.0.0"
)

// Config is the input to Generate.
type Config struct {
	Name            string
	Version         string
	Description     string
	Permissions     []string
	HostPermissions []string
	Author          string
	HomepageURL     string
}

// Generate builds a Manifest V3 document from cfg. It fails with a
// CodeValidation error carrying every violated rule when cfg is invalid;
// no manifest is returned in that case.
func Generate(cfg Config) (*Manifest, error) {
	if issues := validateConfig(cfg); len(issues) > 0 {
		return nil, errors.Validation(
			fmt.Sprintf("Invalid manifest configuration: %s", summarize(issues)),
			map[string]any{"issues": issues},
		)
	}

	m := &Manifest{
		ManifestVersion: Version,
		Name:            cfg.Name,
		Version:         cfg.Version,
		Description:     cfg.Description,
		Action: &Action{
			DefaultPopup: PopupPath,
			DefaultIcon:  &Icon{Sizes: DefaultIcons()},
		},
		Background: &Background{
			ServiceWorker: ServiceWorkerPath,
			Type:          "module",
		},
		ContentScripts: []ContentScript{{
			Matches: []string{allURLs},
			JS:      []string{ContentScriptPath},
		}},
		Icons:       DefaultIcons(),
		Author:      cfg.Author,
		HomepageURL: cfg.HomepageURL,
	}
	if len(cfg.Permissions) > 0 {
		m.Permissions = append([]string(nil), cfg.Permissions...)
	}
	if len(cfg.HostPermissions) > 0 {
		m.HostPermissions = append([]string(nil), cfg.HostPermissions...)
	}
	return m, nil
}

// ConfigIssues returns the rule violations attached to an error from
// Generate, or nil.
func ConfigIssues(err error) []ValidationIssue {
	e, ok := errors.As(err)
	if !ok {
		return nil
	}
	issues, _ := e.Context["issues"].([]ValidationIssue)
	return issues
}

func summarize(issues []ValidationIssue) string {
	out := ""
	for i, issue := range issues {
		if i > 0 {
			out += "; "
		}
		out += issue.Field + ": " + issue.Message
	}
	return out
}

// PackageJSON is the subset of npm package metadata used to seed a manifest.
type PackageJSON struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Author      PackageAuthor `json:"author"`
	Homepage    string        `json:"homepage"`
}

// PackageAuthor accepts both the "Name <email>" string form and the
// {"name": ...} object form of the author field.
type PackageAuthor struct {
	Name string
}

// UnmarshalJSON keeps the author name and ignores any other shape.
func (a *PackageAuthor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		a.Name = obj.Name
	}
	return nil
}

// ParsePackageJSON decodes package.json content.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return &pkg, nil
}

// FromPackageJSON derives a Config from package metadata. It never fails.
func FromPackageJSON(pkg PackageJSON) Config {
	cfg := Config{
		Name:        pkg.Name,
		Version:     pkg.Version,
		Description: pkg.Description,
		Author:      pkg.Author.Name,
		HomepageURL: pkg.Homepage,
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	return cfg
}

// Overrides are caller-supplied Config values. Nil fields are not supplied.
type Overrides struct {
	Name            *string
	Version         *string
	Description     *string
	Permissions     []string
	HostPermissions []string
	Author          *string
	HomepageURL     *string
}

// Merge returns cfg with every supplied override applied.
func (o *Overrides) Merge(cfg Config) Config {
	if o == nil {
		return cfg
	}
	setString(&cfg.Name, o.Name)
	setString(&cfg.Version, o.Version)
	setString(&cfg.Description, o.Description)
	setString(&cfg.Author, o.Author)
	setString(&cfg.HomepageURL, o.HomepageURL)
	if o.Permissions != nil {
		cfg.Permissions = o.Permissions
	}
	if o.HostPermissions != nil {
		cfg.HostPermissions = o.HostPermissions
	}
	return cfg
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// GenerateFromPackageJSON derives a Config from pkg, applies overrides and
// generates the manifest.
func GenerateFromPackageJSON(pkg PackageJSON, overrides *Overrides) (*Manifest, error) {
	return Generate(overrides.Merge(FromPackageJSON(pkg)))
}
