package scaffold

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/btools-dev/btools/internal/errors"
)

// Dependency is an npm package requirement written as "name@range".
type Dependency struct {
	Name  string
	Range string
}

// ParseDependency splits "name@range". Scoped names ("@scope/pkg@^1.0.0")
// are supported and a missing range means "*".
func ParseDependency(spec string) (Dependency, error) {
	spec = strings.TrimSpace(spec)
	d := Dependency{Name: spec, Range: "*"}
	if at := strings.LastIndex(spec, "@"); at > 0 {
		d.Name, d.Range = spec[:at], spec[at+1:]
	}

	if d.Name == "" || d.Range == "" {
		return Dependency{}, errors.Validation("Invalid dependency: "+spec, map[string]any{"dependency": spec})
	}
	if d.Range != "latest" {
		if _, err := semver.NewConstraint(d.Range); err != nil {
			return Dependency{}, errors.Validation(
				fmt.Sprintf("Invalid version range for %s: %s", d.Name, d.Range),
				map[string]any{"dependency": spec},
			)
		}
	}
	return d, nil
}

// ParseDependencies parses every spec, stopping at the first invalid one.
func ParseDependencies(specs []string) ([]Dependency, error) {
	deps := make([]Dependency, 0, len(specs))
	for _, spec := range specs {
		d, err := ParseDependency(spec)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, nil
}

// packageUpdate describes the changes applied to a rendered package.json.
type packageUpdate struct {
	fields          [][2]string
	dependencies    []Dependency
	devDependencies []Dependency
}

// updatePackageJSON sets the project fields and adds template dependencies
// the file does not already declare. The result is pretty-printed.
func updatePackageJSON(data []byte, u packageUpdate) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Build("Template package.json is not valid JSON", nil)
	}

	var err error
	for _, f := range u.fields {
		if data, err = sjson.SetBytes(data, gjson.Escape(f[0]), f[1]); err != nil {
			return nil, fmt.Errorf("setting %s in package.json: %w", f[0], err)
		}
	}
	if data, err = addDependencies(data, "dependencies", u.dependencies); err != nil {
		return nil, err
	}
	if data, err = addDependencies(data, "devDependencies", u.devDependencies); err != nil {
		return nil, err
	}
	return pretty.Pretty(data), nil
}

func addDependencies(data []byte, section string, deps []Dependency) ([]byte, error) {
	for _, d := range deps {
		path := section + "." + gjson.Escape(d.Name)
		if gjson.GetBytes(data, path).Exists() {
			continue
		}
		var err error
		if data, err = sjson.SetBytes(data, path, d.Range); err != nil {
			return nil, fmt.Errorf("adding %s to %s: %w", d.Name, section, err)
		}
	}
	return data, nil
}
