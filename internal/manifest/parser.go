package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/btools-dev/btools/internal/fsutil"
)

// ParseFile reads a manifest document from fsys. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func ParseFile(fsys fsutil.FileSystem, path string) (any, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a manifest document into generic JSON values. ext selects
// the format (".yaml", ".yml" or anything else for JSON).
func Parse(data []byte, ext string) (any, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return normalizeYAML(raw), nil
	default:
		var raw any
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("parsing JSON: unexpected data after document")
		}
		return raw, nil
	}
}

// normalizeYAML recursively converts YAML-decoded values to the types
// encoding/json produces.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
