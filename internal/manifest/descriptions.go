package manifest

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"sync"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

// Descriptions looks up human-readable documentation for a manifest field.
type Descriptions interface {
	Describe(field string) (string, bool)
}

// DescriptionTable maps dotted field paths without array indices
// ("content_scripts.matches") to descriptions.
type DescriptionTable map[string]string

var arrayIndex = regexp.MustCompile(`\[\d+\]`)

// Describe strips array indices from field and looks it up.
func (t DescriptionTable) Describe(field string) (string, bool) {
	d, ok := t[arrayIndex.ReplaceAllString(field, "")]
	return d, ok
}

var (
	defaultDescriptions DescriptionTable
	descriptionsOnce    sync.Once
)

// DefaultDescriptions returns the table built from the "description"
// keywords of the embedded manifest schema. The table is shared; callers
// must not modify it.
func DefaultDescriptions() DescriptionTable {
	descriptionsOnce.Do(func() {
		defaultDescriptions = DescriptionTable{}
		var doc map[string]any
		if err := json.Unmarshal(schemaBytes, &doc); err != nil {
			return
		}
		collectDescriptions(defaultDescriptions, "", doc)
	})
	return defaultDescriptions
}

func collectDescriptions(table DescriptionTable, path string, node map[string]any) {
	if d, ok := node["description"].(string); ok && path != "" {
		table[path] = d
	}
	if items, ok := node["items"].(map[string]any); ok {
		collectDescriptions(table, path, items)
	}
	props, _ := node["properties"].(map[string]any)
	for key, child := range props {
		if m, ok := child.(map[string]any); ok {
			collectDescriptions(table, joinPath(path, key), m)
		}
	}
}
