package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
)

const yamlManifest = `
manifest_version: 3
name: YAML Extension
version: "1.2.0"
icons:
  16: icons/icon16.png
  48: icons/icon48.png
content_scripts:
  - matches: ["<all_urls>"]
    js: [content.js]
    all_frames: true
`

func TestParse_JSON(t *testing.T) {
	doc, err := Parse([]byte(`{"manifest_version":3,"name":"x","version":"1.0"}`), ".json")
	require.NoError(t, err)

	m, ok := doc.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), m["manifest_version"])
	assert.True(t, NewValidator(nil).Validate(doc).Valid)
}

func TestParse_JSONNonObject(t *testing.T) {
	doc, err := Parse([]byte(`"just a string"`), ".json")
	require.NoError(t, err)
	assert.Equal(t, "just a string", doc)
}

func TestParse_JSONErrors(t *testing.T) {
	_, err := Parse([]byte(`{"name":`), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte(`{} {}`), ".json")
	assert.Error(t, err)
}

func TestParse_YAML(t *testing.T) {
	doc, err := Parse([]byte(yamlManifest), ".YML")
	require.NoError(t, err)

	m := doc.(map[string]any)
	assert.Equal(t, float64(3), m["manifest_version"])
	assert.Equal(t, map[string]any{"16": "icons/icon16.png", "48": "icons/icon48.png"}, m["icons"])

	res := NewValidator(nil).Validate(doc)
	assert.True(t, res.Valid, "%+v", res.Issues)
}

func TestParse_YAMLInvalid(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"), ".yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML")
}

func TestParseFile(t *testing.T) {
	fs := fsutil.NewMemory()
	require.NoError(t, fs.WriteFile("/ext/manifest.yaml", []byte(yamlManifest)))

	doc, err := ParseFile(fs, "/ext/manifest.yaml")
	require.NoError(t, err)
	assert.Equal(t, "YAML Extension", doc.(map[string]any)["name"])

	_, err = ParseFile(fs, "/ext/missing.json")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFileSystem))
}
