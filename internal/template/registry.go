package template

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/logging"
)

// KnownTemplates are the template ids looked up under a templates directory,
// in registration order.
var KnownTemplates = []string{"vanilla"}

const (
	metadataFile = "template.json"
	filesDir     = "files"
)

//go:embed schema/template.schema.json
var metadataSchemaBytes []byte

var (
	metadataSchema     *jsonschema.Schema
	metadataSchemaOnce sync.Once
	metadataSchemaErr  error
)

func getMetadataSchema() (*jsonschema.Schema, error) {
	metadataSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(metadataSchemaBytes))
		if err != nil {
			metadataSchemaErr = fmt.Errorf("unmarshaling template schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("template.schema.json", doc); err != nil {
			metadataSchemaErr = fmt.Errorf("adding template schema: %w", err)
			return
		}
		metadataSchema, metadataSchemaErr = c.Compile("template.schema.json")
	})
	return metadataSchema, metadataSchemaErr
}

// Template is a registered project template.
type Template struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Files           string            `json:"files"`
	Dependencies    []string          `json:"dependencies"`
	DevDependencies []string          `json:"devDependencies"`
	Engines         map[string]string `json:"engines,omitempty"`
}

// Registry holds the templates found at construction. It is read-only
// afterwards and safe for concurrent use.
type Registry struct {
	templates map[string]*Template
	order     []string
}

// LoadRegistry registers every known template that has a template.json
// under dir. A template without metadata is skipped; unreadable or invalid
// metadata is an error.
func LoadRegistry(fsys fsutil.FileSystem, dir string) (*Registry, error) {
	log := logging.GetLogger("template")
	r := &Registry{templates: make(map[string]*Template)}

	for _, id := range KnownTemplates {
		metaPath := filepath.Join(dir, id, metadataFile)
		if !fsys.Exists(metaPath) {
			log.Debug().Str("template", id).Str("path", metaPath).Msg("template metadata not found, skipping")
			continue
		}

		t, err := loadTemplate(fsys, metaPath)
		if err != nil {
			return nil, err
		}
		if t.ID != id {
			return nil, errors.Validation(
				fmt.Sprintf("Template id %q does not match its directory %q", t.ID, id),
				map[string]any{"path": metaPath},
			)
		}
		t.Files = filepath.Join(dir, id, filesDir)

		r.templates[id] = t
		r.order = append(r.order, id)
		log.Debug().Str("template", id).Str("files", t.Files).Msg("registered template")
	}
	return r, nil
}

func loadTemplate(fsys fsutil.FileSystem, metaPath string) (*Template, error) {
	data, err := fsys.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	schema, err := getMetadataSchema()
	if err != nil {
		return nil, errors.Internal("Failed to load template schema", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "Invalid template metadata: "+metaPath, err,
			map[string]any{"path": metaPath})
	}
	if err := schema.Validate(inst); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "Invalid template metadata: "+metaPath, err,
			map[string]any{"path": metaPath})
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", metaPath, err)
	}
	if t.Dependencies == nil {
		t.Dependencies = []string{}
	}
	if t.DevDependencies == nil {
		t.DevDependencies = []string{}
	}
	return &t, nil
}

// Get returns the template registered under id.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.templates[id]
	return ok
}

// List returns the registered templates in registration order.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// IDs returns the registered template ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}
