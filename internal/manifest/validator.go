package manifest

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/logging"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// documentField is the field reported for whole-document failures.
const documentField = "manifest"

// ValidationIssue is a single rule violation.
type ValidationIssue struct {
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// ValidationResult is the outcome of one validation pass. It is never
// mutated after it is returned.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"errors"`
}

func newResult(issues []ValidationIssue) *ValidationResult {
	if issues == nil {
		issues = []ValidationIssue{}
	}
	return &ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// Option configures a Validator.
type Option func(*Validator)

// WithDescriptions replaces the field description lookup. Passing nil
// disables descriptions.
func WithDescriptions(d Descriptions) Option {
	return func(v *Validator) {
		v.descriptions = d
	}
}

// WithSchemaChecker plugs an additional checker into ValidateWithJSONSchema.
func WithSchemaChecker(s SchemaChecker) Option {
	return func(v *Validator) {
		v.schema = s
	}
}

// Validator checks manifests against the Manifest V3 rules and, for the
// file-aware calls, against a project tree on fsys.
type Validator struct {
	fsys         fsutil.FileSystem
	descriptions Descriptions
	schema       SchemaChecker
	log          zerolog.Logger
}

// NewValidator returns a Validator reading project files from fsys. Field
// descriptions default to DefaultDescriptions.
func NewValidator(fsys fsutil.FileSystem, opts ...Option) *Validator {
	v := &Validator{
		fsys:         fsys,
		descriptions: DefaultDescriptions(),
		log:          logging.GetLogger("manifest"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs candidate through the manifest rules. Malformed input is
// reported in the result; Validate never fails.
func (v *Validator) Validate(candidate any) *ValidationResult {
	doc := toGeneric(candidate)
	if _, ok := doc.(map[string]any); !ok {
		return newResult([]ValidationIssue{{
			Field:    documentField,
			Message:  expected("object", doc),
			Severity: SeverityError,
		}})
	}
	return newResult(v.describe(checkManifest(doc)))
}

// ValidateSchema is Validate.
func (v *Validator) ValidateSchema(candidate any) *ValidationResult {
	return v.Validate(candidate)
}

// ValidateWithJSONSchema is Validate unless a SchemaChecker is configured, in
// which case the checker's issues are appended to the rule issues.
func (v *Validator) ValidateWithJSONSchema(candidate any) *ValidationResult {
	res := v.Validate(candidate)
	if v.schema == nil {
		return res
	}
	doc := toGeneric(candidate)
	if _, ok := doc.(map[string]any); !ok {
		return res
	}
	issues := append(append([]ValidationIssue{}, res.Issues...), v.describe(v.schema.Check(doc))...)
	return newResult(dedupe(issues))
}

// ValidateFiles reports every file referenced by candidate that is missing
// under root. Resource entries containing "*" are globs and are skipped. The
// error return is only ever ctx.Err().
func (v *Validator) ValidateFiles(ctx context.Context, candidate any, root string) (*ValidationResult, error) {
	doc, ok := toGeneric(candidate).(map[string]any)
	if !ok {
		return newResult([]ValidationIssue{{
			Field:    documentField,
			Message:  "Manifest must be an object",
			Severity: SeverityError,
		}}), nil
	}

	var issues []ValidationIssue
	for _, ref := range fileReferences(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if v.fsys.Exists(filepath.Join(root, filepath.FromSlash(ref.path))) {
			continue
		}
		v.log.Debug().Str("field", ref.field).Str("path", ref.path).Msg("referenced file missing")
		issues = append(issues, ValidationIssue{
			Field:    ref.field,
			Message:  "Referenced file does not exist: " + ref.path,
			Severity: SeverityError,
		})
	}
	return newResult(v.describe(issues)), nil
}

// ValidateComplete runs Validate and, only when it passes, ValidateFiles.
func (v *Validator) ValidateComplete(ctx context.Context, candidate any, root string) (*ValidationResult, error) {
	res := v.Validate(candidate)
	if !res.Valid {
		return res, nil
	}
	return v.ValidateFiles(ctx, candidate, root)
}

func (v *Validator) describe(issues []ValidationIssue) []ValidationIssue {
	if v.descriptions == nil {
		return issues
	}
	for i := range issues {
		if issues[i].Field == "" || issues[i].Field == documentField {
			continue
		}
		if d, ok := v.descriptions.Describe(issues[i].Field); ok {
			issues[i].Description = d
		}
	}
	return issues
}

// fileRef is a path-valued manifest field.
type fileRef struct {
	field string
	path  string
}

// fileReferences lists the file paths doc points at, in manifest order.
// Values of the wrong type are ignored; the rules report those.
func fileReferences(doc map[string]any) []fileRef {
	var refs []fileRef
	add := func(field string, v any) {
		if s, ok := v.(string); ok && s != "" {
			refs = append(refs, fileRef{field: field, path: s})
		}
	}
	addMap := func(field string, v any) {
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, size := range sortedSizes(m) {
			add(joinPath(field, size), m[size])
		}
	}
	addList := func(field string, v any) {
		items, _ := v.([]any)
		for i, item := range items {
			add(indexPath(field, i), item)
		}
	}

	if action, ok := doc["action"].(map[string]any); ok {
		add("action.default_popup", action["default_popup"])
		switch icon := action["default_icon"].(type) {
		case string:
			add("action.default_icon", icon)
		case map[string]any:
			addMap("action.default_icon", icon)
		}
	}
	if bg, ok := doc["background"].(map[string]any); ok {
		add("background.service_worker", bg["service_worker"])
	}
	scripts, _ := doc["content_scripts"].([]any)
	for i, s := range scripts {
		cs, ok := s.(map[string]any)
		if !ok {
			continue
		}
		base := indexPath("content_scripts", i)
		addList(base+".js", cs["js"])
		addList(base+".css", cs["css"])
	}
	addMap("icons", doc["icons"])
	add("options_page", doc["options_page"])
	if ui, ok := doc["options_ui"].(map[string]any); ok {
		add("options_ui.page", ui["page"])
	}
	resources, _ := doc["web_accessible_resources"].([]any)
	for i, r := range resources {
		war, ok := r.(map[string]any)
		if !ok {
			continue
		}
		items, _ := war["resources"].([]any)
		for j, item := range items {
			if s, ok := item.(string); ok && strings.Contains(s, "*") {
				continue
			}
			add(indexPath(indexPath("web_accessible_resources", i)+".resources", j), item)
		}
	}
	return refs
}

// toGeneric converts typed values such as *Manifest into decoded-JSON form.
// Values that cannot be encoded are returned unchanged.
func toGeneric(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// dedupe drops repeated field+message pairs, keeping the first.
func dedupe(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		key := issue.Field + "|" + issue.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, issue)
	}
	return out
}
