package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/btools-dev/btools/internal/errors"
)

// SchemaChecker is an external validator whose issues ValidateWithJSONSchema
// merges with the rule issues.
type SchemaChecker interface {
	Check(doc any) []ValidationIssue
}

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("manifest.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// JSONSchemaChecker validates documents against the embedded Chrome manifest
// JSON Schema.
type JSONSchemaChecker struct {
	schema *jsonschema.Schema
}

// NewJSONSchemaChecker compiles the embedded schema.
func NewJSONSchemaChecker() (*JSONSchemaChecker, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, errors.Internal("Failed to load manifest schema", err)
	}
	return &JSONSchemaChecker{schema: schema}, nil
}

// Check returns the leaf-level schema violations of doc.
func (c *JSONSchemaChecker) Check(doc any) []ValidationIssue {
	err := c.schema.Validate(toSchemaInstance(doc))
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []ValidationIssue{{Field: documentField, Message: err.Error(), Severity: SeverityError}}
	}

	var issues []ValidationIssue
	collectValidationIssues(ve, doc, &issues)
	if len(issues) == 0 {
		return []ValidationIssue{{Field: documentField, Message: ve.Error(), Severity: SeverityError}}
	}
	return dedupe(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf errors.
func collectValidationIssues(ve *jsonschema.ValidationError, doc any, issues *[]ValidationIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectValidationIssues(cause, doc, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}

	keyword := ""
	if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
		keyword = kwPath[len(kwPath)-1]
	}
	// Container keywords only summarize their causes.
	if keyword == "oneOf" || keyword == "anyOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
		return
	}

	field := fieldPath(doc, ve.InstanceLocation)
	if field == "" {
		field = documentField
	}
	*issues = append(*issues, ValidationIssue{
		Field:    field,
		Message:  ve.ErrorKind.LocalizedString(printer),
		Severity: SeverityError,
	})
}

// fieldPath renders a JSON pointer location in the validator's dotted form,
// using brackets where the instance holds an array.
func fieldPath(doc any, loc []string) string {
	path := ""
	cur := doc
	for _, tok := range loc {
		switch node := cur.(type) {
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return joinPath(path, tok)
			}
			path = indexPath(path, i)
			cur = node[i]
		case map[string]any:
			path = joinPath(path, tok)
			cur = node[tok]
		default:
			path = joinPath(path, tok)
			cur = nil
		}
	}
	return path
}

// toSchemaInstance re-decodes doc with the schema library's decoder so
// numbers are json.Number.
func toSchemaInstance(doc any) any {
	data, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return doc
	}
	return inst
}
