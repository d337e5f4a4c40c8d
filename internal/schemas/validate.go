// Package schemas validates JSON documents against JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/resume-matcher/schemas"
)

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		fmt.Fprintf(&sb, "%s: ", ve.Schema)
	}
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError is returned when a schema or document cannot be loaded.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled schema ready for repeated validation.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses schema content once.
func Compile(name, content string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	return &Schema{name: name, schema: s}, nil
}

// Name returns the schema name given to Compile.
func (s *Schema) Name() string {
	return s.name
}

// ValidateString validates a JSON document.
func (s *Schema) ValidateString(doc string) error {
	return s.validate(gojsonschema.NewStringLoader(doc))
}

// ValidateBytes validates a JSON document.
func (s *Schema) ValidateBytes(doc []byte) error {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) error {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &SchemaLoadError{Path: s.name, Message: "document could not be loaded", Cause: err}
	}
	return toValidationError(s.name, result)
}

var (
	embedded   = make(map[string]*Schema)
	embeddedMu sync.Mutex
)

// Embedded returns the compiled form of an embedded schema, compiling it on first use.
func Embedded(name string) (*Schema, error) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()

	if s, ok := embedded[name]; ok {
		return s, nil
	}
	content, err := schemafiles.Load(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "not embedded", Cause: err}
	}
	s, err := Compile(name, content)
	if err != nil {
		return nil, err
	}
	embedded[name] = s
	return s, nil
}

// ValidateJSONString validates document content against schema content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	s, err := Compile("(string schema)", schemaContent)
	if err != nil {
		return err
	}
	return s.ValidateString(jsonContent)
}

// ValidateJSONFile validates the file at jsonPath against an embedded schema.
func ValidateJSONFile(name, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	s, err := Embedded(name)
	if err != nil {
		return err
	}
	return s.ValidateBytes(data)
}

func toValidationError(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Schema: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
