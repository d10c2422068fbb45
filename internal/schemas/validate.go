// Package schemas provides JSON Schema validation for structured pipeline artifacts.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents a schema validation failure with field paths
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema: %s: %v", e.Message, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateString validates JSON content against schema content. A nil return
// means the document conforms; a *ValidationError carries the field errors.
func ValidateString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Message: "schema validation failed during load", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	sort.Slice(validationErr.Errors, func(i, j int) bool {
		return validationErr.Errors[i].Field < validationErr.Errors[j].Field
	})
	return validationErr
}

// ValidateValue marshals v to JSON and validates it against schemaContent,
// returning one "field: message" string per violation. Non-validation failures
// (unmarshalable values, broken schemas) are reported the same way so callers
// never have to branch on error kinds.
func ValidateValue(schemaContent string, v any) []string {
	data, err := json.Marshal(v)
	if err != nil {
		return []string{fmt.Sprintf("(root): not serializable: %v", err)}
	}
	return ValidateBytes(schemaContent, data)
}

// ValidateBytes validates raw JSON bytes against schemaContent, returning one
// "field: message" string per violation.
func ValidateBytes(schemaContent string, data []byte) []string {
	err := ValidateString(schemaContent, string(data))
	if err == nil {
		return nil
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		out := make([]string, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			out = append(out, fe.String())
		}
		return out
	}
	return []string{fmt.Sprintf("(root): %v", err)}
}
