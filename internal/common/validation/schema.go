package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ChatRequestSchema describes the body of POST /chat/ask.
const ChatRequestSchema = `{
  "type": "object",
  "required": ["question"],
  "properties": {
    "question": {"type": "string"},
    "context": {"type": ["string", "null"]},
    "history": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["role", "content"],
        "properties": {
          "role": {"type": "string", "enum": ["user", "assistant"]},
          "content": {"type": "string"}
        }
      }
    }
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

var (
	chatOnce      sync.Once
	chatValidator *Validator
)

// ChatRequest returns the shared validator for chat bodies.
func ChatRequest() *Validator {
	chatOnce.Do(func() {
		v, err := NewValidator(ChatRequestSchema)
		if err != nil {
			panic(err)
		}
		chatValidator = v
	})
	return chatValidator
}

// ValidateJSON checks a raw JSON document. Malformed JSON is reported as a
// single body-level error rather than a Go error.
func (v *Validator) ValidateJSON(raw []byte) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "body",
				Message: "body must be valid JSON",
				Code:    "INVALID_JSON",
			}},
		}
	}
	return convert(result)
}

func convert(result *gojsonschema.Result) *ValidationResult {
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, len(result.Errors()))
	for i, desc := range result.Errors() {
		field := desc.Field()
		if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
			field = "body"
		}
		errs[i] = ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		}
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors reports whether any error was raised for field.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
