// Package validation validates inbound API payloads against JSON schemas.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError describes a single failed schema constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result reports the outcome of validating one payload.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// MessageRequestSchema constrains the per-turn message payload.
var MessageRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"message": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
	},
	"required":             []interface{}{"message"},
	"additionalProperties": false,
}

// DocumentRequestSchema constrains the document-upload payload.
var DocumentRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"documentType": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"salary_slip"},
		},
		"fileName": map[string]interface{}{
			"type":      "string",
			"maxLength": 255,
		},
	},
	"required":             []interface{}{"documentType"},
	"additionalProperties": false,
}

// Validate checks data against schema and returns structured errors.
func Validate(data map[string]interface{}, schema map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
