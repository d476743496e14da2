// Package schema validates workflow action-menu payloads before decoding.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	dErrors "credwallet/pkg/domain-errors"
)

//go:embed action_menu.schema.json
var actionMenuSchema []byte

// Validator checks raw payloads against the action-menu JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded action-menu schema.
func NewValidator() (*Validator, error) {
	return NewValidatorFromBytes(actionMenuSchema)
}

// NewValidatorFromBytes compiles a custom schema document.
func NewValidatorFromBytes(doc []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile action-menu schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate returns a bad_request error for malformed JSON and a
// validation_failed error listing every violation otherwise.
func (v *Validator) Validate(payload []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "payload is not valid JSON")
	}
	if result.Valid() {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, strings.Join(Violations(result), "; "))
}

// Violations formats each result error as "field: description".
func Violations(result *gojsonschema.Result) []string {
	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return out
}
