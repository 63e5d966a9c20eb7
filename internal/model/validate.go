package model

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/generation_payload.schema.json
var payloadSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(payloadSchema))
	})
	return schema, schemaErr
}

// ValidationError lists every schema violation found in a payload.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "payload validation failed: " + strings.Join(e.Issues, "; ")
}

// Validate checks p against the embedded generation payload schema.
func Validate(p GenerationPayload) error {
	s, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load payload schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(p))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	issues := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		issues = append(issues, describe(e))
	}
	return &ValidationError{Issues: issues}
}

// describe turns a schema error into something a person filling the form
// can act on. anyOf branches on the optional URI fields report one error
// per branch; the wrapping "must match a schema in anyOf" is enough.
func describe(e gojsonschema.ResultError) string {
	field := strings.TrimPrefix(e.Field(), "(root).")
	switch e.Type() {
	case "pattern":
		return fmt.Sprintf("%s is required", field)
	case "format":
		return fmt.Sprintf("%s is not a valid %v", field, e.Details()["format"])
	case "number_any_of":
		return fmt.Sprintf("%s must be empty or a full URL", field)
	}
	return fmt.Sprintf("%s: %s", field, e.Description())
}
