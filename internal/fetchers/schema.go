package fetchers

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"salesdash/internal/models"
)

// Schema is a compiled JSON schema for one payload shape
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// NewSchema compiles a JSON schema document
func NewSchema(name, doc string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level schema tables
func MustSchema(name, doc string) *Schema {
	s, err := NewSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Validate checks body against the schema. Any mismatch, including a
// body that is not JSON at all, is a MalformedPayload error.
func (s *Schema) Validate(widget string, body []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return models.NewChartError(widget, models.ErrMalformedPayload, "Invalid data format received", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return models.NewChartError(widget, models.ErrMalformedPayload,
		"Invalid data format received",
		fmt.Errorf("%s schema: %s", s.name, strings.Join(problems, "; ")))
}

// Shared schema fragments
const (
	numberArray = `{"type": "array", "items": {"type": "number"}}`
	stringArray = `{"type": "array", "items": {"type": "string"}}`
)

// ArraysSchema builds a schema requiring each named field to be an array.
// Fields listed in labels hold strings, all others numbers.
func ArraysSchema(name string, labels []string, values []string) *Schema {
	props := make([]string, 0, len(labels)+len(values))
	required := make([]string, 0, len(labels)+len(values))
	for _, f := range labels {
		props = append(props, fmt.Sprintf("%q: %s", f, stringArray))
		required = append(required, fmt.Sprintf("%q", f))
	}
	for _, f := range values {
		props = append(props, fmt.Sprintf("%q: %s", f, numberArray))
		required = append(required, fmt.Sprintf("%q", f))
	}
	doc := fmt.Sprintf(`{"type": "object", "properties": {%s}, "required": [%s]}`,
		strings.Join(props, ", "), strings.Join(required, ", "))
	return MustSchema(name, doc)
}
