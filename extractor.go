package trident

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Extractor provides JSON Schema generation and two-layer validated parsing
// (schema + Validatable) for type T without binding to an Endpoint. Use it in
// custom callers that need schema export and validated parsing but not the
// full dispatch pipeline.
type Extractor[T any] struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// NewExtractor creates an Extractor for type T. When strict is true, the
// generated schema has additionalProperties: false for all objects and all
// properties required.
func NewExtractor[T any](strict bool) (*Extractor[T], error) {
	schema, resolved, err := generateSchema[T](strict)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{
		schema:   schema,
		resolved: resolved,
	}, nil
}

// Schema returns the generated JSON Schema. The returned object is shared;
// callers must not mutate it.
func (e *Extractor[T]) Schema() *jsonschema.Schema {
	return e.schema
}

// ParseAndValidate deserializes raw into T, runs Layer 1 (schema validation)
// and Layer 2 (Validatable.Validate() if T implements it). Failures are
// ValidationError with the findings under details.issues.
func (e *Extractor[T]) ParseAndValidate(raw []byte) (T, error) {
	var zero T
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, NewValidationError(parseIssue(err))
	}
	if err := e.resolved.Validate(v); err != nil {
		return zero, NewValidationError(Issue{Message: err.Error()})
	}
	args, err := e.decode(raw)
	if err != nil {
		return zero, err
	}
	return args, nil
}

// decode unmarshals already-schema-validated JSON into T and runs Layer 2.
// The dispatch pipeline calls it after validating against the input schema,
// so schema validation is not repeated here.
func (e *Extractor[T]) decode(raw []byte) (T, error) {
	var zero T
	var args T
	if err := json.Unmarshal(raw, &args); err != nil {
		return zero, NewValidationError(parseIssue(err))
	}
	if err := runCustomValidation(args); err != nil {
		var verr *Error
		if errors.As(err, &verr) && verr.Name == KindValidation {
			return zero, verr
		}
		return zero, NewValidationError(Issue{Message: err.Error()})
	}
	return args, nil
}

// runCustomValidation runs Validatable.Validate() on args; if args does not
// implement Validatable, it tries &args for value types (pointer receiver).
// Never calls Validate twice for the same receiver.
func runCustomValidation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}
