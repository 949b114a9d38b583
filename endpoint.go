package trident

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Endpoint describes one named operation: identity, human-facing text, the
// input and output schemas, and the handler the dispatch pipeline invokes.
// Build endpoints with New or NewWithSchemas; a zero Endpoint is not
// registrable. Endpoints are immutable values. Registries store and hand out
// copies, so editing a copy never affects registered state; the schema
// objects inside are shared and must not be mutated.
type Endpoint struct {
	Name        string
	Summary     string
	Description string
	Input       *jsonschema.Schema
	Output      *jsonschema.Schema

	handler        func(ctx context.Context, args json.RawMessage) (any, error)
	inputResolved  *jsonschema.Resolved
	outputResolved *jsonschema.Resolved
}

// New builds an Endpoint from a typed handler. Both schemas are generated by
// reflection over In and Out and compiled once; the handler is stored
// type-erased so a registry holds heterogeneous endpoints homogeneously
// while call sites stay type-checked. The handler receives input that
// already passed schema validation (and Validatable, when In implements it).
// Construction failures are ConfigurationError.
func New[In, Out any](
	name, summary string,
	fn func(ctx context.Context, in In) (Out, error),
	opts ...EndpointOption,
) (Endpoint, error) {
	var o endpointOptions
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		return Endpoint{}, NewConfigurationError("endpoint name must not be empty")
	}
	if fn == nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q handler must not be nil", name))
	}
	ext, err := NewExtractor[In](o.strict)
	if err != nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q: generate input schema: %v", name, err))
	}
	outSchema, outResolved, err := generateSchema[Out](false)
	if err != nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q: generate output schema: %v", name, err))
	}
	handler := func(ctx context.Context, args json.RawMessage) (any, error) {
		in, err := ext.decode(args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
	return Endpoint{
		Name:           name,
		Summary:        summary,
		Description:    o.description,
		Input:          ext.schema,
		Output:         outSchema,
		handler:        handler,
		inputResolved:  ext.resolved,
		outputResolved: outResolved,
	}, nil
}

// NewWithSchemas builds an Endpoint from already-described schemas and a raw
// handler. Use it when operations are defined by data (a service catalog, an
// OpenAPI document) rather than Go types. Both schemas are deep-copied
// before compilation; the caller's schema objects are never mutated. The
// handler receives the raw JSON after input-schema validation and returns a
// value marshaled and checked against the output schema by the pipeline.
func NewWithSchemas(
	name, summary string,
	input, output *jsonschema.Schema,
	fn func(ctx context.Context, args json.RawMessage) (any, error),
	opts ...EndpointOption,
) (Endpoint, error) {
	var o endpointOptions
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		return Endpoint{}, NewConfigurationError("endpoint name must not be empty")
	}
	if fn == nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q handler must not be nil", name))
	}
	if input == nil || output == nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q: input and output schemas must not be nil", name))
	}
	inSchema, inResolved, err := recompileSchema(input, o.strict)
	if err != nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q: compile input schema: %v", name, err))
	}
	outSchema, outResolved, err := recompileSchema(output, false)
	if err != nil {
		return Endpoint{}, NewConfigurationError(fmt.Sprintf("endpoint %q: compile output schema: %v", name, err))
	}
	return Endpoint{
		Name:           name,
		Summary:        summary,
		Description:    o.description,
		Input:          inSchema,
		Output:         outSchema,
		handler:        fn,
		inputResolved:  inResolved,
		outputResolved: outResolved,
	}, nil
}

// recompileSchema deep-copies a schema through its map form, applies strict
// mode, strips ids, and compiles. The source schema is left untouched.
func recompileSchema(s *jsonschema.Schema, strict bool) (*jsonschema.Schema, *jsonschema.Resolved, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, nil, fmt.Errorf("copy schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, nil, fmt.Errorf("copy schema: %w", err)
	}
	if strict {
		applyStrictMode(schemaMap)
	}
	stripSchemaIDs(schemaMap)
	return compileRawSchema(schemaMap)
}
