// Package testutil provides test helpers for trident (e.g. MockEndpoint).
package testutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/skosovsky/trident"
)

// MockEndpoint is a configurable endpoint description for tests. Zero
// values fall back to a permissive "mock" endpoint that accepts any
// object and returns ResultVal (or an empty object).
type MockEndpoint struct {
	NameVal    string
	SummaryVal string
	InputVal   *jsonschema.Schema
	OutputVal  *jsonschema.Schema
	ResultVal  json.RawMessage
	ErrVal     error
	HandlerFn  func(ctx context.Context, args json.RawMessage) (any, error)
}

// Endpoint compiles the mock into a registrable trident.Endpoint. It
// panics when the configuration does not compile, which keeps test call
// sites free of error plumbing.
func (m MockEndpoint) Endpoint() trident.Endpoint {
	name := m.NameVal
	if name == "" {
		name = "mock"
	}
	summary := m.SummaryVal
	if summary == "" {
		summary = "mock endpoint"
	}
	input := m.InputVal
	if input == nil {
		input = mustSchema(`{"type":"object"}`)
	}
	output := m.OutputVal
	if output == nil {
		output = mustSchema(`{}`)
	}
	handler := m.HandlerFn
	if handler == nil {
		handler = func(_ context.Context, _ json.RawMessage) (any, error) {
			if m.ErrVal != nil {
				return nil, m.ErrVal
			}
			raw := m.ResultVal
			if len(raw) == 0 {
				raw = json.RawMessage(`{}`)
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode ResultVal: %w", err)
			}
			return v, nil
		}
	}
	ep, err := trident.NewWithSchemas(name, summary, input, output, handler)
	if err != nil {
		panic(fmt.Sprintf("testutil: build endpoint %q: %v", name, err))
	}
	return ep
}

func mustSchema(src string) *jsonschema.Schema {
	s, err := trident.SchemaFromJSON([]byte(src))
	if err != nil {
		panic(fmt.Sprintf("testutil: parse schema: %v", err))
	}
	return s
}
