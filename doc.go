// Package trident provides a transport-agnostic engine for registering,
// describing, and executing JSON endpoints with one shared behavior across
// REST, MCP, and CLI surfaces.
//
// # Overview
//
// An endpoint is a named operation with a summary, a JSON Schema for its
// input and output, and a handler. Every surface funnels into the same
// pipeline: unmarshal → validate input (against the same schema the caller
// sees) → execute → validate output → marshal result or return a uniform
// taxonomy error. Because the pipeline is shared, a call behaves identically
// no matter which transport carried it.
//
// Pipeline: Go function + argument struct → New (reflection + schema) →
// Endpoint → Registry → Execute (validate, call, validate, marshal) → JSON.
//
// # Key concepts
//
//   - Single Source of Truth: one set of struct tags (e.g. jsonschema) drives
//     the schema advertised to callers and the validation of incoming JSON.
//   - Closed error taxonomy: every failure is one of ValidationError,
//     NotFound, InternalServerError, or ConfigurationError, with the same
//     wire shape ({name, code, message, details}) on every surface.
//   - Change signaling: Version, ETag, and OnChanged let transports cache
//     listings and resync when the endpoint set changes.
//
// See Endpoint, Call, and Error for the core types, and New / NewRegistry
// for setup.
//
// # Example
//
//	type Args struct { Message string `json:"message" jsonschema:"required"` }
//	type Out  struct { Echo string `json:"echo"` }
//	ep, err := trident.New("echo", "Echo a message", func(_ context.Context, a Args) (Out, error) {
//	    return Out{Echo: a.Message}, nil
//	})
//	if err != nil { ... }
//	reg := trident.NewRegistry()
//	if err := reg.Register(ep); err != nil { ... }
//	out, err := reg.Execute(ctx, trident.Call{ID: "1", Name: "echo", Args: []byte(`{"message":"hi"}`)})
package trident
