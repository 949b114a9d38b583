package trident

import (
	"context"
	"encoding/json"
	"time"
)

// Call is a single dispatch request: the endpoint name, the raw JSON input,
// and an optional caller-assigned trace/request identifier. Adapters build a
// fresh Call per invocation; a Call is never reused.
type Call struct {
	ID   string
	Name string
	Args json.RawMessage // JSON payload of input parameters
}

type callContextKey struct{}

// withCall attaches the in-flight Call to ctx for the duration of a dispatch.
func withCall(ctx context.Context, c Call) context.Context {
	return context.WithValue(ctx, callContextKey{}, c)
}

// CallFrom returns the Call for the current execution. Handlers use it to
// read the request identifier; ok is false outside a dispatch.
func CallFrom(ctx context.Context) (Call, bool) {
	c, ok := ctx.Value(callContextKey{}).(Call)
	return c, ok
}

// ExecutionSummary is passed to the after-execution hook (WithOnAfterExecute)
// when a dispatch finishes, on success or failure. Output is nil when Err is
// set.
type ExecutionSummary struct {
	Call     Call
	Output   json.RawMessage
	Err      error
	Duration time.Duration
}
