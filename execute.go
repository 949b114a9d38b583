package trident

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Execute runs one call end to end: lookup, input-schema validation, the
// handler, output-schema validation. The result is the handler's output
// serialized as JSON; every failure is a taxonomy *Error. All transports go
// through this method, so a call behaves identically over REST, MCP, and the
// CLI. The pipeline imposes no timeout; deadline control belongs to ctx (or
// WithTimeoutMiddleware). The after-execution hook (WithOnAfterExecute) is
// always invoked via defer with the final ExecutionSummary.
func (r *Registry) Execute(ctx context.Context, call Call) (json.RawMessage, error) {
	r.mu.RLock()
	select {
	case <-r.done:
		r.mu.RUnlock()
		return nil, NewConfigurationError("registry is shut down")
	default:
	}
	if _, ok := r.endpoints[call.Name]; !ok {
		r.mu.RUnlock()
		return nil, NewNotFoundError(call.Name)
	}
	inv := r.invoke
	r.running.Add(1)
	r.mu.RUnlock()
	defer r.running.Done()

	if err := r.acquireSemaphore(ctx); err != nil {
		return nil, Normalize(err)
	}
	defer r.releaseSemaphore()

	if len(call.Args) == 0 {
		call.Args = json.RawMessage(`{}`)
	}
	ctx = withCall(ctx, call)

	var out json.RawMessage
	var err error
	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, ExecutionSummary{
				Call:     call,
				Output:   out,
				Err:      err,
				Duration: time.Since(start),
			})
		}
	}()
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}

	out, err = inv(ctx, call)
	if err != nil {
		err = Normalize(err)
		r.logSystemError(call, err)
		out = nil
		return nil, err
	}
	return out, nil
}

// dispatch is the innermost Invoke: the pipeline minus admission control,
// hooks, and middleware. Middlewares wrap it (see chainMiddlewares).
func (r *Registry) dispatch(ctx context.Context, call Call) (json.RawMessage, error) {
	r.mu.RLock()
	ep, ok := r.endpoints[call.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewNotFoundError(call.Name)
	}

	var in any
	if err := json.Unmarshal(call.Args, &in); err != nil {
		return nil, invalidInput(call.Name, parseIssue(err))
	}
	if err := ep.inputResolved.Validate(in); err != nil {
		return nil, invalidInput(call.Name, Issue{Message: err.Error()})
	}

	result, err := invokeHandler(ctx, ep, call.Args)
	if err != nil {
		return nil, Normalize(err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("marshal result of endpoint %q: %w", call.Name, err))
	}
	// Validate the wire form, not the Go value, so what the schema accepts is
	// exactly what the caller receives.
	var res any
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, NewInternalError(fmt.Errorf("reparse result of endpoint %q: %w", call.Name, err))
	}
	if err := ep.outputResolved.Validate(res); err != nil {
		return nil, outputViolation(call.Name, out, []Issue{{Message: err.Error()}})
	}
	return out, nil
}

// invokeHandler runs the endpoint handler with panic recovery. Recovery is
// unconditional: a panicking handler becomes InternalServerError instead of
// taking down the host and every other in-flight call with it.
func invokeHandler(ctx context.Context, ep Endpoint, args json.RawMessage) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = NewInternalError(&panicError{p: p})
		}
	}()
	return ep.handler(ctx, args)
}

func (r *Registry) logSystemError(call Call, err error) {
	if !IsSystemError(err) {
		return
	}
	args := []any{"endpoint", call.Name, "error", err}
	if cause := errors.Unwrap(err); cause != nil {
		args = append(args, "cause", cause)
	}
	r.opts.logger.Error("endpoint execution failed", args...)
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

// panicError wraps a recovered panic value for InternalServerError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
