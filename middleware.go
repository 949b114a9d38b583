package trident

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Invoke runs one call through the dispatch pipeline and returns the raw
// JSON result. It is the seam middlewares wrap.
type Invoke func(ctx context.Context, call Call) (json.RawMessage, error)

// Middleware wraps the dispatch pipeline with cross-cutting behavior
// (logging, timeout). The chain applies in onion order: the first middleware
// given is outermost.
type Middleware func(next Invoke) Invoke

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Invoke) Invoke {
		return func(ctx context.Context, call Call) (json.RawMessage, error) {
			logger.Info("endpoint start", "endpoint", call.Name)
			start := time.Now()
			res, err := next(ctx, call)
			dur := time.Since(start)
			if err != nil {
				logger.Error("endpoint error", "endpoint", call.Name, "duration", dur, "error", err)
				return nil, err
			}
			logger.Info("endpoint end", "endpoint", call.Name, "duration", dur)
			return res, nil
		}
	}
}

// WithTimeoutMiddleware returns a middleware that enforces a per-call
// deadline via a derived context. The pipeline itself never imposes one;
// this is the opt-in way to add it. With d <= 0 the middleware is a no-op.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx context.Context, call Call) (json.RawMessage, error) {
			if d <= 0 {
				return next(ctx, call)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, call)
		}
	}
}

// chainMiddlewares wraps base with the given middlewares so the first listed
// is outermost.
func chainMiddlewares(middlewares []Middleware, base Invoke) Invoke {
	inv := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		inv = middlewares[i](inv)
	}
	return inv
}

// Use replaces the registry's middleware chain and rewraps the pipeline from
// scratch (onion order: first middleware is outermost). Calling Use multiple
// times replaces the chain rather than stacking, avoiding double-wrapping.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.middlewares = middlewares
	r.invoke = chainMiddlewares(middlewares, r.dispatch)
}
