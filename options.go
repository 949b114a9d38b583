package trident

import (
	"context"
	"log/slog"
)

// endpointOptions hold optional endpoint settings (description, strict).
type endpointOptions struct {
	description string
	strict      bool
}

// EndpointOption configures an endpoint (e.g. WithDescription, WithStrict).
type EndpointOption func(*endpointOptions)

// WithDescription sets the long-form description advertised alongside the
// summary in listings.
func WithDescription(description string) EndpointOption {
	return func(o *endpointOptions) {
		o.description = description
	}
}

// WithStrict sets strict mode for the input schema: additionalProperties:
// false for all objects, and all properties become required. Use for OpenAI
// Structured Outputs compatibility.
func WithStrict() EndpointOption {
	return func(o *endpointOptions) {
		o.strict = true
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	maxConcurrency int
	logger         *slog.Logger
	middlewares    []Middleware
	onBefore       func(context.Context, Call)
	onAfter        func(context.Context, ExecutionSummary)
}

// WithMaxConcurrency limits concurrent executions (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithLogger sets the logger used for execution diagnostics. Defaults to a
// no-op logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithMiddleware wraps the dispatch pipeline. Middlewares apply in the given
// order: the first listed is outermost.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(o *registryOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithOnBeforeExecute sets a hook called before each execution.
func WithOnBeforeExecute(fn func(context.Context, Call)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each execution.
func WithOnAfterExecute(fn func(context.Context, ExecutionSummary)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
