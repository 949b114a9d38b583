package trident

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error kind names. The set is closed: no other kind may cross an adapter
// boundary.
const (
	KindValidation    = "ValidationError"
	KindNotFound      = "NotFound"
	KindInternal      = "InternalServerError"
	KindConfiguration = "ConfigurationError"
)

// Stable machine codes, one per kind.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "ENDPOINT_NOT_FOUND"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
)

// Sentinel errors, one per kind. Use errors.Is to check which kind an error
// carries without reaching into the struct.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("endpoint not found")
	ErrInternal      = errors.New("internal error")
	ErrConfiguration = errors.New("invalid configuration")
)

// Issue is a single field-level validation finding. Path is a JSON pointer
// into the offending document when known.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error is the uniform failure shape used by every surface. Name is the
// kind, Code the stable machine string, Message the human-facing text, and
// Details an optional structured payload. Errors are never mutated after
// creation. The wrapped cause (if any) is for host-side logging only and is
// not serialized.
type Error struct {
	Name    string         `json:"name"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// Is matches the kind sentinels, so errors.Is(err, ErrValidation) works on
// any taxonomy error regardless of how it was built.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Name == KindValidation
	case ErrNotFound:
		return e.Name == KindNotFound
	case ErrInternal:
		return e.Name == KindInternal
	case ErrConfiguration:
		return e.Name == KindConfiguration
	}
	return false
}

// NewValidationError reports input that failed validation. Issues must
// describe individual findings; adapters serialize them under
// details.issues.
func NewValidationError(issues ...Issue) *Error {
	return &Error{
		Name:    KindValidation,
		Code:    CodeValidation,
		Message: "input validation failed",
		Details: map[string]any{"issues": issues},
	}
}

// NewNotFoundError reports a request for an endpoint name that is not
// registered. The requested name is kept in details.
func NewNotFoundError(name string) *Error {
	return &Error{
		Name:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("endpoint %q is not registered", name),
		Details: map[string]any{"endpoint": name},
	}
}

// NewInternalError wraps an unexpected failure. The cause message is
// preserved under details.cause for diagnosis; the cause chain itself stays
// host-side (Unwrap) and is never serialized.
func NewInternalError(cause error) *Error {
	e := &Error{
		Name:    KindInternal,
		Code:    CodeInternal,
		Message: "internal error while executing endpoint",
		cause:   cause,
	}
	if cause != nil {
		e.Details = map[string]any{"cause": cause.Error()}
	}
	return e
}

// NewConfigurationError reports invalid startup configuration: a bad
// descriptor, a duplicate registration, or a host misconfiguration.
func NewConfigurationError(msg string) *Error {
	return &Error{
		Name:    KindConfiguration,
		Code:    CodeConfiguration,
		Message: msg,
	}
}

// invalidInput builds the pipeline's ValidationError: the endpoint name and
// the structured issue list travel in details.
func invalidInput(endpoint string, issues ...Issue) *Error {
	return &Error{
		Name:    KindValidation,
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid input for endpoint %q", endpoint),
		Details: map[string]any{"endpoint": endpoint, "issues": issues},
	}
}

// outputViolation reports a handler result that failed the endpoint's own
// output schema. This is an endpoint-author bug, not a caller mistake, so it
// is a server-class error; the raw result and the issues are preserved so
// the author can diagnose it.
func outputViolation(endpoint string, result json.RawMessage, issues []Issue) *Error {
	return &Error{
		Name:    KindInternal,
		Code:    CodeInternal,
		Message: fmt.Sprintf("endpoint %q returned output violating its schema", endpoint),
		Details: map[string]any{"endpoint": endpoint, "result": result, "issues": issues},
	}
}

// Normalize converts an arbitrary error into the taxonomy. A taxonomy error
// anywhere in the chain passes through unchanged; anything else is wrapped
// as InternalServerError with the original message under details.cause.
// Normalize(nil) is nil.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternalError(err)
}

// IsClientError reports whether err is a caller-recoverable taxonomy error
// (ValidationError or NotFound): the caller can fix the input or the name.
func IsClientError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Name == KindValidation || e.Name == KindNotFound
}

// IsSystemError reports whether err is a server-class taxonomy error
// (InternalServerError or ConfigurationError). Hosts log these with full
// cause detail; callers only see the serialized fields.
func IsSystemError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Name == KindInternal || e.Name == KindConfiguration
}

// parseIssue converts a JSON decode failure into a validation issue so
// malformed payloads report like any other invalid input.
func parseIssue(err error) Issue {
	return Issue{Message: "json parse error: " + err.Error()}
}
