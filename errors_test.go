package trident

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		expect string
	}{
		{"validation", NewValidationError(Issue{Message: "bad enum"}), "VALIDATION_ERROR: input validation failed"},
		{"not found", NewNotFoundError("echo"), `ENDPOINT_NOT_FOUND: endpoint "echo" is not registered`},
		{"internal", NewInternalError(errors.New("db down")), "INTERNAL_SERVER_ERROR: internal error while executing endpoint"},
		{"configuration", NewConfigurationError("bad descriptor"), "CONFIGURATION_ERROR: bad descriptor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
		})
	}
}

func TestError_KindsAndCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		kind     string
		code     string
		sentinel error
	}{
		{"validation", NewValidationError(), KindValidation, CodeValidation, ErrValidation},
		{"not found", NewNotFoundError("x"), KindNotFound, CodeNotFound, ErrNotFound},
		{"internal", NewInternalError(errors.New("x")), KindInternal, CodeInternal, ErrInternal},
		{"configuration", NewConfigurationError("x"), KindConfiguration, CodeConfiguration, ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Name)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestNewInternalError_PreservesCause(t *testing.T) {
	inner := errors.New("db connection refused")
	err := NewInternalError(inner)
	assert.Equal(t, "internal error while executing endpoint", err.Message)
	assert.Same(t, inner, err.Unwrap())
	assert.Equal(t, "db connection refused", err.Details["cause"])
}

func TestError_WireShape(t *testing.T) {
	err := NewValidationError(Issue{Path: "/message", Message: "missing"})
	data, merr := json.Marshal(err)
	require.NoError(t, merr)
	assert.JSONEq(t, `{
		"name": "ValidationError",
		"code": "VALIDATION_ERROR",
		"message": "input validation failed",
		"details": {"issues": [{"path": "/message", "message": "missing"}]}
	}`, string(data))
}

func TestError_WireShape_NoDetails(t *testing.T) {
	err := NewConfigurationError("boom")
	data, merr := json.Marshal(err)
	require.NoError(t, merr)
	assert.JSONEq(t, `{
		"name": "ConfigurationError",
		"code": "CONFIGURATION_ERROR",
		"message": "boom"
	}`, string(data))
}

func TestNormalize(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, Normalize(nil))
	})
	t.Run("taxonomy passthrough", func(t *testing.T) {
		orig := NewNotFoundError("echo")
		assert.Same(t, orig, Normalize(orig))
	})
	t.Run("wrapped taxonomy passthrough", func(t *testing.T) {
		orig := NewValidationError(Issue{Message: "x"})
		wrapped := wrapErr{err: orig}
		assert.Same(t, orig, Normalize(wrapped))
	})
	t.Run("generic becomes internal", func(t *testing.T) {
		inner := errors.New("token sk-12345 leaked")
		got := Normalize(inner)
		require.NotNil(t, got)
		assert.Equal(t, KindInternal, got.Name)
		assert.Equal(t, "internal error while executing endpoint", got.Message)
		assert.Equal(t, inner.Error(), got.Details["cause"])
		assert.ErrorIs(t, got, inner)
	})
}

func TestIsClientError(t *testing.T) {
	require.True(t, IsClientError(NewValidationError()))
	require.True(t, IsClientError(NewNotFoundError("x")))
	require.True(t, IsClientError(wrapErr{err: NewValidationError()}))
	require.False(t, IsClientError(NewInternalError(errors.New("x"))))
	require.False(t, IsClientError(NewConfigurationError("x")))
	require.False(t, IsClientError(errors.New("plain")))
	require.False(t, IsClientError(nil))
}

func TestIsSystemError(t *testing.T) {
	require.True(t, IsSystemError(NewInternalError(errors.New("x"))))
	require.True(t, IsSystemError(NewConfigurationError("x")))
	require.True(t, IsSystemError(wrapErr{err: NewConfigurationError("y")}))
	require.False(t, IsSystemError(NewValidationError()))
	require.False(t, IsSystemError(NewNotFoundError("x")))
	require.False(t, IsSystemError(errors.New("plain")))
}

func TestOutputViolation_Details(t *testing.T) {
	result := json.RawMessage(`{"echo":123}`)
	err := outputViolation("echo", result, []Issue{{Message: "echo: want string, got number"}})
	assert.Equal(t, KindInternal, err.Name)
	assert.Equal(t, "echo", err.Details["endpoint"])
	assert.Equal(t, result, err.Details["result"])

	data, merr := json.Marshal(err)
	require.NoError(t, merr)
	// The raw result must be embedded as JSON, not double-encoded.
	assert.Contains(t, string(data), `"result":{"echo":123}`)
}

type wrapErr struct {
	err error
}

func (e wrapErr) Error() string {
	if e.err == nil {
		return ""
	}
	return "wrap: " + e.err.Error()
}
func (e wrapErr) Unwrap() error { return e.err }
