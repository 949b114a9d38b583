package trident

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatable_NotImplemented(t *testing.T) {
	type Args struct {
		Low  int `json:"low"`
		High int `json:"high"`
	}
	args := &Args{Low: 10, High: 5}
	// Args does not implement Validatable; validateCustom should no-op
	err := validateCustom(args)
	assert.NoError(t, err)
}

// validatableArgs implements Validatable for tests.
type validatableArgs struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func (a validatableArgs) Validate() error {
	if a.Low > a.High {
		return errors.New("low must be <= high")
	}
	return nil
}

func TestValidatable_Implemented(t *testing.T) {
	ep, err := New("range_check", "Check a range", func(_ context.Context, _ validatableArgs) (struct {
		Ok bool `json:"ok"`
	}, error) {
		return struct {
			Ok bool `json:"ok"`
		}{Ok: true}, nil
	})
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register(ep))
	// Valid: low <= high
	out, err := reg.Execute(context.Background(), Call{ID: "1", Name: "range_check", Args: []byte(`{"low":1,"high":10}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
	// Invalid: low > high — Validatable.Validate returns error
	out, err = reg.Execute(context.Background(), Call{ID: "2", Name: "range_check", Args: []byte(`{"low":10,"high":5}`)})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
}

// pointerValidatableArgs implements Validatable with pointer receiver only.
type pointerValidatableArgs struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (a *pointerValidatableArgs) Validate() error {
	if a.Min > a.Max {
		return errors.New("min must be <= max")
	}
	return nil
}

func TestValidatable_PointerReceiver(t *testing.T) {
	ep, err := New("ptr_range_check", "Check a range", func(_ context.Context, _ pointerValidatableArgs) (struct {
		Ok bool `json:"ok"`
	}, error) {
		return struct {
			Ok bool `json:"ok"`
		}{Ok: true}, nil
	})
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register(ep))
	// Valid: min <= max
	out, err := reg.Execute(context.Background(), Call{ID: "1", Name: "ptr_range_check", Args: []byte(`{"min":1,"max":10}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
	// Invalid: min > max — Validatable.Validate (pointer receiver) returns error
	out, err = reg.Execute(context.Background(), Call{ID: "2", Name: "ptr_range_check", Args: []byte(`{"min":10,"max":5}`)})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
}
