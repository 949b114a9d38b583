package trident

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithStrict(t *testing.T) {
	type Args struct {
		X int `json:"x"`
	}
	type Out struct {
		Y int `json:"y"`
	}
	ep, err := New("strict_ep", "desc", func(_ context.Context, a Args) (Out, error) {
		return Out{Y: a.X}, nil
	}, WithStrict())
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register(ep))
	// Valid args
	out, err := reg.Execute(context.Background(), Call{ID: "1", Name: "strict_ep", Args: []byte(`{"x":1}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"y":1}`, string(out))
	// Extra property should fail schema validation (strict mode)
	_, err = reg.Execute(context.Background(), Call{ID: "2", Name: "strict_ep", Args: []byte(`{"x":1,"extra":2}`)})
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}

func TestWithDescription_Listing(t *testing.T) {
	ep := mustEndpoint(t, "documented", "Short form", WithDescription("The long form."))
	assert.Equal(t, "The long form.", ep.Description)
	reg := NewRegistry()
	require.NoError(t, reg.Register(ep))
	got, ok := reg.Get("documented")
	require.True(t, ok)
	assert.Equal(t, "The long form.", got.Description)
}

func TestEndpointOptions_Combined(t *testing.T) {
	type Args struct {
		N int `json:"n"`
	}
	type Out struct {
		Double int `json:"double"`
	}
	ep, err := New("combined", "desc", func(_ context.Context, a Args) (Out, error) {
		return Out{Double: a.N * 2}, nil
	}, WithStrict(), WithDescription("Doubles n."))
	require.NoError(t, err)
	assert.Equal(t, "Doubles n.", ep.Description)
	reg := NewRegistry()
	require.NoError(t, reg.Register(ep))
	out, err := reg.Execute(context.Background(), Call{ID: "1", Name: "combined", Args: []byte(`{"n":21}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"double":42}`, string(out))
}
