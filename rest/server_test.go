package rest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ListenAndServe_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	srv := NewServer("127.0.0.1:0", newEchoRegistry(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx)
	}()

	// Give the listener a moment to come up, then stop it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_ListenAndServe_BindError(t *testing.T) {
	t.Parallel()
	srv := NewServer("256.256.256.256:0", newEchoRegistry(t))

	err := srv.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve http")
}

func TestNewServer_Defaults(t *testing.T) {
	t.Parallel()
	srv := NewServer(":8080", newEchoRegistry(t))
	assert.Equal(t, ":8080", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Zero(t, srv.ShutdownTimeout)
}
