package testutil

import (
	"fmt"
	"time"

	"github.com/skosovsky/trident"
)

// NewTestRegistry returns a Registry preloaded with the given endpoints
// and a generous execution timeout, suitable for tests. It panics when
// registration fails.
func NewTestRegistry(endpoints ...trident.Endpoint) *trident.Registry {
	reg := trident.NewRegistry(
		trident.WithMiddleware(trident.WithTimeoutMiddleware(30 * time.Second)),
	)
	for _, ep := range endpoints {
		if err := reg.Register(ep); err != nil {
			panic(fmt.Sprintf("testutil: register %q: %v", ep.Name, err))
		}
	}
	return reg
}
