package trident

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
)

// Enricher rewrites a listing snapshot before it is served: it may filter,
// reorder, or annotate the endpoints. It receives value copies, so nothing
// it does reaches registered state. A nil result is served as an empty list.
type Enricher func(ctx context.Context, endpoints []Endpoint) []Endpoint

// changeListener pairs a subscriber callback with the id its unsubscribe
// closure removes it by.
type changeListener struct {
	id int
	fn func()
}

// Registry holds endpoints and executes calls against them. It is safe for
// concurrent use: reads (Get, List, Version, ETag, Execute lookup) take a
// shared lock, mutations an exclusive one. Change listeners run outside the
// lock, so a listener may call back into the registry.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
	order     []string // registration order, drives List and the ETag fingerprint
	version   uint64
	etag      string // lazily computed, "" means invalidated
	listeners []changeListener
	nextID    int
	enricher  Enricher

	invoke  Invoke // dispatch wrapped by the middleware chain
	sem     chan struct{}
	done    chan struct{}
	running sync.WaitGroup
	opts    registryOptions
}

// NewRegistry creates a Registry with the given options. Concurrency is
// unlimited unless WithMaxConcurrency sets a bound.
func NewRegistry(opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	r := &Registry{
		endpoints: make(map[string]Endpoint),
		sem:       sem,
		done:      make(chan struct{}),
		opts:      o,
	}
	r.invoke = chainMiddlewares(o.middlewares, r.dispatch)
	return r
}

// Register adds an endpoint at the end of the listing order and invalidates
// the cached ETag. It has no other side effects: the version does not move
// and change listeners are not notified (call SignalChanged for that).
// Registering a name that already exists fails with ConfigurationError and
// leaves the registry untouched. Safe for concurrent use.
func (r *Registry) Register(ep Endpoint) error {
	if ep.handler == nil || ep.inputResolved == nil || ep.outputResolved == nil {
		return NewConfigurationError(fmt.Sprintf("endpoint %q is incomplete; build it with New or NewWithSchemas", ep.Name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.endpoints[ep.Name]; exists {
		return NewConfigurationError(fmt.Sprintf("endpoint %q is already registered", ep.Name))
	}
	r.endpoints[ep.Name] = ep
	r.order = append(r.order, ep.Name)
	r.etag = ""
	return nil
}

// Get returns the endpoint with the given name, or (zero, false) if not
// registered.
func (r *Registry) Get(name string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[name]
	return ep, ok
}

// List returns the registered endpoints in registration order. The slice and
// its elements are copies; mutating them does not affect the registry.
func (r *Registry) List() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []Endpoint {
	out := make([]Endpoint, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.endpoints[name])
	}
	return out
}

// ListEnriched returns the listing after the enricher (if any) has rewritten
// it. Without an enricher it behaves exactly like List. The enricher runs
// outside the registry lock on a snapshot, so it may call back into the
// registry, and a misbehaving enricher can at worst corrupt its own output.
func (r *Registry) ListEnriched(ctx context.Context) []Endpoint {
	r.mu.RLock()
	snapshot := r.listLocked()
	enricher := r.enricher
	r.mu.RUnlock()
	if enricher == nil {
		return snapshot
	}
	enriched := enricher(ctx, snapshot)
	if enriched == nil {
		return []Endpoint{}
	}
	return enriched
}

// SetEnricher installs the listing enricher, replacing any previous one.
// Pass nil to remove it. The version and ETag are unaffected: an enricher
// changes how the listing is presented, not what is registered.
func (r *Registry) SetEnricher(e Enricher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enricher = e
}

// OnChanged subscribes fn to change notifications (see SignalChanged) and
// returns its unsubscribe function. Unsubscribing is idempotent. The same fn
// may be subscribed multiple times; each subscription is notified and
// unsubscribed independently.
func (r *Registry) OnChanged(fn func()) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners = append(r.listeners, changeListener{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.listeners = slices.DeleteFunc(r.listeners, func(l changeListener) bool {
			return l.id == id
		})
	}
}

// SignalChanged bumps the version, invalidates the cached ETag, and notifies
// every subscribed listener exactly once, in subscription order. Listeners
// run outside the registry lock against a snapshot of the subscription list:
// subscribing or unsubscribing during notification affects only later
// signals. A panicking listener propagates to the SignalChanged caller;
// listeners that must not take the registry down should recover themselves.
func (r *Registry) SignalChanged() {
	r.mu.Lock()
	r.version++
	r.etag = ""
	snapshot := slices.Clone(r.listeners)
	r.mu.Unlock()
	for _, l := range snapshot {
		l.fn()
	}
}

// Version returns the change counter. It starts at 0 and moves only through
// SignalChanged.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// ETag returns an opaque quoted validator over the version and the listing
// fingerprint (name, summary, description of each endpoint, in order). It is
// computed lazily and cached until Register or SignalChanged invalidates it,
// so two calls without an intervening change return the identical string.
func (r *Registry) ETag() string {
	r.mu.RLock()
	etag := r.etag
	r.mu.RUnlock()
	if etag != "" {
		return etag
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.etag == "" {
		r.etag = r.computeETagLocked()
	}
	return r.etag
}

func (r *Registry) computeETagLocked() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "v%d", r.version)
	for i, name := range r.order {
		if i == 0 {
			io.WriteString(h, ":")
		} else {
			io.WriteString(h, "|")
		}
		ep := r.endpoints[name]
		fmt.Fprintf(h, "%s:%s:%s", ep.Name, ep.Summary, ep.Description)
	}
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// Shutdown closes the registry for new calls and waits for in-flight
// executions or ctx to cancel.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
