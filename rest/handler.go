// Package rest exposes a trident registry over plain HTTP. It carries no
// business logic: execution goes through the shared dispatch pipeline and
// failures surface as the uniform error envelope.
//
// Routes:
//
//	POST /rpc/{name}  execute the named endpoint with the request body as args
//	GET  /tools       list endpoint descriptors, with ETag revalidation
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skosovsky/trident"
)

// Registry is the registry surface the adapter depends on.
type Registry interface {
	Execute(ctx context.Context, call trident.Call) (json.RawMessage, error)
	ListEnriched(ctx context.Context) []trident.Endpoint
	ETag() string
}

// Option configures the handler.
type Option func(*handler)

// WithLogger sets the logger for adapter traffic. Defaults to a discard
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *handler) { h.logger = logger }
}

type handler struct {
	reg    Registry
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler returns an http.Handler serving the registry routes.
func NewHandler(reg Registry, opts ...Option) http.Handler {
	h := &handler{
		reg:    reg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rpc/{name}", h.handleExecute)
	mux.HandleFunc("GET /tools", h.handleListTools)
	h.mux = mux
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, trident.NewValidationError(trident.Issue{Message: "read request body: " + err.Error()}))
		return
	}

	call := trident.Call{ID: uuid.NewString(), Name: name, Args: body}
	out, err := h.reg.Execute(r.Context(), call)
	if err != nil {
		h.logger.Debug("rpc call failed", "endpoint", name, "id", call.ID, "error", err)
		h.writeError(w, err)
		return
	}

	h.logger.Debug("rpc call", "endpoint", name, "id", call.ID)
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		h.logger.Error("write response", "endpoint", name, "error", err)
	}
}

// toolDescriptor is the catalog entry shape served by GET /tools.
type toolDescriptor struct {
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
}

func (h *handler) handleListTools(w http.ResponseWriter, r *http.Request) {
	etag := h.reg.ETag()
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	endpoints := h.reg.ListEnriched(r.Context())
	descriptors := make([]toolDescriptor, 0, len(endpoints))
	for _, ep := range endpoints {
		descriptors = append(descriptors, toolDescriptor{
			Name:        ep.Name,
			Summary:     ep.Summary,
			Description: ep.Description,
		})
	}
	h.writeJSON(w, http.StatusOK, descriptors)
}

type errorEnvelope struct {
	Error *trident.Error `json:"error"`
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	terr := trident.Normalize(err)
	h.writeJSON(w, statusFor(terr), errorEnvelope{Error: terr})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

// statusFor maps taxonomy kinds to HTTP status codes.
func statusFor(err *trident.Error) int {
	switch {
	case errors.Is(err, trident.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, trident.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
