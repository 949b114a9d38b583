// Package mcpserver exposes a trident registry as a Model Context
// Protocol server using the official Go SDK.
//
// Every enriched descriptor becomes one MCP tool backed by a raw
// handler, so input validation and the error taxonomy stay inside the
// shared dispatch pipeline instead of the SDK. Taxonomy failures are
// returned as tool results with IsError set, never as protocol errors.
// A registry change subscription keeps the SDK tool set in step with
// the registry, which notifies connected sessions via
// tools/list_changed.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/skosovsky/trident"
)

// Registry is the registry surface the adapter depends on.
type Registry interface {
	Execute(ctx context.Context, call trident.Call) (json.RawMessage, error)
	ListEnriched(ctx context.Context) []trident.Endpoint
	OnChanged(fn func()) (unsubscribe func())
}

// Config identifies the MCP server to clients.
type Config struct {
	Name    string
	Version string
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger for tool sync and traffic logs. Defaults
// to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server bridges a registry to MCP sessions over a transport.
type Server struct {
	reg         Registry
	mcpServer   *mcp.Server
	logger      *slog.Logger
	unsubscribe func()

	mu    sync.Mutex
	known map[string]bool
}

// New builds the server, registers the current endpoint set as tools,
// and subscribes to registry change notifications so the tool set
// follows the registry.
func New(reg Registry, cfg Config, opts ...Option) *Server {
	if cfg.Name == "" {
		cfg.Name = "trident"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		reg:    reg,
		logger: slog.New(slog.DiscardHandler),
		known:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil)
	s.sync(context.Background())
	s.unsubscribe = reg.OnChanged(func() { s.sync(context.Background()) })
	return s
}

// Run serves MCP over stdio until the context ends or the transport
// closes.
func (s *Server) Run(ctx context.Context) error {
	return s.run(ctx, &mcp.StdioTransport{})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("run mcp server: %w", err)
	}
	return nil
}

// Close unsubscribes from registry change notifications. It does not
// stop a running transport; cancel Run's context for that.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// sync reconciles the SDK tool set with the registry's enriched
// listing. AddTool replaces same-name tools, so updates are upserts;
// tools whose endpoints disappeared are removed.
func (s *Server) sync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	endpoints := s.reg.ListEnriched(ctx)
	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		seen[ep.Name] = true
		s.mcpServer.AddTool(toolFor(ep), s.handlerFor(ep.Name))
	}

	var stale []string
	for name := range s.known {
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		s.mcpServer.RemoveTools(stale...)
	}
	s.known = seen
	s.logger.Debug("tool set synced", "tools", len(seen), "removed", len(stale))
}

// toolFor maps a descriptor to an MCP tool. The description falls back
// to the summary so clients always see prose next to the name.
func toolFor(ep trident.Endpoint) *mcp.Tool {
	description := ep.Description
	if description == "" {
		description = ep.Summary
	}
	return &mcp.Tool{
		Name:        ep.Name,
		Description: description,
		InputSchema: ep.Input,
	}
}

// handlerFor routes a tool invocation through the shared pipeline.
func (s *Server) handlerFor(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := rawArguments(req)
		if err != nil {
			return errorResult(trident.NewValidationError(trident.Issue{Message: err.Error()})), nil
		}

		out, err := s.reg.Execute(ctx, trident.Call{Name: name, Args: args})
		if err != nil {
			s.logger.Debug("tool call failed", "tool", name, "error", err)
			return errorResult(err), nil
		}

		s.logger.Debug("tool call", "tool", name)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
		}, nil
	}
}

// rawArguments normalizes the SDK's argument payload to raw JSON for
// the pipeline. Wire traffic arrives as json.RawMessage; in-process
// callers may pass decoded values.
func rawArguments(req *mcp.CallToolRequest) (json.RawMessage, error) {
	if req == nil || req.Params == nil {
		return nil, nil
	}
	switch args := any(req.Params.Arguments).(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return args, nil
	case []byte:
		return json.RawMessage(args), nil
	default:
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode tool arguments: %w", err)
		}
		return data, nil
	}
}

// errorResult wraps the uniform error envelope as tool output.
func errorResult(err error) *mcp.CallToolResult {
	terr := trident.Normalize(err)
	data, merr := json.Marshal(struct {
		Error *trident.Error `json:"error"`
	}{Error: terr})
	if merr != nil {
		data = []byte(`{"error":{"name":"InternalServerError","code":"INTERNAL_SERVER_ERROR","message":"internal error while executing endpoint"}}`)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
