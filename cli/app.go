// Package cli provides a command-line interface for a trident registry:
// direct endpoint calls, catalog listing, and the two server adapters
// behind serve/mcp subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skosovsky/trident"
)

// Registry is the registry surface the CLI depends on. It covers the
// call and list commands plus what the server subcommands wire up.
type Registry interface {
	Execute(ctx context.Context, call trident.Call) (json.RawMessage, error)
	ListEnriched(ctx context.Context) []trident.Endpoint
	ETag() string
	OnChanged(fn func()) (unsubscribe func())
}

// errReported marks failures whose details were already printed to
// stderr, so Execute does not print them again.
var errReported = errors.New("failure already reported")

// Option configures the App.
type Option func(*App)

// WithVersion sets the build metadata shown by the version command and
// advertised to MCP clients.
func WithVersion(version, commit string) Option {
	return func(a *App) {
		a.version = version
		a.commit = commit
	}
}

// WithServerName sets the name advertised to MCP clients. Defaults to
// "trident".
func WithServerName(name string) Option {
	return func(a *App) { a.name = name }
}

// WithLogger sets the logger handed to the server adapters. Defaults to
// a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithDefaultAddr sets the default listen address for the serve
// command.
func WithDefaultAddr(addr string) Option {
	return func(a *App) { a.addr = addr }
}

// WithShutdownTimeout bounds graceful HTTP shutdown in the serve
// command.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) { a.shutdownTimeout = d }
}

// App is the CLI application.
type App struct {
	reg    Registry
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	name            string
	version         string
	commit          string
	addr            string
	shutdownTimeout time.Duration
}

// New creates the CLI application for the given registry.
func New(reg Registry, opts ...Option) *App {
	app := &App{
		reg:     reg,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  slog.New(slog.DiscardHandler),
		name:    "trident",
		version: "dev",
		commit:  "unknown",
		addr:    ":8080",
	}
	for _, opt := range opts {
		opt(app)
	}

	app.root = &cobra.Command{
		Use:           "trident",
		Short:         "Expose typed operations over REST, MCP, and the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.AddCommand(
		app.newCallCmd(),
		app.newListCmd(),
		app.newServeCmd(),
		app.newMCPCmd(),
		app.newVersionCmd(),
	)
	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application. Failures that were not already
// reported by a command print as plain errors on stderr.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := a.root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return err
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for
// testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "%s version %s\n", a.name, a.version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", a.commit)
		},
	}
}
