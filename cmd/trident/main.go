// Command trident serves a demo endpoint registry over REST, MCP, and
// the command line.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skosovsky/trident"
	"github.com/skosovsky/trident/cli"
	"github.com/skosovsky/trident/config"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("load configuration")
		os.Exit(1)
	}

	setupLogging(cfg)
	logger := componentLogger(cfg)

	reg := newRegistry(cfg, logger)
	if err := registerEndpoints(reg); err != nil {
		log.Error().Err(err).Msg("register endpoints")
		os.Exit(1)
	}

	app := cli.New(reg,
		cli.WithVersion(Version, GitCommit),
		cli.WithServerName(cfg.ServerName),
		cli.WithLogger(logger),
		cli.WithDefaultAddr(cfg.HTTPAddr),
		cli.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err := app.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRegistry builds the registry with the configured execution limits.
func newRegistry(cfg config.Config, logger *slog.Logger) *trident.Registry {
	opts := []trident.RegistryOption{
		trident.WithLogger(logger),
		trident.WithMiddleware(trident.WithTimeoutMiddleware(cfg.RequestTimeout)),
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, trident.WithMaxConcurrency(cfg.MaxConcurrency))
	}
	return trident.NewRegistry(opts...)
}

// setupLogging configures the global zerolog logger. Logs go to stderr
// so stdout stays clean for command output and the MCP stdio transport.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}

// componentLogger bridges the slog-based packages onto the zerolog sink.
func componentLogger(cfg config.Config) *slog.Logger {
	handler := slog.NewTextHandler(zerologWriter{}, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})
	return slog.New(handler)
}

// zerologWriter adapts the global zerolog logger to io.Writer for slog.
type zerologWriter struct{}

func (zerologWriter) Write(p []byte) (int, error) {
	log.Info().Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
