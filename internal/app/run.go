package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adanyl0v/go-todo-client/internal/api"
	"github.com/adanyl0v/go-todo-client/internal/cli"
	"github.com/adanyl0v/go-todo-client/internal/config"
	"github.com/adanyl0v/go-todo-client/internal/session"
)

// Run wires the client from the global config and runs one command,
// returning the process exit code.
func Run(ctx context.Context, args []string) int {
	cfg := config.Global()

	storage, closeStorage, err := openSessionStorage(ctx, cfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to open session storage")
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics(registry)
	client := api.New(globalLogger, cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithMetrics(metrics),
	)

	store, err := session.New(ctx, globalLogger, storage, client)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load session")
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	code := cli.New(
		globalLogger,
		store,
		api.NewTaskClient(client, store),
		os.Stdin,
		os.Stdout,
		os.Stderr,
	).Run(ctx, args)

	writeMetrics(cfg.Metrics.File, registry)
	return code
}

func writeMetrics(path string, registry *prometheus.Registry) {
	if path == "" {
		return
	}

	err := prometheus.WriteToTextfile(path, registry)
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Str("path", path).
			Msg("failed to write metrics textfile")
		return
	}
	globalLogger.Debug().
		Str("path", path).
		Msg("wrote metrics textfile")
}
