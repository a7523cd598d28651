// Command server runs the frage Q&A backend.
//
// Configuration is layered: built-in defaults, then a YAML config file
// (-config flag, FRAGE_CONFIG, ./config.yaml, /etc/frage/config.yaml),
// then FRAGE_* environment variables. The token signing secret
// (auth.secret / FRAGE_SECRET_KEY) is required; startup fails without it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/frage-dev/frage/pkg/auth"
	"github.com/frage-dev/frage/pkg/config"
	"github.com/frage-dev/frage/pkg/forum"
	"github.com/frage-dev/frage/pkg/storage"
	"github.com/frage-dev/frage/pkg/storage/memory"
	"github.com/frage-dev/frage/pkg/storage/postgres"
	transporthttp "github.com/frage-dev/frage/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	// Create the store.
	var store storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		store, err = postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres",
			"migrate_on_start", cfg.Storage.Postgres.MigrateOnStart)
	default:
		store = memory.New()
		slog.Info("storage enabled", "type", "memory")
	}
	defer store.Close()

	// Wire auth and the forum service.
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	resolver := auth.NewResolver(tokens, store)
	service := forum.New(store, resolver)

	var limiter auth.RateLimiter
	if cfg.Auth.RateLimitRPM > 0 {
		limiter = auth.NewInProcessLimiter(cfg.Auth.RateLimitRPM)
		slog.Info("rate limiting enabled", "rpm", cfg.Auth.RateLimitRPM)
	}

	// Create the HTTP adapter and server.
	adapter := transporthttp.NewAdapter(service, resolver, limiter, store, transporthttp.Config{
		MaxBodySize:   cfg.Server.MaxBodySize,
		EnableMetrics: cfg.Observability.Metrics.Enabled,
	})

	srv := transporthttp.NewServer(adapter.Handler(),
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	slog.Info("frage starting",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_ttl", cfg.Auth.TokenTTL,
		"metrics", cfg.Observability.Metrics.Enabled,
	)

	return srv.ListenAndServe()
}
