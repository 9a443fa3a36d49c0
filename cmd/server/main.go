package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/config"
	"github.com/mmynk/tillpoint/internal/server"
	"github.com/mmynk/tillpoint/internal/storage"
	"github.com/mmynk/tillpoint/internal/storage/gormstore"
	"github.com/mmynk/tillpoint/internal/storage/sqlite"
	"github.com/mmynk/tillpoint/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.LoadServer()

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := server.NewDeps(store, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), reg, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDemo {
		if err := storage.SeedCatalog(ctx, store); err != nil {
			slog.Error("Failed to seed catalog", "error", err)
			os.Exit(1)
		}
		if err := deps.Auth.SeedOperators(ctx, cfg.DemoPassword); err != nil {
			slog.Error("Failed to seed operators", "error", err)
			os.Exit(1)
		}
	}

	// Terminals built with backend.WithH2C multiplex cart syncs over one
	// cleartext HTTP/2 connection; HTTP/1.1 clients are still served.
	handler := h2c.NewHandler(server.NewRouter(deps), &http2.Server{})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("POS backend starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}
	slog.Info("Server stopped")
}

// openStore picks Postgres when DATABASE_DSN is set and SQLite otherwise.
func openStore(cfg config.Server) (storage.Store, error) {
	if cfg.UsePostgres() {
		store, err := gormstore.OpenPostgres(cfg.DatabaseDSN, slog.Default().Enabled(context.Background(), slog.LevelDebug))
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.DBPath)
	return store, nil
}
