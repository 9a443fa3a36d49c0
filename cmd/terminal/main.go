package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/tillpoint/internal/backend"
	"github.com/mmynk/tillpoint/internal/billno"
	"github.com/mmynk/tillpoint/internal/config"
	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/pos"
	"github.com/mmynk/tillpoint/pkg/logging"
)

func main() {
	// Keep the console readable; LOG_LEVEL=info shows sync and allocation logs.
	level := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if os.Getenv("LOG_LEVEL") == "" {
		level = slog.LevelWarn
	}
	logging.SetupWithLevel(level)

	cfg := config.LoadTerminal()
	var opts []backend.Option
	if cfg.H2C {
		opts = append(opts, backend.WithH2C())
	}
	api := backend.New(cfg.APIBase, cfg.RequestTimeout, opts...)
	term := pos.New(api, pos.Config{
		LocationCode: cfg.LocationCode,
		CounterCode:  cfg.CounterCode,
		SyncTimeout:  cfg.SyncTimeout,
		State:        billno.NewFileState(cfg.StatePath),
		Metrics:      metrics.NewTerminal(prometheus.DefaultRegisterer),
	})
	defer term.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			slog.Info("Serving terminal metrics", "address", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				slog.Warn("Metrics listener stopped", "error", err)
			}
		}()
	}

	if err := api.Health(ctx); err != nil {
		slog.Warn("Backend unreachable", "url", cfg.APIBase, "error", err)
	}

	console := NewConsole(term, os.Stdin, os.Stdout)
	console.printf("Terminal %s/%s connected to %s. Type help for commands.", cfg.LocationCode, cfg.CounterCode, cfg.APIBase)
	if cfg.Username != "" {
		console.Exec(ctx, "login", []string{cfg.Username, cfg.Password})
	}
	console.Run(ctx)
}
