package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ecomlab/salesdesk/internal/config"
	"github.com/ecomlab/salesdesk/internal/core"
	"github.com/ecomlab/salesdesk/internal/ingest"
	"github.com/ecomlab/salesdesk/internal/logging"
	"github.com/ecomlab/salesdesk/internal/metrics"
	"github.com/ecomlab/salesdesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset_path", cfg.Dataset.Path,
		"dataset_encoding", cfg.Dataset.Encoding,
	)

	store := core.NewRecordStore()
	m := metrics.New()

	// Bootstrap load: ingest the configured dataset before serving queries.
	if cfg.Dataset.Path != "" {
		if err := loadDataset(store, m, cfg); err != nil {
			slog.Error("failed to load dataset", "path", cfg.Dataset.Path, "error", err)
			os.Exit(1)
		}
		summary := store.Summary()
		slog.Info("dataset loaded",
			"records", summary.Records,
			"products", summary.Products,
			"customers", summary.Customers,
			"countries", summary.Countries,
		)
	}

	server := web.NewServer(store, m, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
	}
}

// loadDataset ingests the startup CSV file into the store.
func loadDataset(store *core.RecordStore, m *metrics.Metrics, cfg *config.Config) error {
	f, err := os.Open(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := ingest.NewCSVSource(ingest.Wrap(f, cfg.Dataset.Encoding))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.Timeout)
	defer cancel()

	result, err := ingest.NewLoader(store, m).Load(ctx, src)
	if err != nil {
		return err
	}
	if result.Invalid > 0 || result.Decode > 0 {
		slog.Warn("dataset had skipped rows",
			"invalid", result.Invalid,
			"decode_errors", result.Decode,
		)
	}
	return nil
}
