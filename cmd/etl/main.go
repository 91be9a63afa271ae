package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flowmap-etl/internal/adapter/geodata"
	httpadapter "github.com/couchcryptid/flowmap-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flowmap-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flowmap-etl/internal/config"
	"github.com/couchcryptid/flowmap-etl/internal/domain"
	"github.com/couchcryptid/flowmap-etl/internal/observability"
	"github.com/couchcryptid/flowmap-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize the dataset fetcher (feature-flagged via DATASET_FETCH_ENABLED).
	var fetcher domain.Fetcher
	if cfg.FetchEnabled {
		client := geodata.NewClient(cfg.FetchTimeout, metrics, logger)
		fetcher = geodata.NewCachedFetcher(client, cfg.FetchCacheSize, metrics)
		metrics.FetchEnabled.Set(1)
		logger.Info("dataset fetching enabled", "cache_size", cfg.FetchCacheSize, "timeout", cfg.FetchTimeout)
	} else {
		metrics.FetchEnabled.Set(0)
		logger.Info("dataset fetching disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(fetcher, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
