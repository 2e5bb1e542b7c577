package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/sentra-ops/incident-triage/internal/adapter/http"
	kafkaadapter "github.com/sentra-ops/incident-triage/internal/adapter/kafka"
	"github.com/sentra-ops/incident-triage/internal/adapter/nominatim"
	"github.com/sentra-ops/incident-triage/internal/config"
	"github.com/sentra-ops/incident-triage/internal/domain"
	"github.com/sentra-ops/incident-triage/internal/observability"
	"github.com/sentra-ops/incident-triage/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Initialize region resolver (feature-flagged via REGION_RESOLVER_ENABLED / REGION_RESOLVER_URL).
	var resolver domain.RegionResolver
	if cfg.RegionResolverEnabled {
		client := nominatim.NewClient(cfg.RegionResolverURL, cfg.RegionTimeout, metrics, logger)
		resolver = nominatim.NewCachedResolver(client, cfg.RegionCacheSize, metrics)
		metrics.RegionEnabled.Set(1)
		logger.Info("region resolution enabled", "cache_size", cfg.RegionCacheSize, "timeout", cfg.RegionTimeout)
	} else {
		logger.Info("region resolution disabled, using static metro table")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(logger)
	triager := pipeline.NewTriager(resolver, logger, nil, cfg.FeedRetention)

	p := pipeline.New(reader, transformer, triager, writer, logger, metrics, cfg.BatchSize)

	feedDefaults := domain.FeedOptions{
		Center:   domain.Geo{Lat: cfg.ResponderLat, Lng: cfg.ResponderLng},
		RadiusKm: cfg.ResponderRadiusKm,
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, feedDefaults, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start triage pipeline.
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
