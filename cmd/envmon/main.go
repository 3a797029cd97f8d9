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

	httpadapter "github.com/couchcryptid/envmon-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/envmon-service/internal/adapter/kafka"
	"github.com/couchcryptid/envmon-service/internal/adapter/mapbox"
	"github.com/couchcryptid/envmon-service/internal/adapter/mock"
	"github.com/couchcryptid/envmon-service/internal/adapter/postgres"
	"github.com/couchcryptid/envmon-service/internal/config"
	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/observability"
	"github.com/couchcryptid/envmon-service/internal/pipeline"
	"github.com/couchcryptid/envmon-service/internal/query"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open data source", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	checks := readiness{}
	if rc, ok := source.(sharedobs.ReadinessChecker); ok {
		checks = append(checks, rc)
	}

	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(newGeocoder(cfg, metrics, logger), logger)
		p = pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		checks = append(checks, p)
	} else {
		logger.Info("stream normalizer disabled")
	}

	services := query.NewServices(source, logger)
	srv := httpadapter.NewServer(cfg, services, checks, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// openSource builds the dashboard data source named by DATA_SOURCE.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (query.DataSource, func(), error) {
	switch cfg.DataSource {
	case config.DataSourcePostgres:
		src, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := src.EnsureSchema(ctx); err != nil {
			src.Close()
			return nil, nil, err
		}
		logger.Info("using postgres data source")
		return src, src.Close, nil
	default:
		opts := []mock.Option{mock.WithDelay(cfg.MockDelay)}
		if cfg.MockSeed != 0 {
			opts = append(opts, mock.WithSeed(cfg.MockSeed))
		}
		src, err := mock.New(logger, opts...)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using mock data source", "delay", cfg.MockDelay)
		return src, func() {}, nil
	}
}

// newGeocoder returns nil unless geocoding is enabled via MAPBOX_ENABLED / MAPBOX_TOKEN.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.MapboxEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	logger.Info("mapbox geocoding enabled", "cache_ttl", cfg.MapboxCacheTTL, "timeout", cfg.MapboxTimeout)
	return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheTTL, metrics)
}

// readiness is ready when every component is.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("not ready: %w", err)
		}
	}
	return nil
}
