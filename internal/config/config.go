package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Data source names accepted by DATA_SOURCE.
const (
	DataSourceMock     = "mock"
	DataSourcePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Dashboard data source.
	DataSource  string
	DatabaseURL string
	MockDelay   time.Duration
	MockSeed    uint64 // 0 means seed from the clock

	// Stream normalizer.
	PipelineEnabled    bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken    string
	MapboxEnabled  bool
	MapboxTimeout  time.Duration
	MapboxCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first; it
// never overrides variables already present in the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	mapboxCacheTTL, err := parsePositiveDuration("MAPBOX_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	mockDelay, err := parseMockDelay()
	if err != nil {
		return nil, err
	}

	mockSeed, err := parseMockSeed()
	if err != nil {
		return nil, err
	}

	pipelineEnabled, err := parseBool("PIPELINE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: parseList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		DataSource:  strings.ToLower(sharedcfg.EnvOrDefault("DATA_SOURCE", DataSourceMock)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MockDelay:   mockDelay,
		MockSeed:    mockSeed,

		PipelineEnabled:    pipelineEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-station-readings"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "normalized-station-records"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "envmon"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:    mapboxToken,
		MapboxEnabled:  mapboxEnabled,
		MapboxTimeout:  mapboxTimeout,
		MapboxCacheTTL: mapboxCacheTTL,
	}

	switch cfg.DataSource {
	case DataSourceMock:
	case DataSourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATA_SOURCE is postgres but DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: must be %s or %s", cfg.DataSource, DataSourceMock, DataSourcePostgres)
	}

	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseMockDelay allows zero so local development can skip the delay.
func parseMockDelay() (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault("MOCK_DELAY", "500ms"))
	if err != nil || d < 0 {
		return 0, errors.New("invalid MOCK_DELAY")
	}
	return d, nil
}

func parseMockSeed() (uint64, error) {
	s := os.Getenv("MOCK_SEED")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid MOCK_SEED: %w", err)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
