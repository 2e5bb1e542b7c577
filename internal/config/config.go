package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// FeedRetention bounds how long triaged incidents stay available for
	// duplicate matching and the /feed snapshot.
	FeedRetention time.Duration

	// Responder jurisdiction defaults for the feed radius filter.
	ResponderLat      float64
	ResponderLng      float64
	ResponderRadiusKm float64

	// External region resolver configuration.
	RegionResolverURL     string
	RegionResolverEnabled bool
	RegionTimeout         time.Duration
	RegionCacheSize       int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntEnv("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDurationEnv("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	feedRetention, err := parseDurationEnv("FEED_RETENTION", time.Hour)
	if err != nil {
		return nil, err
	}

	regionTimeout, err := parseDurationEnv("REGION_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	regionCacheSize, err := parseIntEnv("REGION_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	responderLat, err := parseFloatEnv("RESPONDER_CENTER_LAT", 20.5937)
	if err != nil {
		return nil, err
	}
	responderLng, err := parseFloatEnv("RESPONDER_CENTER_LNG", 78.9629)
	if err != nil {
		return nil, err
	}
	responderRadius, err := parseFloatEnv("RESPONDER_RADIUS_KM", 1000)
	if err != nil {
		return nil, err
	}

	resolverURL := os.Getenv("REGION_RESOLVER_URL")
	resolverEnabled := resolverURL != ""
	if v := os.Getenv("REGION_RESOLVER_ENABLED"); v != "" {
		resolverEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "incident-reports"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "triaged-incidents"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "incident-triage"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		FeedRetention:      feedRetention,

		ResponderLat:      responderLat,
		ResponderLng:      responderLng,
		ResponderRadiusKm: responderRadius,

		RegionResolverURL:     resolverURL,
		RegionResolverEnabled: resolverEnabled,
		RegionTimeout:         regionTimeout,
		RegionCacheSize:       regionCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	// Anything shorter than the 10-minute duplicate window would let
	// cross-batch re-reports slip through unflagged.
	if cfg.FeedRetention < 10*time.Minute {
		return nil, errors.New("FEED_RETENTION must be at least 10m")
	}
	if cfg.RegionResolverEnabled && cfg.RegionResolverURL == "" {
		return nil, errors.New("REGION_RESOLVER_ENABLED is true but REGION_RESOLVER_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
