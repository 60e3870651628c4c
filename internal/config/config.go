package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultArchiveURL is the OGIMET bulletin query endpoint.
const DefaultArchiveURL = "https://www.ogimet.com/display_metars2.php"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Archive source.
	ArchiveBaseURL   string
	ArchiveTimeout   time.Duration
	ArchiveUserAgent string
	ArchiveCacheSize int

	// Retry waits per failure class.
	RetryMaxAttempts    int
	RetryEmptyWait      time.Duration
	RetryTimeoutWait    time.Duration
	RetryConnectionWait time.Duration
	RetryOtherWait      time.Duration

	// Year batch pacing.
	BatchGroupSize  int
	BatchUnitDelay  time.Duration
	BatchGroupDelay time.Duration

	// Sinks.
	OutputDir     string
	WriteManifest bool
	LedgerPath    string
	KafkaBrokers  []string
	KafkaTopic    string

	QueueSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		ArchiveBaseURL:   sharedcfg.EnvOrDefault("ARCHIVE_BASE_URL", DefaultArchiveURL),
		ArchiveUserAgent: sharedcfg.EnvOrDefault("ARCHIVE_USER_AGENT", "metar-archive-etl/1.0"),
		OutputDir:        sharedcfg.EnvOrDefault("OUTPUT_DIR", "data"),
		WriteManifest:    os.Getenv("WRITE_MANIFEST") == "true",
		LedgerPath:       os.Getenv("LEDGER_PATH"),
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "aviation-weather-reports"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
		min time.Duration
	}{
		{"ARCHIVE_TIMEOUT", "60s", &cfg.ArchiveTimeout, time.Nanosecond},
		{"RETRY_EMPTY_WAIT", "3s", &cfg.RetryEmptyWait, 0},
		{"RETRY_TIMEOUT_WAIT", "5s", &cfg.RetryTimeoutWait, 0},
		{"RETRY_CONNECTION_WAIT", "10s", &cfg.RetryConnectionWait, 0},
		{"RETRY_OTHER_WAIT", "3s", &cfg.RetryOtherWait, 0},
		{"BATCH_UNIT_DELAY", "2s", &cfg.BatchUnitDelay, 0},
		{"BATCH_GROUP_DELAY", "5s", &cfg.BatchGroupDelay, 0},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.def, d.min)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		def int
		dst *int
		min int
		max int
	}{
		{"ARCHIVE_CACHE_SIZE", 64, &cfg.ArchiveCacheSize, 0, 10000},
		{"RETRY_MAX_ATTEMPTS", 3, &cfg.RetryMaxAttempts, 1, 20},
		{"BATCH_GROUP_SIZE", 2, &cfg.BatchGroupSize, 1, 12},
		{"QUEUE_SIZE", 8, &cfg.QueueSize, 1, 1000},
	}
	for _, n := range ints {
		v, err := parseInt(n.key, n.def, n.min, n.max)
		if err != nil {
			return nil, err
		}
		*n.dst = v
	}

	if cfg.ArchiveBaseURL == "" {
		return nil, errors.New("ARCHIVE_BASE_URL is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether extracted reports are also published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// LedgerEnabled reports whether unit outcomes are recorded in SQLite.
func (c *Config) LedgerEnabled() bool { return c.LedgerPath != "" }

func parseDuration(key, def string, minimum time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < minimum {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, minimum, maximum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum || n > maximum {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, minimum, maximum)
	}
	return n, nil
}
