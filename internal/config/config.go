package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Simulation settings.
	Seed                 int64
	SeedSet              bool
	TickInterval         time.Duration
	MinutesPerTick       int
	ZonesFile            string
	DisasterAutoschedule bool
	DisasterStrict       bool

	// Local sinks. Empty paths disable them.
	StorePath  string
	JournalDir string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
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

	tickInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("TICK_INTERVAL", "10s"))
	if err != nil || tickInterval <= 0 {
		return nil, errors.New("invalid TICK_INTERVAL")
	}

	minutesPerTick, err := strconv.Atoi(sharedcfg.EnvOrDefault("MINUTES_PER_TICK", "10"))
	if err != nil || minutesPerTick <= 0 {
		return nil, errors.New("invalid MINUTES_PER_TICK: must be a positive integer")
	}

	seed, seedSet, err := parseSeed()
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", true)
	if err != nil {
		return nil, err
	}
	autoschedule, err := parseBool("DISASTER_AUTOSCHEDULE", false)
	if err != nil {
		return nil, err
	}
	strict, err := parseBool("DISASTER_STRICT", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-changes"),

		Seed:                 seed,
		SeedSet:              seedSet,
		TickInterval:         tickInterval,
		MinutesPerTick:       minutesPerTick,
		ZonesFile:            os.Getenv("ZONES_FILE"),
		DisasterAutoschedule: autoschedule,
		DisasterStrict:       strict,

		StorePath:  envOrDefaultAllowEmpty("STORE_PATH", "data/weather.db"),
		JournalDir: os.Getenv("JOURNAL_DIR"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseSeed() (int64, bool, error) {
	s := strings.TrimSpace(os.Getenv("WEATHER_SEED"))
	if s == "" {
		return 0, false, nil
	}
	seed, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid WEATHER_SEED: %w", err)
	}
	return seed, true, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// envOrDefaultAllowEmpty distinguishes an unset variable, which takes the
// default, from one explicitly set to "", which disables the feature.
func envOrDefaultAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}
