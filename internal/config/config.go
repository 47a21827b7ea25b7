package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the ledger service
type Config struct {
	ServerPort      string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	Ledger          LedgerConfig
	Kafka           KafkaConfig
}

// LedgerConfig holds limits applied to new accounts
type LedgerConfig struct {
	MaxInitialBalance decimal.Decimal
	MaxEntries        int // 0 = unlimited
}

// KafkaConfig holds the transfer event publisher configuration
type KafkaConfig struct {
	Brokers []string // empty disables publishing
	Topic   string
}

// Enabled reports whether transfer events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load loads configuration from environment variables with default values.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getLogLevel("LOG_LEVEL", slog.LevelInfo),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Ledger: LedgerConfig{
			MaxInitialBalance: getDecimal("MAX_INITIAL_BALANCE", decimal.NewFromInt(10_000_000_000)),
			MaxEntries:        getInt("LEDGER_MAX_ENTRIES", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "transfer_completed"),
		},
	}
}

// getEnv retrieves an environment variable or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(os.Getenv(key))
	if err != nil || d.IsNegative() {
		return defaultValue
	}
	return d
}

func getLogLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
