package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" envDefault:"mintworks"`
	HTTPPort     string   `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	StoreDriver  string   `env:"STORE_DRIVER" envDefault:"memory"`

	CollectionFile string        `env:"COLLECTION_FILE"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"168h"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Fallback addresses for the built-in collection when no file is given.
	OwnerAddress      string `env:"DROP_OWNER_ADDRESS"`
	CapBeneficiary    string `env:"DROP_CAP_BENEFICIARY"`
	FixedBeneficiary  string `env:"DROP_FIXED_BENEFICIARY"`
	ResidualRecipient string `env:"DROP_RESIDUAL_RECIPIENT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return Config{}, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.OutboxPollInterval <= 0 {
		return Config{}, errors.New("OUTBOX_POLL_INTERVAL must be positive")
	}
	if cfg.OutboxBatchSize <= 0 {
		return Config{}, errors.New("OUTBOX_BATCH_SIZE must be positive")
	}
	return cfg, nil
}
