package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	dropservice "mintworks/contexts/issuance/drop-service"
	postgresadapter "mintworks/contexts/issuance/drop-service/adapters/postgres"
	"mintworks/contexts/issuance/drop-service/application/commands"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"
	"mintworks/internal/platform/config"
	"mintworks/internal/platform/db"
	"mintworks/internal/platform/httpserver"
	"mintworks/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const auditConsumerGroup = "drop-event-audit-cg"

var auditedEventTypes = []string{
	contractsv1.EventTypeDropMinted,
	contractsv1.EventTypeDropReserveMinted,
	contractsv1.EventTypeDropClaimed,
	contractsv1.EventTypeDropSettled,
	contractsv1.EventTypeDropWithdrawn,
	contractsv1.EventTypeDropWithdrawalReverted,
	contractsv1.EventTypeDropSettingsUpdated,
}

type APIApp struct {
	server       *httpserver.Server
	module       dropservice.Module
	postgres     *db.Postgres
	bus          *messaging.Kafka
	inProcess    bool
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	module       dropservice.Module
	bus          *messaging.Kafka
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}
	module, pg, err := buildModule(ctx, cfg, bus, logger)
	if err != nil {
		return nil, err
	}

	return &APIApp{
		server:       httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		module:       module,
		postgres:     pg,
		bus:          bus,
		inProcess:    cfg.StoreDriver == config.StoreDriverMemory,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return nil, errors.New("worker requires STORE_DRIVER=postgres; the memory store relays inside the api process")
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}
	module, pg, err := buildModule(ctx, cfg, bus, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{
		postgres:     pg,
		module:       module,
		bus:          bus,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

// buildModule wires the drop module to the configured store and makes sure
// the collection aggregate exists.
func buildModule(
	ctx context.Context,
	cfg config.Config,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (dropservice.Module, *db.Postgres, error) {
	collectionFile, err := config.LoadCollection(cfg.CollectionFile, config.DefaultCollection(cfg))
	if err != nil {
		return dropservice.Module{}, nil, err
	}
	definition, err := CollectionDefinition(collectionFile)
	if err != nil {
		return dropservice.Module{}, nil, err
	}

	var (
		module dropservice.Module
		pg     *db.Postgres
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pg, err = db.Connect(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return dropservice.Module{}, nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, definition.CollectionID, logger)
		if err := repo.Migrate(ctx); err != nil {
			_ = pg.Close()
			return dropservice.Module{}, nil, err
		}
		module = dropservice.NewModule(dropservice.Dependencies{
			UnitOfWork:     repo,
			Initializer:    repo,
			Collections:    repo,
			Titles:         repo,
			Predecessor:    postgresadapter.NewExternalHoldings(pg.DB, postgresadapter.SourcePredecessor),
			Membership:     postgresadapter.NewExternalHoldings(pg.DB, postgresadapter.SourceMembership),
			Funds:          postgresadapter.NewPayoutQueue(pg.DB, definition.CollectionID),
			Outbox:         repo,
			Publisher:      publisher,
			Clock:          repo,
			IDGenerator:    repo,
			IdempotencyTTL: cfg.IdempotencyTTL,
			OutboxBatch:    cfg.OutboxBatchSize,
			Logger:         logger,
		})
	default:
		module = dropservice.NewInMemoryModule(logger)
		module.Relay.Publisher = publisher
		module.Relay.BatchSize = cfg.OutboxBatchSize
		module.Handler.Mint.IdempotencyTTL = cfg.IdempotencyTTL
	}

	if err := EnsureCollection(ctx, module, definition); err != nil {
		if pg != nil {
			_ = pg.Close()
		}
		return dropservice.Module{}, nil, err
	}
	return module, pg, nil
}

// EnsureCollection initializes the collection unless it already exists.
func EnsureCollection(ctx context.Context, module dropservice.Module, definition entities.CollectionDefinition) error {
	_, err := module.Initialize.Execute(ctx, commands.InitializeCommand{Definition: definition})
	if err == nil || errors.Is(err, domainerrors.ErrAlreadyInitialized) {
		return nil
	}
	return fmt.Errorf("initialize collection %s: %w", definition.CollectionID, err)
}

// CollectionDefinition converts the file representation into the domain one.
func CollectionDefinition(file config.Collection) (entities.CollectionDefinition, error) {
	amounts := make(map[string]entities.Amount, 4)
	for name, raw := range map[string]string{
		"member_cost":    file.MemberCost,
		"whitelist_cost": file.WhitelistCost,
		"regular_cost":   file.RegularCost,
		"cap_lifetime":   file.CapLifetime,
	} {
		amount, err := entities.ParseAmount(raw)
		if err != nil {
			return entities.CollectionDefinition{}, fmt.Errorf("collection %s: %w", name, err)
		}
		amounts[name] = amount
	}

	return entities.CollectionDefinition{
		CollectionID:      file.CollectionID,
		Name:              file.Name,
		Owner:             file.Owner,
		MaxSupply:         file.MaxSupply,
		PerTransactionCap: file.PerTransactionCap,
		ClaimRatio:        file.ClaimRatio,
		MintPaused:        file.MintPaused,
		ClaimPaused:       file.ClaimPaused,
		BaseURI:           file.BaseURI,
		Pricing: entities.PricingConfig{
			MemberCost:     amounts["member_cost"],
			WhitelistCost:  amounts["whitelist_cost"],
			RegularCost:    amounts["regular_cost"],
			WhitelistQuota: file.WhitelistQuota,
		},
		CapBeneficiary:    file.CapBeneficiary,
		FixedBeneficiary:  file.FixedBeneficiary,
		ResidualRecipient: file.ResidualRecipient,
		CapLifetime:       amounts["cap_lifetime"],
		FixedSharePercent: file.FixedSharePercent,
		CapSharePercent:   file.CapSharePercent,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.inProcess {
		if err := subscribeAudit(ctx, a.bus, a.logger); err != nil {
			return err
		}
		go func() {
			if err := a.module.Relay.Run(ctx, a.pollInterval); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("in-process outbox relay stopped",
					"event", "bootstrap_relay_stopped",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}()
	}
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"in_process_relay", a.inProcess,
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := subscribeAudit(ctx, w.bus, w.logger); err != nil {
		return err
	}
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	if err := w.module.Relay.Run(ctx, w.pollInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *WorkerApp) Close() error {
	if w.bus != nil {
		_ = w.bus.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// subscribeAudit logs every relayed drop event.
func subscribeAudit(ctx context.Context, bus *messaging.Kafka, logger *slog.Logger) error {
	for _, eventType := range auditedEventTypes {
		err := bus.Subscribe(ctx, eventType, auditConsumerGroup, func(_ context.Context, event ports.EventEnvelope) error {
			logger.Info("drop event observed",
				"event", "drop_event_observed",
				"module", "internal/app/bootstrap",
				"layer", "worker",
				"event_id", event.EventID,
				"event_type", event.EventType,
				"partition_key", event.PartitionKey,
				"trace_id", event.TraceID,
			)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
