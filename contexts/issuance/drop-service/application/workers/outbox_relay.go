package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/ports"
)

// OutboxRelay publishes pending outbox rows in creation order, one topic per
// event type. A failed publish stops the batch so ordering is preserved.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("drop outbox list failed",
			"event", "drop_outbox_list_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	for _, row := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("drop outbox decode failed",
				"event", "drop_outbox_decode_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Publisher.Publish(ctx, row.EventType, envelope); err != nil {
			logger.Error("drop outbox publish failed",
				"event", "drop_outbox_publish_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", row.EventType,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, row.OutboxID, now); err != nil {
			return published, err
		}
		published++
	}
	if published > 0 {
		logger.Debug("drop outbox relayed",
			"event", "drop_outbox_relayed",
			"module", application.ModuleName,
			"layer", "worker",
			"published", published,
		)
	}
	return published, nil
}

// Run polls until ctx is cancelled.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			application.ResolveLogger(r.Logger).Warn("drop outbox relay iteration failed",
				"event", "drop_outbox_relay_iteration_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
