package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/google/uuid"
)

const (
	sourceService   = "drop-service"
	eventSchemaV1   = 1
	partitionByColl = "collection_id"
)

func hashRequest(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}

func newEventID(ctx context.Context, ids ports.IDGenerator) (string, error) {
	if ids == nil {
		return uuid.NewString(), nil
	}
	return ids.NewID(ctx)
}

// buildEnvelope wraps data in the canonical envelope keyed by collection.
func buildEnvelope(
	ctx context.Context,
	ids ports.IDGenerator,
	eventType string,
	collectionID string,
	occurredAt time.Time,
	data any,
) (ports.EventEnvelope, error) {
	eventID, err := newEventID(ctx, ids)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          application.TraceID(ctx),
		SchemaVersion:    eventSchemaV1,
		PartitionKeyPath: partitionByColl,
		PartitionKey:     collectionID,
		Data:             payload,
	}, nil
}

var businessRejections = []error{
	domainerrors.ErrUnauthorized,
	domainerrors.ErrMintPaused,
	domainerrors.ErrClaimPaused,
	domainerrors.ErrInvalidQuantity,
	domainerrors.ErrExceedsPerTxCap,
	domainerrors.ErrExceedsSupply,
	domainerrors.ErrInsufficientPayment,
	domainerrors.ErrNothingToClaim,
	domainerrors.ErrNothingOwed,
	domainerrors.ErrInvalidInput,
	domainerrors.ErrInvalidAddress,
	domainerrors.ErrInvalidAmount,
	domainerrors.ErrIdempotencyKeyConflict,
}

// logRejection logs precondition failures at warn and everything else at error.
func logRejection(logger *slog.Logger, event string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	for _, rejection := range businessRejections {
		if errors.Is(err, rejection) {
			logger.Warn("drop request rejected", fields...)
			return
		}
	}
	logger.Error("drop request failed", fields...)
}

func touch(collection *entities.Collection, now time.Time) {
	collection.Version++
	collection.UpdatedAt = now
}

// parseCaller maps an unparseable caller to the zero address, which no
// ownership check accepts.
func parseCaller(raw string) entities.Address {
	caller, err := entities.ParseAddress(raw)
	if err != nil {
		return ""
	}
	return caller
}
