package commands

import (
	"context"
	"log/slog"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/domain/services"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"

	"go.opentelemetry.io/otel/attribute"
)

type ReserveMintCommand struct {
	Caller    string
	Recipient string
	Quantity  int64
}

type ReserveMintResult struct {
	Recipient entities.Address   `json:"recipient"`
	TokenIDs  []entities.TokenID `json:"token_ids"`
}

// ReserveMintUseCase issues titles to any recipient for free. Only the owner
// may call it and only the supply cap applies.
type ReserveMintUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ReserveMintUseCase) Execute(ctx context.Context, cmd ReserveMintCommand) (_ ReserveMintResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.reserve_mint",
		attribute.String("caller", cmd.Caller),
		attribute.Int64("quantity", cmd.Quantity),
	)
	defer func() { application.EndSpan(span, err) }()

	logger := application.ResolveLogger(u.Logger)
	caller := parseCaller(cmd.Caller)
	now := resolveNow(u.Clock)

	var result ReserveMintResult
	err = u.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		if !collection.IsOwner(caller) {
			return domainerrors.ErrUnauthorized
		}
		recipient, err := entities.ParseAddress(cmd.Recipient)
		if err != nil {
			return err
		}
		if err := services.ValidateReserveMint(collection, cmd.Quantity); err != nil {
			return err
		}

		tokenIDs, err := mintTitles(ctx, tx.Titles(), recipient, cmd.Quantity)
		if err != nil {
			return err
		}
		services.RecordIssuance(&collection, nil, cmd.Quantity, 0)
		touch(&collection, now)
		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}

		envelope, err := buildEnvelope(ctx, u.IDGenerator, contractsv1.EventTypeDropReserveMinted, collection.CollectionID, now, ports.MintedEvent{
			CollectionID: collection.CollectionID,
			Recipient:    recipient.String(),
			Quantity:     cmd.Quantity,
			TokenIDs:     tokenIDValues(tokenIDs),
			TotalIssued:  collection.TotalIssued,
			MintedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
		result = ReserveMintResult{Recipient: recipient, TokenIDs: tokenIDs}
		return nil
	})
	if err != nil {
		logRejection(logger, "drop_reserve_mint_rejected", err,
			"caller", cmd.Caller,
			"recipient", cmd.Recipient,
			"quantity", cmd.Quantity,
		)
		return ReserveMintResult{}, err
	}

	logger.Info("reserve mint completed",
		"event", "drop_reserve_mint_completed",
		"module", application.ModuleName,
		"layer", "application",
		"recipient", result.Recipient.String(),
		"quantity", cmd.Quantity,
	)
	return result, nil
}
