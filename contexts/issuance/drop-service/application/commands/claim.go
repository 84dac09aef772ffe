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

type ClaimCommand struct {
	Caller string
}

type ClaimResult struct {
	Claimant entities.Address   `json:"claimant"`
	Units    int64              `json:"units"`
	TokenIDs []entities.TokenID `json:"token_ids"`
}

// ClaimUseCase grants predecessor holders one title per ClaimRatio items held,
// once per address.
type ClaimUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Predecessor ports.PredecessorHoldings
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ClaimUseCase) Execute(ctx context.Context, cmd ClaimCommand) (_ ClaimResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.claim", attribute.String("caller", cmd.Caller))
	defer func() { application.EndSpan(span, err) }()

	logger := application.ResolveLogger(u.Logger)
	claimant, err := entities.ParseAddress(cmd.Caller)
	if err != nil {
		return ClaimResult{}, err
	}
	now := resolveNow(u.Clock)

	var result ClaimResult
	err = u.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		if collection.ClaimPaused {
			return domainerrors.ErrClaimPaused
		}
		account, err := tx.BuyerAccount(ctx, claimant)
		if err != nil {
			return err
		}
		if account.HasClaimed {
			return domainerrors.ErrNothingToClaim
		}

		holdings, err := u.Predecessor.BalanceOf(ctx, claimant)
		if err != nil {
			return err
		}
		units, err := services.EvaluateClaim(collection, account, holdings)
		if err != nil {
			return err
		}

		account.MarkClaimed(units, now)
		tokenIDs, err := mintTitles(ctx, tx.Titles(), claimant, units)
		if err != nil {
			return err
		}
		services.RecordIssuance(&collection, &account, units, 0)
		touch(&collection, now)
		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}
		if err := tx.SaveBuyerAccount(ctx, account); err != nil {
			return err
		}

		envelope, err := buildEnvelope(ctx, u.IDGenerator, contractsv1.EventTypeDropClaimed, collection.CollectionID, now, ports.ClaimedEvent{
			CollectionID: collection.CollectionID,
			Claimant:     claimant.String(),
			Units:        units,
			TokenIDs:     tokenIDValues(tokenIDs),
			ClaimedAt:    now,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
		result = ClaimResult{Claimant: claimant, Units: units, TokenIDs: tokenIDs}
		return nil
	})
	if err != nil {
		logRejection(logger, "drop_claim_rejected", err, "claimant", claimant.String())
		return ClaimResult{}, err
	}

	logger.Info("claim completed",
		"event", "drop_claim_completed",
		"module", application.ModuleName,
		"layer", "application",
		"claimant", claimant.String(),
		"units", result.Units,
	)
	return result, nil
}
