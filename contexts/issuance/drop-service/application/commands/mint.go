package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/domain/services"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"

	"go.opentelemetry.io/otel/attribute"
)

// MintCommand is a paid purchase of Quantity titles. IdempotencyKey is
// optional; when set, a retried request replays the first result.
type MintCommand struct {
	IdempotencyKey string
	Buyer          string
	Quantity       int64
	Payment        entities.Amount
}

type MintResult struct {
	TokenIDs       []entities.TokenID `json:"token_ids"`
	Tier           entities.Tier      `json:"tier"`
	UnitCost       entities.Amount    `json:"unit_cost"`
	WhitelistUnits int64              `json:"whitelist_units"`
	Required       entities.Amount    `json:"required"`
	Paid           entities.Amount    `json:"paid"`
	Replayed       bool               `json:"replayed"`
}

type MintUseCase struct {
	UnitOfWork     ports.UnitOfWork
	Membership     ports.MembershipRegistry
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (u MintUseCase) Execute(ctx context.Context, cmd MintCommand) (_ MintResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.mint",
		attribute.String("buyer", cmd.Buyer),
		attribute.Int64("quantity", cmd.Quantity),
	)
	defer func() { application.EndSpan(span, err) }()

	logger := application.ResolveLogger(u.Logger)
	buyer, err := entities.ParseAddress(cmd.Buyer)
	if err != nil {
		return MintResult{}, err
	}

	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := ""
	if idempotencyKey != "" {
		requestHash, err = hashRequest(struct {
			Buyer    string `json:"buyer"`
			Quantity int64  `json:"quantity"`
			Payment  string `json:"payment"`
		}{
			Buyer:    buyer.String(),
			Quantity: cmd.Quantity,
			Payment:  cmd.Payment.String(),
		})
		if err != nil {
			return MintResult{}, err
		}
		idempotencyKey = "drop_mint:" + idempotencyKey
	}

	member := false
	if u.Membership != nil {
		member, err = u.Membership.IsMember(ctx, buyer)
		if err != nil {
			logger.Error("membership lookup failed",
				"event", "drop_mint_membership_lookup_failed",
				"module", application.ModuleName,
				"layer", "application",
				"buyer", buyer.String(),
				"error", err.Error(),
			)
			return MintResult{}, err
		}
	}

	now := resolveNow(u.Clock)
	var result MintResult
	err = u.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		if idempotencyKey != "" {
			record, found, err := tx.IdempotencyRecord(ctx, idempotencyKey, now)
			if err != nil {
				return err
			}
			if found {
				if record.RequestHash != requestHash {
					return domainerrors.ErrIdempotencyKeyConflict
				}
				if err := json.Unmarshal(record.ResponsePayload, &result); err != nil {
					return err
				}
				result.Replayed = true
				return nil
			}
		}

		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		account, err := tx.BuyerAccount(ctx, buyer)
		if err != nil {
			return err
		}

		quote := services.ResolvePrice(services.PricingRules(), services.BuyerStanding{
			Member:  member,
			Account: account,
		}, collection.Pricing)
		required, whitelistUnits, err := services.ValidateMint(collection, cmd.Quantity, cmd.Payment, quote)
		if err != nil {
			return err
		}

		tokenIDs, err := mintTitles(ctx, tx.Titles(), buyer, cmd.Quantity)
		if err != nil {
			return err
		}
		services.RecordIssuance(&collection, &account, cmd.Quantity, whitelistUnits)
		split := services.SplitPayment(collection.Ledger, cmd.Payment)
		services.ApplySplit(&collection, split)
		touch(&collection, now)
		account.UpdatedAt = now

		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}
		if err := tx.SaveBuyerAccount(ctx, account); err != nil {
			return err
		}

		minted, err := buildEnvelope(ctx, u.IDGenerator, contractsv1.EventTypeDropMinted, collection.CollectionID, now, ports.MintedEvent{
			CollectionID: collection.CollectionID,
			Recipient:    buyer.String(),
			Tier:         string(quote.Tier),
			Quantity:     cmd.Quantity,
			TokenIDs:     tokenIDValues(tokenIDs),
			Paid:         cmd.Payment.String(),
			TotalIssued:  collection.TotalIssued,
			MintedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, minted); err != nil {
			return err
		}
		if !split.Total.IsZero() {
			settled, err := buildEnvelope(ctx, u.IDGenerator, contractsv1.EventTypeDropSettled, collection.CollectionID, now, ports.SettledEvent{
				CollectionID:    collection.CollectionID,
				Total:           split.Total.String(),
				FixedShare:      split.FixedShare.String(),
				CapContribution: split.CapContribution.String(),
				Residual:        split.Residual.String(),
				CapPaidToDate:   collection.Ledger.CapPaidToDate.String(),
				SettledAt:       now,
			})
			if err != nil {
				return err
			}
			if err := tx.AppendOutbox(ctx, settled); err != nil {
				return err
			}
		}

		result = MintResult{
			TokenIDs:       tokenIDs,
			Tier:           quote.Tier,
			UnitCost:       quote.UnitCost,
			WhitelistUnits: whitelistUnits,
			Required:       required,
			Paid:           cmd.Payment,
		}
		if idempotencyKey == "" {
			return nil
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return tx.PutIdempotencyRecord(ctx, ports.IdempotencyRecord{
			Key:             idempotencyKey,
			RequestHash:     requestHash,
			ResponsePayload: payload,
			ExpiresAt:       now.Add(u.idempotencyTTL()),
		})
	})
	if err != nil {
		logRejection(logger, "drop_mint_rejected", err,
			"buyer", buyer.String(),
			"quantity", cmd.Quantity,
			"payment", cmd.Payment.String(),
		)
		return MintResult{}, err
	}
	if result.Replayed {
		logger.Info("mint replayed",
			"event", "drop_mint_replayed",
			"module", application.ModuleName,
			"layer", "application",
			"buyer", buyer.String(),
		)
		return result, nil
	}

	logger.Info("mint completed",
		"event", "drop_mint_completed",
		"module", application.ModuleName,
		"layer", "application",
		"buyer", buyer.String(),
		"quantity", cmd.Quantity,
		"tier", string(result.Tier),
		"paid", cmd.Payment.String(),
	)
	return result, nil
}

func (u MintUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return u.IdempotencyTTL
}

func mintTitles(ctx context.Context, titles ports.TitleMinter, to entities.Address, quantity int64) ([]entities.TokenID, error) {
	tokenIDs := make([]entities.TokenID, 0, quantity)
	for i := int64(0); i < quantity; i++ {
		tokenID, err := titles.MintNext(ctx, to)
		if err != nil {
			return nil, err
		}
		tokenIDs = append(tokenIDs, tokenID)
	}
	return tokenIDs, nil
}

func tokenIDValues(ids []entities.TokenID) []uint64 {
	values := make([]uint64, 0, len(ids))
	for _, id := range ids {
		values = append(values, uint64(id))
	}
	return values
}
