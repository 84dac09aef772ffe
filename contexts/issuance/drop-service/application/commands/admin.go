package commands

import (
	"context"
	"log/slog"
	"strings"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"

	"go.opentelemetry.io/otel/attribute"
)

// SettingsPatch overwrites every non-nil field. Repeating a patch is a no-op
// apart from the version bump.
type SettingsPatch struct {
	MemberCost        *entities.Amount
	WhitelistCost     *entities.Amount
	RegularCost       *entities.Amount
	WhitelistQuota    *int64
	PerTransactionCap *int64
	MintPaused        *bool
	ClaimPaused       *bool
	BaseURI           *string
	CapBeneficiary    *string
	FixedBeneficiary  *string
	ResidualRecipient *string
}

type UpdateSettingsCommand struct {
	Caller string
	Patch  SettingsPatch
}

type UpdateWhitelistCommand struct {
	Caller      string
	Addresses   []string
	Whitelisted bool
}

type TransferOwnershipCommand struct {
	Caller   string
	NewOwner string
}

type RaiseMaxSupplyCommand struct {
	Caller    string
	MaxSupply int64
}

// AdminUseCase holds the owner-only configuration operations.
type AdminUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u AdminUseCase) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (entities.Collection, error) {
	patch := cmd.Patch
	return u.mutate(ctx, "drop.update_settings", cmd.Caller, func(_ context.Context, _ ports.Tx, collection *entities.Collection) (string, error) {
		changed := make([]string, 0, 11)
		next := *collection

		if patch.MemberCost != nil {
			next.Pricing.MemberCost = *patch.MemberCost
			changed = append(changed, "member_cost")
		}
		if patch.WhitelistCost != nil {
			next.Pricing.WhitelistCost = *patch.WhitelistCost
			changed = append(changed, "whitelist_cost")
		}
		if patch.RegularCost != nil {
			next.Pricing.RegularCost = *patch.RegularCost
			changed = append(changed, "regular_cost")
		}
		if patch.WhitelistQuota != nil {
			if *patch.WhitelistQuota < 0 {
				return "", domainerrors.ErrInvalidInput
			}
			next.Pricing.WhitelistQuota = *patch.WhitelistQuota
			changed = append(changed, "whitelist_quota")
		}
		if patch.PerTransactionCap != nil {
			if *patch.PerTransactionCap < 0 {
				return "", domainerrors.ErrInvalidInput
			}
			next.PerTransactionCap = *patch.PerTransactionCap
			changed = append(changed, "per_transaction_cap")
		}
		if patch.MintPaused != nil {
			next.MintPaused = *patch.MintPaused
			changed = append(changed, "mint_paused")
		}
		if patch.ClaimPaused != nil {
			next.ClaimPaused = *patch.ClaimPaused
			changed = append(changed, "claim_paused")
		}
		if patch.BaseURI != nil {
			next.BaseURI = strings.TrimSpace(*patch.BaseURI)
			changed = append(changed, "base_uri")
		}
		if patch.CapBeneficiary != nil {
			address, err := entities.ParseAddress(*patch.CapBeneficiary)
			if err != nil {
				return "", err
			}
			next.Beneficiaries.Cap = address
			changed = append(changed, "cap_beneficiary")
		}
		if patch.FixedBeneficiary != nil {
			address, err := entities.ParseAddress(*patch.FixedBeneficiary)
			if err != nil {
				return "", err
			}
			next.Beneficiaries.FixedShare = address
			changed = append(changed, "fixed_beneficiary")
		}
		if patch.ResidualRecipient != nil {
			address, err := entities.ParseAddress(*patch.ResidualRecipient)
			if err != nil {
				return "", err
			}
			next.Beneficiaries.Residual = address
			changed = append(changed, "residual_recipient")
		}
		if len(changed) == 0 {
			return "", domainerrors.ErrInvalidInput
		}
		*collection = next
		return strings.Join(changed, ","), nil
	})
}

// UpdateWhitelist adds or removes a batch of addresses. Whitelist purchases
// already made are kept when an address is removed.
func (u AdminUseCase) UpdateWhitelist(ctx context.Context, cmd UpdateWhitelistCommand) (entities.Collection, error) {
	return u.mutate(ctx, "drop.update_whitelist", cmd.Caller, func(ctx context.Context, tx ports.Tx, _ *entities.Collection) (string, error) {
		if len(cmd.Addresses) == 0 {
			return "", domainerrors.ErrInvalidInput
		}
		addresses := make([]entities.Address, 0, len(cmd.Addresses))
		for _, raw := range cmd.Addresses {
			address, err := entities.ParseAddress(raw)
			if err != nil {
				return "", err
			}
			addresses = append(addresses, address)
		}
		now := resolveNow(u.Clock)
		for _, address := range addresses {
			account, err := tx.BuyerAccount(ctx, address)
			if err != nil {
				return "", err
			}
			account.Whitelisted = cmd.Whitelisted
			account.UpdatedAt = now
			if err := tx.SaveBuyerAccount(ctx, account); err != nil {
				return "", err
			}
		}
		if cmd.Whitelisted {
			return "whitelist_add", nil
		}
		return "whitelist_remove", nil
	})
}

func (u AdminUseCase) TransferOwnership(ctx context.Context, cmd TransferOwnershipCommand) (entities.Collection, error) {
	return u.mutate(ctx, "drop.transfer_ownership", cmd.Caller, func(_ context.Context, _ ports.Tx, collection *entities.Collection) (string, error) {
		owner, err := entities.ParseAddress(cmd.NewOwner)
		if err != nil {
			return "", err
		}
		collection.Owner = owner
		return "owner", nil
	})
}

// RaiseMaxSupply only ever grows the supply cap.
func (u AdminUseCase) RaiseMaxSupply(ctx context.Context, cmd RaiseMaxSupplyCommand) (entities.Collection, error) {
	return u.mutate(ctx, "drop.raise_max_supply", cmd.Caller, func(_ context.Context, _ ports.Tx, collection *entities.Collection) (string, error) {
		if cmd.MaxSupply < collection.MaxSupply {
			return "", domainerrors.ErrInvalidInput
		}
		collection.MaxSupply = cmd.MaxSupply
		return "max_supply", nil
	})
}

type ownerMutation func(ctx context.Context, tx ports.Tx, collection *entities.Collection) (string, error)

func (u AdminUseCase) mutate(ctx context.Context, operation string, rawCaller string, apply ownerMutation) (_ entities.Collection, err error) {
	ctx, span := application.StartSpan(ctx, operation, attribute.String("caller", rawCaller))
	defer func() { application.EndSpan(span, err) }()

	logger := application.ResolveLogger(u.Logger)
	caller := parseCaller(rawCaller)
	now := resolveNow(u.Clock)

	var (
		updated entities.Collection
		setting string
	)
	err = u.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		if !collection.IsOwner(caller) {
			return domainerrors.ErrUnauthorized
		}
		setting, err = apply(ctx, tx, &collection)
		if err != nil {
			return err
		}
		touch(&collection, now)
		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}
		envelope, err := buildEnvelope(ctx, u.IDGenerator, contractsv1.EventTypeDropSettingsUpdated, collection.CollectionID, now, ports.SettingsUpdatedEvent{
			CollectionID: collection.CollectionID,
			Setting:      setting,
			UpdatedBy:    caller.String(),
			Version:      collection.Version,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
		updated = collection
		return nil
	})
	if err != nil {
		logRejection(logger, "drop_admin_rejected", err,
			"operation", operation,
			"caller", rawCaller,
		)
		return entities.Collection{}, err
	}

	logger.Info("collection settings updated",
		"event", "drop_settings_updated",
		"module", application.ModuleName,
		"layer", "application",
		"operation", operation,
		"setting", setting,
		"version", updated.Version,
	)
	return updated, nil
}
