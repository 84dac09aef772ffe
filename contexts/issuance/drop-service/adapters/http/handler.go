package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mintworks/contexts/issuance/drop-service/application/commands"
	"mintworks/contexts/issuance/drop-service/application/queries"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	httptransport "mintworks/contexts/issuance/drop-service/transport/http"
)

type Handler struct {
	Mint             commands.MintUseCase
	ReserveMint      commands.ReserveMintUseCase
	Claim            commands.ClaimUseCase
	Withdraw         commands.WithdrawUseCase
	WithdrawPayments commands.WithdrawPaymentsUseCase
	Admin            commands.AdminUseCase
	MintCost         queries.MintCostUseCase
	IsMember         queries.IsMemberUseCase
	Wallet           queries.WalletOfOwnerUseCase
	Collection       queries.GetCollectionUseCase
	Pending          queries.PendingBalanceUseCase
	BuyerAccount     queries.GetBuyerAccountUseCase
	Logger           *slog.Logger
}

func (h Handler) MintHandler(
	ctx context.Context,
	buyer string,
	idempotencyKey string,
	req httptransport.MintRequest,
) (httptransport.MintResponse, error) {
	payment, err := entities.ParseAmount(req.Payment)
	if err != nil {
		return httptransport.MintResponse{}, err
	}
	result, err := h.Mint.Execute(ctx, commands.MintCommand{
		IdempotencyKey: idempotencyKey,
		Buyer:          buyer,
		Quantity:       req.Quantity,
		Payment:        payment,
	})
	if err != nil {
		return httptransport.MintResponse{}, err
	}
	return httptransport.MintResponse{
		Status:   "success",
		Replayed: result.Replayed,
		Data: httptransport.MintDTO{
			Buyer:          strings.ToLower(strings.TrimSpace(buyer)),
			TokenIDs:       tokenIDs(result.TokenIDs),
			Tier:           string(result.Tier),
			UnitCost:       result.UnitCost.String(),
			WhitelistUnits: result.WhitelistUnits,
			Required:       result.Required.String(),
			Paid:           result.Paid.String(),
		},
	}, nil
}

func (h Handler) ReserveMintHandler(
	ctx context.Context,
	caller string,
	req httptransport.ReserveMintRequest,
) (httptransport.ReserveMintResponse, error) {
	result, err := h.ReserveMint.Execute(ctx, commands.ReserveMintCommand{
		Caller:    caller,
		Recipient: req.Recipient,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return httptransport.ReserveMintResponse{}, err
	}
	return httptransport.ReserveMintResponse{
		Status: "success",
		Data: httptransport.IssuedDTO{
			Recipient: result.Recipient.String(),
			TokenIDs:  tokenIDs(result.TokenIDs),
		},
	}, nil
}

func (h Handler) ClaimHandler(ctx context.Context, caller string) (httptransport.ClaimResponse, error) {
	result, err := h.Claim.Execute(ctx, commands.ClaimCommand{Caller: caller})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{
		Status: "success",
		Units:  result.Units,
		Data: httptransport.IssuedDTO{
			Recipient: result.Claimant.String(),
			TokenIDs:  tokenIDs(result.TokenIDs),
		},
	}, nil
}

func (h Handler) WithdrawHandler(ctx context.Context, caller string) (httptransport.WithdrawResponse, error) {
	result, err := h.Withdraw.Execute(ctx, commands.WithdrawCommand{Caller: caller})
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return toWithdrawResponse(result), nil
}

func (h Handler) WithdrawPaymentsHandler(
	ctx context.Context,
	req httptransport.WithdrawPaymentsRequest,
) (httptransport.WithdrawResponse, error) {
	result, err := h.WithdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: req.Beneficiary})
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return toWithdrawResponse(result), nil
}

func (h Handler) UpdateSettingsHandler(
	ctx context.Context,
	caller string,
	req httptransport.UpdateSettingsRequest,
) (httptransport.CollectionResponse, error) {
	patch := commands.SettingsPatch{
		WhitelistQuota:    req.WhitelistQuota,
		PerTransactionCap: req.PerTransactionCap,
		MintPaused:        req.MintPaused,
		ClaimPaused:       req.ClaimPaused,
		BaseURI:           req.BaseURI,
		CapBeneficiary:    req.CapBeneficiary,
		FixedBeneficiary:  req.FixedBeneficiary,
		ResidualRecipient: req.ResidualRecipient,
	}
	var err error
	if patch.MemberCost, err = parseOptionalAmount(req.MemberCost); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	if patch.WhitelistCost, err = parseOptionalAmount(req.WhitelistCost); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	if patch.RegularCost, err = parseOptionalAmount(req.RegularCost); err != nil {
		return httptransport.CollectionResponse{}, err
	}

	if _, err := h.Admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: caller, Patch: patch}); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return h.GetCollectionHandler(ctx)
}

func (h Handler) UpdateWhitelistHandler(
	ctx context.Context,
	caller string,
	req httptransport.UpdateWhitelistRequest,
) (httptransport.CollectionResponse, error) {
	if _, err := h.Admin.UpdateWhitelist(ctx, commands.UpdateWhitelistCommand{
		Caller:      caller,
		Addresses:   req.Addresses,
		Whitelisted: req.Whitelisted,
	}); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return h.GetCollectionHandler(ctx)
}

func (h Handler) TransferOwnershipHandler(
	ctx context.Context,
	caller string,
	req httptransport.TransferOwnershipRequest,
) (httptransport.CollectionResponse, error) {
	if _, err := h.Admin.TransferOwnership(ctx, commands.TransferOwnershipCommand{
		Caller:   caller,
		NewOwner: req.NewOwner,
	}); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return h.GetCollectionHandler(ctx)
}

func (h Handler) RaiseMaxSupplyHandler(
	ctx context.Context,
	caller string,
	req httptransport.RaiseMaxSupplyRequest,
) (httptransport.CollectionResponse, error) {
	if _, err := h.Admin.RaiseMaxSupply(ctx, commands.RaiseMaxSupplyCommand{
		Caller:    caller,
		MaxSupply: req.MaxSupply,
	}); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return h.GetCollectionHandler(ctx)
}

func (h Handler) GetCollectionHandler(ctx context.Context) (httptransport.CollectionResponse, error) {
	view, err := h.Collection.Execute(ctx)
	if err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return httptransport.CollectionResponse{
		Status: "success",
		Data:   toCollectionDTO(view),
	}, nil
}

func (h Handler) MintCostHandler(ctx context.Context, buyer string) (httptransport.MintCostResponse, error) {
	result, err := h.MintCost.Execute(ctx, queries.MintCostQuery{Buyer: buyer})
	if err != nil {
		return httptransport.MintCostResponse{}, err
	}
	return httptransport.MintCostResponse{
		Status: "success",
		Data: httptransport.MintCostDTO{
			Buyer:              result.Buyer.String(),
			Tier:               string(result.Tier),
			UnitCost:           result.UnitCost.String(),
			Member:             result.Member,
			Whitelisted:        result.Whitelisted,
			WhitelistRemaining: result.WhitelistRemaining,
		},
	}, nil
}

func (h Handler) IsMemberHandler(ctx context.Context, address string) (httptransport.MembershipResponse, error) {
	member, err := h.IsMember.Execute(ctx, queries.IsMemberQuery{Address: address})
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return httptransport.MembershipResponse{
		Status:  "success",
		Address: strings.ToLower(strings.TrimSpace(address)),
		Member:  member,
	}, nil
}

func (h Handler) WalletOfOwnerHandler(ctx context.Context, owner string) (httptransport.WalletResponse, error) {
	result, err := h.Wallet.Execute(ctx, queries.WalletQuery{Owner: owner})
	if err != nil {
		return httptransport.WalletResponse{}, err
	}
	return httptransport.WalletResponse{
		Status: "success",
		Data: httptransport.WalletDTO{
			Owner:    result.Owner.String(),
			Balance:  result.Balance,
			TokenIDs: tokenIDs(result.TokenIDs),
		},
	}, nil
}

func (h Handler) PendingBalanceHandler(ctx context.Context, beneficiary string) (httptransport.PendingResponse, error) {
	result, err := h.Pending.Execute(ctx, queries.PendingBalanceQuery{Beneficiary: beneficiary})
	if err != nil {
		return httptransport.PendingResponse{}, err
	}
	return httptransport.PendingResponse{
		Status: "success",
		Data: httptransport.PendingDTO{
			Beneficiary: result.Beneficiary.String(),
			Amount:      result.Amount.String(),
		},
	}, nil
}

func (h Handler) BuyerAccountHandler(ctx context.Context, address string) (httptransport.BuyerAccountResponse, error) {
	view, err := h.BuyerAccount.Execute(ctx, queries.BuyerAccountQuery{Address: address})
	if err != nil {
		return httptransport.BuyerAccountResponse{}, err
	}
	dto := httptransport.BuyerAccountDTO{
		Address:            view.Address.String(),
		Whitelisted:        view.Whitelisted,
		WhitelistPurchased: view.WhitelistPurchased,
		HasClaimed:         view.HasClaimed,
		ClaimedUnits:       view.ClaimedUnits,
	}
	if view.ClaimedAt != nil {
		dto.ClaimedAt = view.ClaimedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.BuyerAccountResponse{
		Status: "success",
		Data:   dto,
	}, nil
}

func toWithdrawResponse(result commands.WithdrawResult) httptransport.WithdrawResponse {
	return httptransport.WithdrawResponse{
		Status: "success",
		Data: httptransport.WithdrawalDTO{
			Beneficiary: result.Beneficiary.String(),
			Amount:      result.Amount.String(),
		},
	}
}

func toCollectionDTO(view queries.CollectionView) httptransport.CollectionDTO {
	pending := make([]httptransport.PendingDTO, 0, len(view.Pending))
	for _, item := range view.Pending {
		pending = append(pending, httptransport.PendingDTO{
			Beneficiary: item.Beneficiary.String(),
			Amount:      item.Amount.String(),
		})
	}
	return httptransport.CollectionDTO{
		CollectionID:      view.CollectionID,
		Name:              view.Name,
		Owner:             view.Owner.String(),
		MaxSupply:         view.MaxSupply,
		TotalIssued:       view.TotalIssued,
		RemainingSupply:   view.RemainingSupply,
		TitlesOutstanding: view.TitlesOutstanding,
		PerTransactionCap: view.PerTransactionCap,
		ClaimRatio:        view.ClaimRatio,
		MintPaused:        view.MintPaused,
		ClaimPaused:       view.ClaimPaused,
		BaseURI:           view.BaseURI,
		MemberCost:        view.MemberCost.String(),
		WhitelistCost:     view.WhitelistCost.String(),
		RegularCost:       view.RegularCost.String(),
		WhitelistQuota:    view.WhitelistQuota,
		CapBeneficiary:    view.CapBeneficiary.String(),
		FixedBeneficiary:  view.FixedBeneficiary.String(),
		ResidualRecipient: view.ResidualRecipient.String(),
		CapLifetime:       view.CapLifetime.String(),
		CapPaidToDate:     view.CapPaidToDate.String(),
		FixedSharePercent: view.FixedSharePercent,
		CapSharePercent:   view.CapSharePercent,
		Residual:          view.Residual.String(),
		Pending:           pending,
		Version:           view.Version,
		UpdatedAt:         view.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseOptionalAmount(raw *string) (*entities.Amount, error) {
	if raw == nil {
		return nil, nil
	}
	amount, err := entities.ParseAmount(*raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func tokenIDs(ids []entities.TokenID) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	return out
}
