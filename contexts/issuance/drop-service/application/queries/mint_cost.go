package queries

import (
	"context"
	"log/slog"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/domain/services"
	"mintworks/contexts/issuance/drop-service/ports"

	"go.opentelemetry.io/otel/attribute"
)

type MintCostQuery struct {
	Buyer string
}

type MintCostResult struct {
	Buyer              entities.Address `json:"buyer"`
	Tier               entities.Tier    `json:"tier"`
	UnitCost           entities.Amount  `json:"unit_cost"`
	Member             bool             `json:"member"`
	Whitelisted        bool             `json:"whitelisted"`
	WhitelistRemaining int64            `json:"whitelist_remaining"`
}

// MintCostUseCase resolves the tier and unit cost a buyer would pay right now.
type MintCostUseCase struct {
	Collections ports.CollectionReader
	Membership  ports.MembershipRegistry
	Logger      *slog.Logger
}

func (u MintCostUseCase) Execute(ctx context.Context, query MintCostQuery) (_ MintCostResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.mint_cost", attribute.String("buyer", query.Buyer))
	defer func() { application.EndSpan(span, err) }()

	buyer, err := entities.ParseAddress(query.Buyer)
	if err != nil {
		return MintCostResult{}, err
	}
	collection, err := u.Collections.GetCollection(ctx)
	if err != nil {
		return MintCostResult{}, err
	}
	account, err := u.Collections.GetBuyerAccount(ctx, buyer)
	if err != nil {
		return MintCostResult{}, err
	}
	member := false
	if u.Membership != nil {
		member, err = u.Membership.IsMember(ctx, buyer)
		if err != nil {
			application.ResolveLogger(u.Logger).Error("membership lookup failed",
				"event", "drop_mint_cost_membership_lookup_failed",
				"module", application.ModuleName,
				"layer", "application",
				"buyer", buyer.String(),
				"error", err.Error(),
			)
			return MintCostResult{}, err
		}
	}

	quote := services.ResolvePrice(services.PricingRules(), services.BuyerStanding{
		Member:  member,
		Account: account,
	}, collection.Pricing)
	return MintCostResult{
		Buyer:              buyer,
		Tier:               quote.Tier,
		UnitCost:           quote.UnitCost,
		Member:             member,
		Whitelisted:        account.Whitelisted,
		WhitelistRemaining: account.WhitelistRemaining(collection.Pricing.WhitelistQuota),
	}, nil
}

type IsMemberQuery struct {
	Address string
}

type IsMemberUseCase struct {
	Membership ports.MembershipRegistry
}

func (u IsMemberUseCase) Execute(ctx context.Context, query IsMemberQuery) (bool, error) {
	address, err := entities.ParseAddress(query.Address)
	if err != nil {
		return false, err
	}
	if u.Membership == nil {
		return false, nil
	}
	return u.Membership.IsMember(ctx, address)
}
