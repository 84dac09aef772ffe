package services

import "mintworks/contexts/issuance/drop-service/domain/entities"

// BuyerStanding is everything the pricing rules need to classify a buyer.
type BuyerStanding struct {
	Member  bool
	Account entities.BuyerAccount
}

// PricingRule maps a predicate over a buyer's standing to a tier.
type PricingRule struct {
	Tier    entities.Tier
	Matches func(standing BuyerStanding, pricing entities.PricingConfig) bool
}

// Quote is the resolved tier and per-unit cost for one buyer. A whitelisted
// quote only covers WhitelistUnits units; the rest are charged RegularCost.
type Quote struct {
	Tier           entities.Tier
	UnitCost       entities.Amount
	WhitelistUnits int64
	RegularCost    entities.Amount
}

// Price returns the total cost of quantity units and how many of them are
// charged at the whitelist cost.
func (q Quote) Price(quantity int64) (entities.Amount, int64) {
	if q.Tier != entities.TierWhitelisted {
		return q.UnitCost.MulInt(quantity), 0
	}
	whitelisted := min(quantity, q.WhitelistUnits)
	total := q.UnitCost.MulInt(whitelisted).Add(q.RegularCost.MulInt(quantity - whitelisted))
	return total, whitelisted
}

// PricingRules returns the tier rules in evaluation order. Membership wins
// over the whitelist; Regular always matches.
func PricingRules() []PricingRule {
	return []PricingRule{
		{
			Tier: entities.TierMember,
			Matches: func(standing BuyerStanding, _ entities.PricingConfig) bool {
				return standing.Member
			},
		},
		{
			Tier: entities.TierWhitelisted,
			Matches: func(standing BuyerStanding, pricing entities.PricingConfig) bool {
				return standing.Account.Whitelisted &&
					standing.Account.WhitelistPurchased < pricing.WhitelistQuota
			},
		},
		{
			Tier: entities.TierRegular,
			Matches: func(BuyerStanding, entities.PricingConfig) bool {
				return true
			},
		},
	}
}

// ResolvePrice evaluates rules top-down and returns the first match, falling
// back to the Regular tier when no rule matches.
func ResolvePrice(rules []PricingRule, standing BuyerStanding, pricing entities.PricingConfig) Quote {
	for _, rule := range rules {
		if rule.Matches != nil && rule.Matches(standing, pricing) {
			quote := Quote{Tier: rule.Tier, UnitCost: pricing.UnitCost(rule.Tier), RegularCost: pricing.RegularCost}
			if rule.Tier == entities.TierWhitelisted {
				quote.WhitelistUnits = standing.Account.WhitelistRemaining(pricing.WhitelistQuota)
			}
			return quote
		}
	}
	return Quote{Tier: entities.TierRegular, UnitCost: pricing.RegularCost, RegularCost: pricing.RegularCost}
}
