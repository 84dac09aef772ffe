package entities

type Tier string

const (
	TierMember      Tier = "member"
	TierWhitelisted Tier = "whitelisted"
	TierRegular     Tier = "regular"
)

// PricingConfig holds per-tier unit costs and the whitelist quota.
// WhitelistQuota caps how many whitelist-priced units one address may buy.
type PricingConfig struct {
	MemberCost     Amount
	WhitelistCost  Amount
	RegularCost    Amount
	WhitelistQuota int64
}

func (p PricingConfig) UnitCost(tier Tier) Amount {
	switch tier {
	case TierMember:
		return p.MemberCost
	case TierWhitelisted:
		return p.WhitelistCost
	default:
		return p.RegularCost
	}
}
