package entities

import "time"

// BuyerAccount is the per-address issuance state: whitelist membership,
// whitelist-priced purchases, and the write-once claim flag.
type BuyerAccount struct {
	Address            Address
	Whitelisted        bool
	WhitelistPurchased int64
	HasClaimed         bool
	ClaimedUnits       int64
	ClaimedAt          time.Time
	UpdatedAt          time.Time
}

func NewBuyerAccount(address Address) BuyerAccount {
	return BuyerAccount{Address: address}
}

func (b BuyerAccount) WhitelistRemaining(quota int64) int64 {
	remaining := quota - b.WhitelistPurchased
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarkClaimed sets the claim flag. It never clears it.
func (b *BuyerAccount) MarkClaimed(units int64, at time.Time) {
	b.HasClaimed = true
	b.ClaimedUnits = units
	b.ClaimedAt = at.UTC()
	b.UpdatedAt = at.UTC()
}
