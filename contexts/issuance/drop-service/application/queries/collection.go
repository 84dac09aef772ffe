package queries

import (
	"context"
	"sort"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"
)

type PendingBalance struct {
	Beneficiary entities.Address `json:"beneficiary"`
	Amount      entities.Amount  `json:"amount"`
}

// CollectionView is the read model of the collection aggregate.
type CollectionView struct {
	CollectionID      string           `json:"collection_id"`
	Name              string           `json:"name"`
	Owner             entities.Address `json:"owner"`
	MaxSupply         int64            `json:"max_supply"`
	TotalIssued       int64            `json:"total_issued"`
	RemainingSupply   int64            `json:"remaining_supply"`
	TitlesOutstanding int64            `json:"titles_outstanding"`
	PerTransactionCap int64            `json:"per_transaction_cap"`
	ClaimRatio        int64            `json:"claim_ratio"`
	MintPaused        bool             `json:"mint_paused"`
	ClaimPaused       bool             `json:"claim_paused"`
	BaseURI           string           `json:"base_uri"`
	MemberCost        entities.Amount  `json:"member_cost"`
	WhitelistCost     entities.Amount  `json:"whitelist_cost"`
	RegularCost       entities.Amount  `json:"regular_cost"`
	WhitelistQuota    int64            `json:"whitelist_quota"`
	CapBeneficiary    entities.Address `json:"cap_beneficiary"`
	FixedBeneficiary  entities.Address `json:"fixed_beneficiary"`
	ResidualRecipient entities.Address `json:"residual_recipient"`
	CapLifetime       entities.Amount  `json:"cap_lifetime"`
	CapPaidToDate     entities.Amount  `json:"cap_paid_to_date"`
	FixedSharePercent int64            `json:"fixed_share_percent"`
	CapSharePercent   int64            `json:"cap_share_percent"`
	Residual          entities.Amount  `json:"residual"`
	Pending           []PendingBalance `json:"pending"`
	Version           int64            `json:"version"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type GetCollectionUseCase struct {
	Collections ports.CollectionReader
	Titles      ports.TitleReader
}

func (u GetCollectionUseCase) Execute(ctx context.Context) (CollectionView, error) {
	collection, err := u.Collections.GetCollection(ctx)
	if err != nil {
		return CollectionView{}, err
	}
	outstanding := collection.TotalIssued
	if u.Titles != nil {
		outstanding, err = u.Titles.TotalSupply(ctx)
		if err != nil {
			return CollectionView{}, err
		}
	}

	pending := make([]PendingBalance, 0, len(collection.Ledger.Pending))
	for beneficiary, amount := range collection.Ledger.Pending {
		pending = append(pending, PendingBalance{Beneficiary: beneficiary, Amount: amount})
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Beneficiary < pending[j].Beneficiary
	})

	return CollectionView{
		CollectionID:      collection.CollectionID,
		Name:              collection.Name,
		Owner:             collection.Owner,
		MaxSupply:         collection.MaxSupply,
		TotalIssued:       collection.TotalIssued,
		RemainingSupply:   collection.RemainingSupply(),
		TitlesOutstanding: outstanding,
		PerTransactionCap: collection.PerTransactionCap,
		ClaimRatio:        collection.ClaimRatio,
		MintPaused:        collection.MintPaused,
		ClaimPaused:       collection.ClaimPaused,
		BaseURI:           collection.BaseURI,
		MemberCost:        collection.Pricing.MemberCost,
		WhitelistCost:     collection.Pricing.WhitelistCost,
		RegularCost:       collection.Pricing.RegularCost,
		WhitelistQuota:    collection.Pricing.WhitelistQuota,
		CapBeneficiary:    collection.Beneficiaries.Cap,
		FixedBeneficiary:  collection.Beneficiaries.FixedShare,
		ResidualRecipient: collection.Beneficiaries.Residual,
		CapLifetime:       collection.Ledger.CapLifetime,
		CapPaidToDate:     collection.Ledger.CapPaidToDate,
		FixedSharePercent: collection.Ledger.FixedSharePercent,
		CapSharePercent:   collection.Ledger.CapSharePercent,
		Residual:          collection.Ledger.Residual,
		Pending:           pending,
		Version:           collection.Version,
		UpdatedAt:         collection.UpdatedAt,
	}, nil
}

type PendingBalanceQuery struct {
	Beneficiary string
}

type PendingBalanceUseCase struct {
	Collections ports.CollectionReader
}

func (u PendingBalanceUseCase) Execute(ctx context.Context, query PendingBalanceQuery) (PendingBalance, error) {
	beneficiary, err := entities.ParseAddress(query.Beneficiary)
	if err != nil {
		return PendingBalance{}, err
	}
	collection, err := u.Collections.GetCollection(ctx)
	if err != nil {
		return PendingBalance{}, err
	}
	return PendingBalance{
		Beneficiary: beneficiary,
		Amount:      collection.Ledger.PendingFor(beneficiary),
	}, nil
}

type BuyerAccountQuery struct {
	Address string
}

type BuyerAccountView struct {
	Address            entities.Address `json:"address"`
	Whitelisted        bool             `json:"whitelisted"`
	WhitelistPurchased int64            `json:"whitelist_purchased"`
	HasClaimed         bool             `json:"has_claimed"`
	ClaimedUnits       int64            `json:"claimed_units"`
	ClaimedAt          *time.Time       `json:"claimed_at,omitempty"`
}

type GetBuyerAccountUseCase struct {
	Collections ports.CollectionReader
}

func (u GetBuyerAccountUseCase) Execute(ctx context.Context, query BuyerAccountQuery) (BuyerAccountView, error) {
	address, err := entities.ParseAddress(query.Address)
	if err != nil {
		return BuyerAccountView{}, err
	}
	account, err := u.Collections.GetBuyerAccount(ctx, address)
	if err != nil {
		return BuyerAccountView{}, err
	}
	view := BuyerAccountView{
		Address:            address,
		Whitelisted:        account.Whitelisted,
		WhitelistPurchased: account.WhitelistPurchased,
		HasClaimed:         account.HasClaimed,
		ClaimedUnits:       account.ClaimedUnits,
	}
	if account.HasClaimed {
		claimedAt := account.ClaimedAt
		view.ClaimedAt = &claimedAt
	}
	return view, nil
}
