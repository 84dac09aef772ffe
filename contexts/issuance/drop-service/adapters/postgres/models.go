package postgresadapter

import (
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"

	"github.com/shopspring/decimal"
)

type collectionModel struct {
	CollectionID      string          `gorm:"column:collection_id;primaryKey"`
	Name              string          `gorm:"column:name"`
	Owner             string          `gorm:"column:owner"`
	MaxSupply         int64           `gorm:"column:max_supply"`
	TotalIssued       int64           `gorm:"column:total_issued"`
	PerTransactionCap int64           `gorm:"column:per_transaction_cap"`
	ClaimRatio        int64           `gorm:"column:claim_ratio"`
	MintPaused        bool            `gorm:"column:mint_paused"`
	ClaimPaused       bool            `gorm:"column:claim_paused"`
	BaseURI           string          `gorm:"column:base_uri"`
	MemberCost        decimal.Decimal `gorm:"column:member_cost;type:numeric(78,0)"`
	WhitelistCost     decimal.Decimal `gorm:"column:whitelist_cost;type:numeric(78,0)"`
	RegularCost       decimal.Decimal `gorm:"column:regular_cost;type:numeric(78,0)"`
	WhitelistQuota    int64           `gorm:"column:whitelist_quota"`
	CapBeneficiary    string          `gorm:"column:cap_beneficiary"`
	FixedBeneficiary  string          `gorm:"column:fixed_beneficiary"`
	ResidualRecipient string          `gorm:"column:residual_recipient"`
	CapLifetime       decimal.Decimal `gorm:"column:cap_lifetime;type:numeric(78,0)"`
	CapPaidToDate     decimal.Decimal `gorm:"column:cap_paid_to_date;type:numeric(78,0)"`
	FixedSharePercent int64           `gorm:"column:fixed_share_percent"`
	CapSharePercent   int64           `gorm:"column:cap_share_percent"`
	ResidualBalance   decimal.Decimal `gorm:"column:residual_balance;type:numeric(78,0)"`
	Version           int64           `gorm:"column:version"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (collectionModel) TableName() string {
	return "drop_collections"
}

func collectionModelFromEntity(collection entities.Collection) collectionModel {
	return collectionModel{
		CollectionID:      collection.CollectionID,
		Name:              collection.Name,
		Owner:             collection.Owner.String(),
		MaxSupply:         collection.MaxSupply,
		TotalIssued:       collection.TotalIssued,
		PerTransactionCap: collection.PerTransactionCap,
		ClaimRatio:        collection.ClaimRatio,
		MintPaused:        collection.MintPaused,
		ClaimPaused:       collection.ClaimPaused,
		BaseURI:           collection.BaseURI,
		MemberCost:        collection.Pricing.MemberCost.Decimal(),
		WhitelistCost:     collection.Pricing.WhitelistCost.Decimal(),
		RegularCost:       collection.Pricing.RegularCost.Decimal(),
		WhitelistQuota:    collection.Pricing.WhitelistQuota,
		CapBeneficiary:    collection.Beneficiaries.Cap.String(),
		FixedBeneficiary:  collection.Beneficiaries.FixedShare.String(),
		ResidualRecipient: collection.Beneficiaries.Residual.String(),
		CapLifetime:       collection.Ledger.CapLifetime.Decimal(),
		CapPaidToDate:     collection.Ledger.CapPaidToDate.Decimal(),
		FixedSharePercent: collection.Ledger.FixedSharePercent,
		CapSharePercent:   collection.Ledger.CapSharePercent,
		ResidualBalance:   collection.Ledger.Residual.Decimal(),
		Version:           collection.Version,
		CreatedAt:         collection.CreatedAt.UTC(),
		UpdatedAt:         collection.UpdatedAt.UTC(),
	}
}

func (m collectionModel) toEntity(pending []pendingWithdrawalModel) (entities.Collection, error) {
	amounts := make(map[string]entities.Amount, 8)
	for name, value := range map[string]decimal.Decimal{
		"member_cost":      m.MemberCost,
		"whitelist_cost":   m.WhitelistCost,
		"regular_cost":     m.RegularCost,
		"cap_lifetime":     m.CapLifetime,
		"cap_paid_to_date": m.CapPaidToDate,
		"residual_balance": m.ResidualBalance,
	} {
		amount, err := entities.AmountFromDecimal(value)
		if err != nil {
			return entities.Collection{}, err
		}
		amounts[name] = amount
	}

	escrow := make(map[entities.Address]entities.Amount, len(pending))
	for _, row := range pending {
		amount, err := entities.AmountFromDecimal(row.Amount)
		if err != nil {
			return entities.Collection{}, err
		}
		escrow[entities.Address(row.Beneficiary)] = amount
	}

	return entities.Collection{
		CollectionID:      m.CollectionID,
		Name:              m.Name,
		Owner:             entities.Address(m.Owner),
		MaxSupply:         m.MaxSupply,
		TotalIssued:       m.TotalIssued,
		PerTransactionCap: m.PerTransactionCap,
		MintPaused:        m.MintPaused,
		ClaimPaused:       m.ClaimPaused,
		BaseURI:           m.BaseURI,
		ClaimRatio:        m.ClaimRatio,
		Pricing: entities.PricingConfig{
			MemberCost:     amounts["member_cost"],
			WhitelistCost:  amounts["whitelist_cost"],
			RegularCost:    amounts["regular_cost"],
			WhitelistQuota: m.WhitelistQuota,
		},
		Beneficiaries: entities.Beneficiaries{
			Cap:        entities.Address(m.CapBeneficiary),
			FixedShare: entities.Address(m.FixedBeneficiary),
			Residual:   entities.Address(m.ResidualRecipient),
		},
		Ledger: entities.PaymentLedger{
			CapLifetime:       amounts["cap_lifetime"],
			CapPaidToDate:     amounts["cap_paid_to_date"],
			FixedSharePercent: m.FixedSharePercent,
			CapSharePercent:   m.CapSharePercent,
			Residual:          amounts["residual_balance"],
			Pending:           escrow,
		},
		Version:   m.Version,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

type pendingWithdrawalModel struct {
	CollectionID string          `gorm:"column:collection_id;primaryKey"`
	Beneficiary  string          `gorm:"column:beneficiary;primaryKey"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(78,0)"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (pendingWithdrawalModel) TableName() string {
	return "drop_pending_withdrawals"
}

type buyerAccountModel struct {
	CollectionID       string     `gorm:"column:collection_id;primaryKey"`
	Address            string     `gorm:"column:address;primaryKey"`
	Whitelisted        bool       `gorm:"column:whitelisted"`
	WhitelistPurchased int64      `gorm:"column:whitelist_purchased"`
	HasClaimed         bool       `gorm:"column:has_claimed"`
	ClaimedUnits       int64      `gorm:"column:claimed_units"`
	ClaimedAt          *time.Time `gorm:"column:claimed_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (buyerAccountModel) TableName() string {
	return "drop_buyer_accounts"
}

func buyerAccountModelFromEntity(collectionID string, account entities.BuyerAccount) buyerAccountModel {
	row := buyerAccountModel{
		CollectionID:       collectionID,
		Address:            account.Address.String(),
		Whitelisted:        account.Whitelisted,
		WhitelistPurchased: account.WhitelistPurchased,
		HasClaimed:         account.HasClaimed,
		ClaimedUnits:       account.ClaimedUnits,
		UpdatedAt:          account.UpdatedAt.UTC(),
	}
	if account.HasClaimed {
		claimedAt := account.ClaimedAt.UTC()
		row.ClaimedAt = &claimedAt
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return row
}

func (m buyerAccountModel) toEntity() entities.BuyerAccount {
	account := entities.BuyerAccount{
		Address:            entities.Address(m.Address),
		Whitelisted:        m.Whitelisted,
		WhitelistPurchased: m.WhitelistPurchased,
		HasClaimed:         m.HasClaimed,
		ClaimedUnits:       m.ClaimedUnits,
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
	if m.ClaimedAt != nil {
		account.ClaimedAt = m.ClaimedAt.UTC()
	}
	return account
}

type titleModel struct {
	CollectionID string    `gorm:"column:collection_id;primaryKey"`
	TokenID      int64     `gorm:"column:token_id;primaryKey"`
	Owner        string    `gorm:"column:owner;index"`
	MintedAt     time.Time `gorm:"column:minted_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (titleModel) TableName() string {
	return "drop_titles"
}

type payoutModel struct {
	PayoutID     string          `gorm:"column:payout_id;primaryKey"`
	CollectionID string          `gorm:"column:collection_id"`
	Beneficiary  string          `gorm:"column:beneficiary"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(78,0)"`
	Status       string          `gorm:"column:status"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (payoutModel) TableName() string {
	return "drop_payouts"
}

type externalHoldingModel struct {
	Source    string    `gorm:"column:source;primaryKey"`
	Owner     string    `gorm:"column:owner;primaryKey"`
	Balance   int64     `gorm:"column:balance"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (externalHoldingModel) TableName() string {
	return "drop_external_holdings"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "drop_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Seq          int64      `gorm:"column:seq;autoIncrement"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "drop_outbox"
}

// Models lists every table the adapter owns, in migration order.
func Models() []any {
	return []any{
		&collectionModel{},
		&pendingWithdrawalModel{},
		&buyerAccountModel{},
		&titleModel{},
		&payoutModel{},
		&externalHoldingModel{},
		&idempotencyModel{},
		&outboxModel{},
	}
}
