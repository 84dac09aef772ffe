package ports

import "time"

// MintedEvent is the drop.minted and drop.reserve_minted payload.
type MintedEvent struct {
	CollectionID string    `json:"collection_id"`
	Recipient    string    `json:"recipient"`
	Tier         string    `json:"tier,omitempty"`
	Quantity     int64     `json:"quantity"`
	TokenIDs     []uint64  `json:"token_ids"`
	Paid         string    `json:"paid,omitempty"`
	TotalIssued  int64     `json:"total_issued"`
	MintedAt     time.Time `json:"minted_at"`
}

// ClaimedEvent is the drop.claimed payload.
type ClaimedEvent struct {
	CollectionID string    `json:"collection_id"`
	Claimant     string    `json:"claimant"`
	Units        int64     `json:"units"`
	TokenIDs     []uint64  `json:"token_ids"`
	ClaimedAt    time.Time `json:"claimed_at"`
}

// SettledEvent is the drop.settled payload.
type SettledEvent struct {
	CollectionID    string    `json:"collection_id"`
	Total           string    `json:"total"`
	FixedShare      string    `json:"fixed_share"`
	CapContribution string    `json:"cap_contribution"`
	Residual        string    `json:"residual"`
	CapPaidToDate   string    `json:"cap_paid_to_date"`
	SettledAt       time.Time `json:"settled_at"`
}

// WithdrawalEvent is the drop.withdrawn and drop.withdrawal_reverted payload.
type WithdrawalEvent struct {
	CollectionID string    `json:"collection_id"`
	Beneficiary  string    `json:"beneficiary"`
	Amount       string    `json:"amount"`
	Residual     bool      `json:"residual"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SettingsUpdatedEvent is the drop.settings_updated payload.
type SettingsUpdatedEvent struct {
	CollectionID string    `json:"collection_id"`
	Setting      string    `json:"setting"`
	UpdatedBy    string    `json:"updated_by"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}
