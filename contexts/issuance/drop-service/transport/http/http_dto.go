package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MintRequest struct {
	Quantity int64  `json:"quantity"`
	Payment  string `json:"payment"`
}

type MintDTO struct {
	Buyer          string   `json:"buyer"`
	TokenIDs       []uint64 `json:"token_ids"`
	Tier           string   `json:"tier"`
	UnitCost       string   `json:"unit_cost"`
	WhitelistUnits int64    `json:"whitelist_units"`
	Required       string   `json:"required"`
	Paid           string   `json:"paid"`
}

type MintResponse struct {
	Status   string  `json:"status"`
	Replayed bool    `json:"replayed,omitempty"`
	Data     MintDTO `json:"data"`
}

type ReserveMintRequest struct {
	Recipient string `json:"recipient"`
	Quantity  int64  `json:"quantity"`
}

type IssuedDTO struct {
	Recipient string   `json:"recipient"`
	TokenIDs  []uint64 `json:"token_ids"`
}

type ReserveMintResponse struct {
	Status string    `json:"status"`
	Data   IssuedDTO `json:"data"`
}

type ClaimResponse struct {
	Status string    `json:"status"`
	Units  int64     `json:"units"`
	Data   IssuedDTO `json:"data"`
}

type WithdrawPaymentsRequest struct {
	Beneficiary string `json:"beneficiary"`
}

type WithdrawalDTO struct {
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
}

type WithdrawResponse struct {
	Status string        `json:"status"`
	Data   WithdrawalDTO `json:"data"`
}

// UpdateSettingsRequest only applies the fields that are present.
type UpdateSettingsRequest struct {
	MemberCost        *string `json:"member_cost,omitempty"`
	WhitelistCost     *string `json:"whitelist_cost,omitempty"`
	RegularCost       *string `json:"regular_cost,omitempty"`
	WhitelistQuota    *int64  `json:"whitelist_quota,omitempty"`
	PerTransactionCap *int64  `json:"per_transaction_cap,omitempty"`
	MintPaused        *bool   `json:"mint_paused,omitempty"`
	ClaimPaused       *bool   `json:"claim_paused,omitempty"`
	BaseURI           *string `json:"base_uri,omitempty"`
	CapBeneficiary    *string `json:"cap_beneficiary,omitempty"`
	FixedBeneficiary  *string `json:"fixed_beneficiary,omitempty"`
	ResidualRecipient *string `json:"residual_recipient,omitempty"`
}

type UpdateWhitelistRequest struct {
	Addresses   []string `json:"addresses"`
	Whitelisted bool     `json:"whitelisted"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type RaiseMaxSupplyRequest struct {
	MaxSupply int64 `json:"max_supply"`
}

type PendingDTO struct {
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
}

type CollectionDTO struct {
	CollectionID      string       `json:"collection_id"`
	Name              string       `json:"name"`
	Owner             string       `json:"owner"`
	MaxSupply         int64        `json:"max_supply"`
	TotalIssued       int64        `json:"total_issued"`
	RemainingSupply   int64        `json:"remaining_supply"`
	TitlesOutstanding int64        `json:"titles_outstanding"`
	PerTransactionCap int64        `json:"per_transaction_cap"`
	ClaimRatio        int64        `json:"claim_ratio"`
	MintPaused        bool         `json:"mint_paused"`
	ClaimPaused       bool         `json:"claim_paused"`
	BaseURI           string       `json:"base_uri"`
	MemberCost        string       `json:"member_cost"`
	WhitelistCost     string       `json:"whitelist_cost"`
	RegularCost       string       `json:"regular_cost"`
	WhitelistQuota    int64        `json:"whitelist_quota"`
	CapBeneficiary    string       `json:"cap_beneficiary"`
	FixedBeneficiary  string       `json:"fixed_beneficiary"`
	ResidualRecipient string       `json:"residual_recipient"`
	CapLifetime       string       `json:"cap_lifetime"`
	CapPaidToDate     string       `json:"cap_paid_to_date"`
	FixedSharePercent int64        `json:"fixed_share_percent"`
	CapSharePercent   int64        `json:"cap_share_percent"`
	Residual          string       `json:"residual"`
	Pending           []PendingDTO `json:"pending"`
	Version           int64        `json:"version"`
	UpdatedAt         string       `json:"updated_at"`
}

type CollectionResponse struct {
	Status string        `json:"status"`
	Data   CollectionDTO `json:"data"`
}

type MintCostDTO struct {
	Buyer              string `json:"buyer"`
	Tier               string `json:"tier"`
	UnitCost           string `json:"unit_cost"`
	Member             bool   `json:"member"`
	Whitelisted        bool   `json:"whitelisted"`
	WhitelistRemaining int64  `json:"whitelist_remaining"`
}

type MintCostResponse struct {
	Status string      `json:"status"`
	Data   MintCostDTO `json:"data"`
}

type WalletDTO struct {
	Owner    string   `json:"owner"`
	Balance  int64    `json:"balance"`
	TokenIDs []uint64 `json:"token_ids"`
}

type WalletResponse struct {
	Status string    `json:"status"`
	Data   WalletDTO `json:"data"`
}

type PendingResponse struct {
	Status string     `json:"status"`
	Data   PendingDTO `json:"data"`
}

type BuyerAccountDTO struct {
	Address            string `json:"address"`
	Whitelisted        bool   `json:"whitelisted"`
	WhitelistPurchased int64  `json:"whitelist_purchased"`
	HasClaimed         bool   `json:"has_claimed"`
	ClaimedUnits       int64  `json:"claimed_units"`
	ClaimedAt          string `json:"claimed_at,omitempty"`
}

type BuyerAccountResponse struct {
	Status string          `json:"status"`
	Data   BuyerAccountDTO `json:"data"`
}

type MembershipResponse struct {
	Status  string `json:"status"`
	Address string `json:"address"`
	Member  bool   `json:"member"`
}
