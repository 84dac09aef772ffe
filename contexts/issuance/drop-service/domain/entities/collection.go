package entities

import (
	"strings"
	"time"

	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
)

const (
	DefaultMaxSupply         int64 = 4000
	DefaultPerTransactionCap int64 = 5
	DefaultClaimRatio        int64 = 3
	DefaultFixedSharePercent int64 = 10
	DefaultWhitelistQuota    int64 = 2
)

// Beneficiaries are the three payout destinations of every paid mint.
type Beneficiaries struct {
	Cap        Address
	FixedShare Address
	Residual   Address
}

// PaymentLedger tracks settled funds. Pending is a pull-payment escrow keyed by
// beneficiary; Residual is the collection's own withdrawable balance.
type PaymentLedger struct {
	CapLifetime       Amount
	CapPaidToDate     Amount
	FixedSharePercent int64
	// CapSharePercent, when positive, bounds the capped beneficiary's cut to a
	// percentage of each payment. Zero means everything left after the fixed share.
	CapSharePercent int64
	Residual        Amount
	Pending         map[Address]Amount
}

func (l PaymentLedger) CapRoom() Amount {
	return l.CapLifetime.Sub(l.CapPaidToDate)
}

func (l PaymentLedger) PendingFor(beneficiary Address) Amount {
	if amount, ok := l.Pending[beneficiary]; ok {
		return amount
	}
	return ZeroAmount()
}

func (l *PaymentLedger) Credit(beneficiary Address, amount Amount) {
	if amount.IsZero() {
		return
	}
	if l.Pending == nil {
		l.Pending = make(map[Address]Amount)
	}
	l.Pending[beneficiary] = l.PendingFor(beneficiary).Add(amount)
}

// TakePending zeroes and returns the beneficiary's escrowed balance.
func (l *PaymentLedger) TakePending(beneficiary Address) (Amount, error) {
	amount := l.PendingFor(beneficiary)
	if amount.IsZero() {
		return Amount{}, domainerrors.ErrNothingOwed
	}
	delete(l.Pending, beneficiary)
	return amount, nil
}

// TakeResidual zeroes and returns the collection's own balance.
func (l *PaymentLedger) TakeResidual() (Amount, error) {
	if l.Residual.IsZero() {
		return Amount{}, domainerrors.ErrNothingOwed
	}
	amount := l.Residual
	l.Residual = ZeroAmount()
	return amount, nil
}

func (l PaymentLedger) clone() PaymentLedger {
	out := l
	out.Pending = make(map[Address]Amount, len(l.Pending))
	for address, amount := range l.Pending {
		out.Pending[address] = amount
	}
	return out
}

// CollectionDefinition is the deployment-time description of a collection.
type CollectionDefinition struct {
	CollectionID      string
	Name              string
	Owner             string
	MaxSupply         int64
	PerTransactionCap int64
	ClaimRatio        int64
	MintPaused        bool
	ClaimPaused       bool
	BaseURI           string
	Pricing           PricingConfig
	CapBeneficiary    string
	FixedBeneficiary  string
	ResidualRecipient string
	CapLifetime       Amount
	FixedSharePercent int64
	CapSharePercent   int64
}

// Collection is the single configuration and counter aggregate threaded
// through every issuance operation.
type Collection struct {
	CollectionID      string
	Name              string
	Owner             Address
	MaxSupply         int64
	TotalIssued       int64
	PerTransactionCap int64
	MintPaused        bool
	ClaimPaused       bool
	BaseURI           string
	ClaimRatio        int64
	Pricing           PricingConfig
	Beneficiaries     Beneficiaries
	Ledger            PaymentLedger
	// Version increases by one on every committed write.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCollection(def CollectionDefinition, now time.Time) (Collection, error) {
	collectionID := strings.TrimSpace(def.CollectionID)
	if collectionID == "" {
		return Collection{}, domainerrors.ErrInvalidInput
	}
	owner, err := ParseAddress(def.Owner)
	if err != nil {
		return Collection{}, err
	}
	capBeneficiary, err := ParseAddress(def.CapBeneficiary)
	if err != nil {
		return Collection{}, err
	}
	fixedBeneficiary, err := ParseAddress(def.FixedBeneficiary)
	if err != nil {
		return Collection{}, err
	}
	residual, err := ParseAddress(def.ResidualRecipient)
	if err != nil {
		return Collection{}, err
	}
	if def.MaxSupply <= 0 ||
		def.PerTransactionCap < 0 ||
		def.ClaimRatio <= 0 ||
		def.Pricing.WhitelistQuota < 0 ||
		def.FixedSharePercent < 0 || def.FixedSharePercent > 100 ||
		def.CapSharePercent < 0 || def.CapSharePercent+def.FixedSharePercent > 100 {
		return Collection{}, domainerrors.ErrInvalidInput
	}

	return Collection{
		CollectionID:      collectionID,
		Name:              strings.TrimSpace(def.Name),
		Owner:             owner,
		MaxSupply:         def.MaxSupply,
		PerTransactionCap: def.PerTransactionCap,
		MintPaused:        def.MintPaused,
		ClaimPaused:       def.ClaimPaused,
		BaseURI:           def.BaseURI,
		ClaimRatio:        def.ClaimRatio,
		Pricing:           def.Pricing,
		Beneficiaries: Beneficiaries{
			Cap:        capBeneficiary,
			FixedShare: fixedBeneficiary,
			Residual:   residual,
		},
		Ledger: PaymentLedger{
			CapLifetime:       def.CapLifetime,
			CapPaidToDate:     ZeroAmount(),
			FixedSharePercent: def.FixedSharePercent,
			CapSharePercent:   def.CapSharePercent,
			Residual:          ZeroAmount(),
			Pending:           make(map[Address]Amount),
		},
		Version:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

func (c Collection) IsOwner(caller Address) bool {
	return !caller.IsZero() && caller == c.Owner
}

func (c Collection) RemainingSupply() int64 {
	remaining := c.MaxSupply - c.TotalIssued
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clone returns a deep copy; the pending escrow map is not shared.
func (c Collection) Clone() Collection {
	out := c
	out.Ledger = c.Ledger.clone()
	return out
}
