package entities

import (
	"testing"
	"time"

	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() CollectionDefinition {
	return CollectionDefinition{
		CollectionID:      "fighters-v2",
		Name:              "Fighters V2",
		Owner:             "0x1000000000000000000000000000000000000001",
		MaxSupply:         DefaultMaxSupply,
		PerTransactionCap: DefaultPerTransactionCap,
		ClaimRatio:        DefaultClaimRatio,
		MintPaused:        true,
		ClaimPaused:       true,
		Pricing: PricingConfig{
			MemberCost:     NewAmount(200),
			WhitelistCost:  NewAmount(250),
			RegularCost:    NewAmount(300),
			WhitelistQuota: DefaultWhitelistQuota,
		},
		CapBeneficiary:    "0x2000000000000000000000000000000000000002",
		FixedBeneficiary:  "0x3000000000000000000000000000000000000003",
		ResidualRecipient: "0x4000000000000000000000000000000000000004",
		CapLifetime:       NewAmount(5000),
		FixedSharePercent: DefaultFixedSharePercent,
	}
}

func TestNewCollectionFromDefinition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	collection, err := NewCollection(validDefinition(), now)
	require.NoError(t, err)

	assert.Equal(t, "fighters-v2", collection.CollectionID)
	assert.Equal(t, int64(0), collection.TotalIssued)
	assert.Equal(t, DefaultMaxSupply, collection.RemainingSupply())
	assert.True(t, collection.IsOwner("0x1000000000000000000000000000000000000001"))
	assert.False(t, collection.IsOwner("0x2000000000000000000000000000000000000002"))
	assert.True(t, collection.Ledger.CapPaidToDate.IsZero())
	assert.Equal(t, now, collection.CreatedAt)
}

func TestNewCollectionRejectsInvalidDefinitions(t *testing.T) {
	mutations := map[string]func(*CollectionDefinition){
		"missing id":        func(d *CollectionDefinition) { d.CollectionID = " " },
		"zero supply":       func(d *CollectionDefinition) { d.MaxSupply = 0 },
		"zero claim ratio":  func(d *CollectionDefinition) { d.ClaimRatio = 0 },
		"fixed share > 100": func(d *CollectionDefinition) { d.FixedSharePercent = 101 },
		"shares over 100":   func(d *CollectionDefinition) { d.CapSharePercent = 95 },
		"negative quota":    func(d *CollectionDefinition) { d.Pricing.WhitelistQuota = -1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			def := validDefinition()
			mutate(&def)
			_, err := NewCollection(def, time.Now())
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
		})
	}

	def := validDefinition()
	def.Owner = "not-an-address"
	_, err := NewCollection(def, time.Now())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddress)
}

func TestPaymentLedgerTakeZeroesBalances(t *testing.T) {
	ledger := PaymentLedger{Pending: map[Address]Amount{}}
	beneficiary := Address("0x2000000000000000000000000000000000000002")

	_, err := ledger.TakePending(beneficiary)
	require.ErrorIs(t, err, domainerrors.ErrNothingOwed)

	ledger.Credit(beneficiary, NewAmount(7))
	ledger.Credit(beneficiary, NewAmount(3))
	amount, err := ledger.TakePending(beneficiary)
	require.NoError(t, err)
	assert.Equal(t, "10", amount.String())
	assert.True(t, ledger.PendingFor(beneficiary).IsZero())

	_, err = ledger.TakeResidual()
	require.ErrorIs(t, err, domainerrors.ErrNothingOwed)
	ledger.Residual = NewAmount(4)
	amount, err = ledger.TakeResidual()
	require.NoError(t, err)
	assert.Equal(t, "4", amount.String())
	assert.True(t, ledger.Residual.IsZero())
}

func TestCollectionCloneDoesNotShareEscrow(t *testing.T) {
	collection, err := NewCollection(validDefinition(), time.Now())
	require.NoError(t, err)
	collection.Ledger.Credit(collection.Beneficiaries.Cap, NewAmount(10))

	clone := collection.Clone()
	clone.Ledger.Credit(collection.Beneficiaries.Cap, NewAmount(5))

	assert.Equal(t, "10", collection.Ledger.PendingFor(collection.Beneficiaries.Cap).String())
	assert.Equal(t, "15", clone.Ledger.PendingFor(collection.Beneficiaries.Cap).String())
}

func TestBuyerAccountClaimFlagIsSticky(t *testing.T) {
	account := NewBuyerAccount("0x5000000000000000000000000000000000000005")
	assert.Equal(t, int64(2), account.WhitelistRemaining(2))
	account.WhitelistPurchased = 5
	assert.Equal(t, int64(0), account.WhitelistRemaining(2))

	account.MarkClaimed(2, time.Now())
	assert.True(t, account.HasClaimed)
	assert.Equal(t, int64(2), account.ClaimedUnits)
}
