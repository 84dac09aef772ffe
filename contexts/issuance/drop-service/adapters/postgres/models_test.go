package postgresadapter

import (
	"testing"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionModelKeepsLedgerExact(t *testing.T) {
	capLifetime, err := entities.ParseAmount("5000000000000000000")
	require.NoError(t, err)
	collection, err := entities.NewCollection(entities.CollectionDefinition{
		CollectionID:      "fighters-v2",
		Owner:             "0x1000000000000000000000000000000000000001",
		MaxSupply:         4000,
		PerTransactionCap: 5,
		ClaimRatio:        3,
		CapBeneficiary:    "0x2000000000000000000000000000000000000002",
		FixedBeneficiary:  "0x3000000000000000000000000000000000000003",
		ResidualRecipient: "0x4000000000000000000000000000000000000004",
		CapLifetime:       capLifetime,
		FixedSharePercent: 10,
	}, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	row := collectionModelFromEntity(collection)
	assert.Equal(t, "5000000000000000000", row.CapLifetime.String())

	pending := []pendingWithdrawalModel{{
		CollectionID: "fighters-v2",
		Beneficiary:  "0x2000000000000000000000000000000000000002",
		Amount:       decimal.RequireFromString("3000000000000000000"),
	}}
	restored, err := row.toEntity(pending)
	require.NoError(t, err)
	assert.Equal(t, "3000000000000000000", restored.Ledger.PendingFor(collection.Beneficiaries.Cap).String())
	assert.Equal(t, collection.Beneficiaries, restored.Beneficiaries)
	assert.Equal(t, collection.Version, restored.Version)
}

func TestCollectionModelRejectsFractionalAmounts(t *testing.T) {
	row := collectionModel{
		CollectionID:  "fighters-v2",
		RegularCost:   decimal.RequireFromString("1.5"),
		CapLifetime:   decimal.Zero,
		CapPaidToDate: decimal.Zero,
	}
	_, err := row.toEntity(nil)
	assert.Error(t, err)
}

func TestBuyerAccountModelClaimTimestamp(t *testing.T) {
	account := entities.NewBuyerAccount("0xa000000000000000000000000000000000000001")
	row := buyerAccountModelFromEntity("fighters-v2", account)
	assert.Nil(t, row.ClaimedAt)

	claimedAt := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	account.MarkClaimed(2, claimedAt)
	row = buyerAccountModelFromEntity("fighters-v2", account)
	require.NotNil(t, row.ClaimedAt)
	assert.Equal(t, claimedAt, row.toEntity().ClaimedAt)
	assert.Equal(t, int64(2), row.toEntity().ClaimedUnits)
}
