package bootstrap

import (
	"context"
	"testing"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/domain/services"
	"mintworks/internal/platform/config"
	"mintworks/internal/platform/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		ServiceName:        "mintworks",
		StoreDriver:        config.StoreDriverMemory,
		OutboxBatchSize:    10,
		OwnerAddress:       "0x1000000000000000000000000000000000000001",
		CapBeneficiary:     "0x2000000000000000000000000000000000000002",
		FixedBeneficiary:   "0x3000000000000000000000000000000000000003",
		ResidualRecipient:  "0x4000000000000000000000000000000000000004",
		OutboxPollInterval: 1,
	}
}

func TestCollectionDefinitionParsesAmounts(t *testing.T) {
	definition, err := CollectionDefinition(config.DefaultCollection(memoryConfig()))
	require.NoError(t, err)

	assert.Equal(t, int64(4000), definition.MaxSupply)
	assert.Equal(t, "1000000000000000000", definition.Pricing.RegularCost.String())
	assert.Equal(t, "5000000000000000000", definition.CapLifetime.String())
	assert.Equal(t, int64(2), definition.Pricing.WhitelistQuota)
}

func TestCollectionCapSharePercentControlsSettlement(t *testing.T) {
	paid, err := entities.ParseAmount("4000000000000000000")
	require.NoError(t, err)

	settle := func(file config.Collection) services.Split {
		t.Helper()
		definition, err := CollectionDefinition(file)
		require.NoError(t, err)
		collection, err := entities.NewCollection(definition, time.Unix(0, 0))
		require.NoError(t, err)
		return services.SplitPayment(collection.Ledger, paid)
	}

	base := settle(config.DefaultCollection(memoryConfig()))
	assert.Equal(t, "400000000000000000", base.FixedShare.String())
	assert.Equal(t, "3600000000000000000", base.CapContribution.String())
	assert.True(t, base.Residual.IsZero())

	file, err := config.ParseCollection([]byte("cap_share_percent: 75\n"), config.DefaultCollection(memoryConfig()))
	require.NoError(t, err)
	shared := settle(file)
	assert.Equal(t, "400000000000000000", shared.FixedShare.String())
	assert.Equal(t, "3000000000000000000", shared.CapContribution.String())
	assert.Equal(t, "600000000000000000", shared.Residual.String())
}

func TestCollectionDefinitionRejectsMalformedAmount(t *testing.T) {
	file := config.DefaultCollection(memoryConfig())
	file.RegularCost = "1.5"

	_, err := CollectionDefinition(file)
	require.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "regular_cost")
}

func TestBuildModuleInitializesMemoryCollectionOnce(t *testing.T) {
	ctx := context.Background()
	bus, err := messaging.NewKafka(nil, nil)
	require.NoError(t, err)

	module, pg, err := buildModule(ctx, memoryConfig(), bus, nil)
	require.NoError(t, err)
	assert.Nil(t, pg)

	collection, err := module.Store.GetCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fighters-v2", collection.CollectionID)
	assert.Equal(t, entities.Address("0x1000000000000000000000000000000000000001"), collection.Owner)

	definition, err := CollectionDefinition(config.DefaultCollection(memoryConfig()))
	require.NoError(t, err)
	require.NoError(t, EnsureCollection(ctx, module, definition))
}

func TestBuildModuleRequiresAddresses(t *testing.T) {
	cfg := memoryConfig()
	cfg.OwnerAddress = ""
	bus, err := messaging.NewKafka(nil, nil)
	require.NoError(t, err)

	_, _, err = buildModule(context.Background(), cfg, bus, nil)
	require.ErrorIs(t, err, domainerrors.ErrInvalidAddress)
}

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9090", normalizeAddr("9090"))
	assert.Equal(t, ":9090", normalizeAddr(":9090"))
}
