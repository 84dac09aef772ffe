package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"mintworks/contexts/issuance/drop-service/adapters/memory"
	"mintworks/contexts/issuance/drop-service/application/commands"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddress    = "0x1000000000000000000000000000000000000001"
	capAddress      = "0x2000000000000000000000000000000000000002"
	fixedAddress    = "0x3000000000000000000000000000000000000003"
	residualAddress = "0x4000000000000000000000000000000000000004"
	aliceAddress    = "0xa000000000000000000000000000000000000001"
	bobAddress      = "0xb000000000000000000000000000000000000002"
	carolAddress    = "0xc000000000000000000000000000000000000003"
)

type fixture struct {
	store       *memory.Store
	predecessor *memory.Holdings
	members     *memory.Holdings
	vault       *memory.Vault

	mint             commands.MintUseCase
	reserve          commands.ReserveMintUseCase
	claim            commands.ClaimUseCase
	withdraw         commands.WithdrawUseCase
	withdrawPayments commands.WithdrawPaymentsUseCase
	admin            commands.AdminUseCase
}

func newFixture(t *testing.T, mutate func(*entities.CollectionDefinition)) *fixture {
	t.Helper()
	def := entities.CollectionDefinition{
		CollectionID:      "fighters-v2",
		Name:              "Fighters V2",
		Owner:             ownerAddress,
		MaxSupply:         20,
		PerTransactionCap: 5,
		ClaimRatio:        3,
		Pricing: entities.PricingConfig{
			MemberCost:     entities.NewAmount(100),
			WhitelistCost:  entities.NewAmount(150),
			RegularCost:    entities.NewAmount(200),
			WhitelistQuota: 2,
		},
		CapBeneficiary:    capAddress,
		FixedBeneficiary:  fixedAddress,
		ResidualRecipient: residualAddress,
		CapLifetime:       entities.NewAmount(1_000_000),
		FixedSharePercent: 10,
	}
	if mutate != nil {
		mutate(&def)
	}

	f := &fixture{
		store:       memory.NewStore(),
		predecessor: memory.NewHoldings(),
		members:     memory.NewHoldings(),
		vault:       memory.NewVault(),
	}
	_, err := commands.InitializeUseCase{Collections: f.store, Clock: f.store}.Execute(context.Background(), commands.InitializeCommand{Definition: def})
	require.NoError(t, err)

	f.mint = commands.MintUseCase{UnitOfWork: f.store, Membership: f.members, Clock: f.store, IDGenerator: f.store}
	f.reserve = commands.ReserveMintUseCase{UnitOfWork: f.store, Clock: f.store, IDGenerator: f.store}
	f.claim = commands.ClaimUseCase{UnitOfWork: f.store, Predecessor: f.predecessor, Clock: f.store, IDGenerator: f.store}
	f.withdraw = commands.WithdrawUseCase{UnitOfWork: f.store, Funds: f.vault, Clock: f.store, IDGenerator: f.store}
	f.withdrawPayments = commands.WithdrawPaymentsUseCase{UnitOfWork: f.store, Funds: f.vault, Clock: f.store, IDGenerator: f.store}
	f.admin = commands.AdminUseCase{UnitOfWork: f.store, Clock: f.store, IDGenerator: f.store}
	return f
}

func (f *fixture) collection(t *testing.T) entities.Collection {
	t.Helper()
	collection, err := f.store.GetCollection(context.Background())
	require.NoError(t, err)
	return collection
}

func (f *fixture) holdings(t *testing.T, raw string) []entities.TokenID {
	t.Helper()
	ids, err := f.store.HoldingsOf(context.Background(), entities.Address(raw))
	require.NoError(t, err)
	return ids
}

func (f *fixture) whitelist(t *testing.T, addresses ...string) {
	t.Helper()
	_, err := f.admin.UpdateWhitelist(context.Background(), commands.UpdateWhitelistCommand{
		Caller:      ownerAddress,
		Addresses:   addresses,
		Whitelisted: true,
	})
	require.NoError(t, err)
}

func amount(t *testing.T, raw string) entities.Amount {
	t.Helper()
	value, err := entities.ParseAmount(raw)
	require.NoError(t, err)
	return value
}

func ptr[T any](value T) *T {
	return &value
}

func TestInitializeRejectsSecondCall(t *testing.T) {
	f := newFixture(t, nil)
	_, err := commands.InitializeUseCase{Collections: f.store}.Execute(context.Background(), commands.InitializeCommand{
		Definition: entities.CollectionDefinition{
			CollectionID:      "again",
			Owner:             ownerAddress,
			MaxSupply:         1,
			ClaimRatio:        1,
			CapBeneficiary:    capAddress,
			FixedBeneficiary:  fixedAddress,
			ResidualRecipient: residualAddress,
		},
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyInitialized)
}

func TestMintIssuesSequentialIDsAndCountsSupply(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 3, Payment: entities.NewAmount(600)})
	require.NoError(t, err)
	assert.Equal(t, []entities.TokenID{1, 2, 3}, first.TokenIDs)
	assert.Equal(t, entities.TierRegular, first.Tier)
	assert.Equal(t, "600", first.Required.String())

	second, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 2, Payment: entities.NewAmount(400)})
	require.NoError(t, err)
	assert.Equal(t, []entities.TokenID{4, 5}, second.TokenIDs)

	collection := f.collection(t)
	assert.Equal(t, int64(5), collection.TotalIssued)
	assert.Equal(t, []entities.TokenID{1, 2, 3}, f.holdings(t, aliceAddress))
}

func TestMintFailureOrder(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) {
		d.MintPaused = true
		d.MaxSupply = 6
	})
	ctx := context.Background()

	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 0})
	assert.ErrorIs(t, err, domainerrors.ErrMintPaused)

	_, err = f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: commands.SettingsPatch{MintPaused: ptr(false)}})
	require.NoError(t, err)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 0})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 6, Payment: entities.NewAmount(10_000)})
	assert.ErrorIs(t, err, domainerrors.ErrExceedsPerTxCap)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 5, Payment: entities.NewAmount(1_000)})
	require.NoError(t, err)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 2, Payment: entities.NewAmount(10_000)})
	assert.ErrorIs(t, err, domainerrors.ErrExceedsSupply)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(199)})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientPayment)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: "not-an-address", Quantity: 1, Payment: entities.NewAmount(200)})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddress)

	assert.Equal(t, int64(5), f.collection(t).TotalIssued)
}

func TestFailedMintLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 2, Payment: entities.NewAmount(399)})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientPayment)

	collection := f.collection(t)
	assert.Equal(t, int64(0), collection.TotalIssued)
	assert.True(t, collection.Ledger.Residual.IsZero())
	assert.Empty(t, collection.Ledger.Pending)
	assert.Empty(t, f.holdings(t, aliceAddress))

	pending, err := f.store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMintPricingTiers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.members.SetBalance(entities.Address(aliceAddress), 1)
	f.whitelist(t, aliceAddress, bobAddress)

	member, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(100)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierMember, member.Tier)

	account, err := f.store.GetBuyerAccount(ctx, entities.Address(aliceAddress))
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.WhitelistPurchased, "member purchases do not use whitelist quota")

	first, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 1, Payment: entities.NewAmount(150)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierWhitelisted, first.Tier)

	second, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 1, Payment: entities.NewAmount(150)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierWhitelisted, second.Tier)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 1, Payment: entities.NewAmount(150)})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientPayment)

	third, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 1, Payment: entities.NewAmount(200)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierRegular, third.Tier)
}

func TestMintCrossingWhitelistQuotaPaysRegularForRemainder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.whitelist(t, bobAddress)

	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 5, Payment: entities.NewAmount(750)})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientPayment)

	result, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 5, Payment: entities.NewAmount(900)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierWhitelisted, result.Tier)
	assert.Equal(t, int64(2), result.WhitelistUnits)
	assert.Equal(t, "900", result.Required.String())

	account, err := f.store.GetBuyerAccount(ctx, entities.Address(bobAddress))
	require.NoError(t, err)
	assert.Equal(t, int64(2), account.WhitelistPurchased)

	next, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: bobAddress, Quantity: 1, Payment: entities.NewAmount(200)})
	require.NoError(t, err)
	assert.Equal(t, entities.TierRegular, next.Tier)
	assert.Zero(t, next.WhitelistUnits)
}

func TestMintCapScenario(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) {
		d.Pricing.RegularCost = amount(t, "1000000000000000000")
		d.CapLifetime = amount(t, "5000000000000000000")
		d.CapSharePercent = 75
	})
	ctx := context.Background()
	sent := amount(t, "4000000000000000000")

	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: sent})
	require.NoError(t, err)
	collection := f.collection(t)
	assert.Equal(t, "3000000000000000000", collection.Ledger.PendingFor(entities.Address(capAddress)).String())
	assert.Equal(t, "400000000000000000", collection.Ledger.PendingFor(entities.Address(fixedAddress)).String())
	assert.Equal(t, "600000000000000000", collection.Ledger.Residual.String())

	for i := 0; i < 3; i++ {
		_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: sent})
		require.NoError(t, err)
	}
	collection = f.collection(t)
	assert.Equal(t, "5000000000000000000", collection.Ledger.PendingFor(entities.Address(capAddress)).String())
	assert.Equal(t, "5000000000000000000", collection.Ledger.CapPaidToDate.String())

	total := collection.Ledger.PendingFor(entities.Address(capAddress)).
		Add(collection.Ledger.PendingFor(entities.Address(fixedAddress))).
		Add(collection.Ledger.Residual)
	assert.Equal(t, "16000000000000000000", total.String(), "overpayment is retained in full")
}

func TestMintIdempotencyReplayAndConflict(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cmd := commands.MintCommand{IdempotencyKey: "order-1", Buyer: aliceAddress, Quantity: 2, Payment: entities.NewAmount(400)}

	first, err := f.mint.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.mint.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.TokenIDs, second.TokenIDs)
	assert.Equal(t, int64(2), f.collection(t).TotalIssued)

	cmd.Quantity = 1
	_, err = f.mint.Execute(ctx, cmd)
	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyKeyConflict)
}

func TestConcurrentMintsNeverExceedSupply(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) { d.MaxSupply = 37 })
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		issued  []entities.TokenID
		buyers  = []string{aliceAddress, bobAddress, carolAddress}
		workers = 30
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.mint.Execute(ctx, commands.MintCommand{
				Buyer:    buyers[i%len(buyers)],
				Quantity: int64(i%5 + 1),
				Payment:  entities.NewAmount(1_000),
			})
			if err != nil {
				return
			}
			mu.Lock()
			issued = append(issued, result.TokenIDs...)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	collection := f.collection(t)
	assert.LessOrEqual(t, collection.TotalIssued, collection.MaxSupply)
	assert.Equal(t, int64(len(issued)), collection.TotalIssued)

	seen := make(map[entities.TokenID]bool, len(issued))
	for _, id := range issued {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestReserveMint(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) {
		d.MintPaused = true
		d.PerTransactionCap = 1
		d.MaxSupply = 10
	})
	ctx := context.Background()

	_, err := f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: aliceAddress, Recipient: aliceAddress, Quantity: 1})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	result, err := f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: ownerAddress, Recipient: bobAddress, Quantity: 7})
	require.NoError(t, err)
	assert.Len(t, result.TokenIDs, 7)
	assert.Len(t, f.holdings(t, bobAddress), 7)
	assert.Equal(t, int64(7), f.collection(t).TotalIssued)

	_, err = f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: ownerAddress, Recipient: bobAddress, Quantity: 4})
	assert.ErrorIs(t, err, domainerrors.ErrExceedsSupply)
	_, err = f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: ownerAddress, Recipient: bobAddress, Quantity: 0})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
}

func TestClaimOncePerAddress(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.predecessor.SetBalance(entities.Address(aliceAddress), 7)
	f.predecessor.SetBalance(entities.Address(bobAddress), 2)

	result, err := f.claim.Execute(ctx, commands.ClaimCommand{Caller: aliceAddress})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Units)
	assert.Equal(t, []entities.TokenID{1, 2}, f.holdings(t, aliceAddress))

	f.predecessor.SetBalance(entities.Address(aliceAddress), 30)
	_, err = f.claim.Execute(ctx, commands.ClaimCommand{Caller: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingToClaim)
	assert.Equal(t, []entities.TokenID{1, 2}, f.holdings(t, aliceAddress))

	_, err = f.claim.Execute(ctx, commands.ClaimCommand{Caller: bobAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingToClaim)

	account, err := f.store.GetBuyerAccount(ctx, entities.Address(bobAddress))
	require.NoError(t, err)
	assert.False(t, account.HasClaimed, "a rejected claim does not burn the entitlement")
}

func TestClaimEntitlementFollowsCurrentHolder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.predecessor.SetBalance(entities.Address(aliceAddress), 6)
	f.predecessor.SetBalance(entities.Address(aliceAddress), 0)
	f.predecessor.SetBalance(entities.Address(carolAddress), 6)

	_, err := f.claim.Execute(ctx, commands.ClaimCommand{Caller: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingToClaim)

	result, err := f.claim.Execute(ctx, commands.ClaimCommand{Caller: carolAddress})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Units)
	assert.Len(t, f.holdings(t, carolAddress), 2)
	assert.Empty(t, f.holdings(t, aliceAddress))
}

func TestClaimRespectsPauseAndSupply(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) {
		d.ClaimPaused = true
		d.MaxSupply = 2
	})
	ctx := context.Background()
	f.predecessor.SetBalance(entities.Address(aliceAddress), 9)

	_, err := f.claim.Execute(ctx, commands.ClaimCommand{Caller: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrClaimPaused)

	_, err = f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: commands.SettingsPatch{ClaimPaused: ptr(false)}})
	require.NoError(t, err)

	_, err = f.claim.Execute(ctx, commands.ClaimCommand{Caller: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrExceedsSupply)

	account, err := f.store.GetBuyerAccount(ctx, entities.Address(aliceAddress))
	require.NoError(t, err)
	assert.False(t, account.HasClaimed)
}

func TestWithdrawPaysResidualOnceAndZeroesFirst(t *testing.T) {
	f := newFixture(t, func(d *entities.CollectionDefinition) {
		d.CapLifetime = entities.NewAmount(100)
	})
	ctx := context.Background()
	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 5, Payment: entities.NewAmount(1_000)})
	require.NoError(t, err)

	_, err = f.withdraw.Execute(ctx, commands.WithdrawCommand{Caller: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	var reentrant error
	f.vault.BeforeTransfer = func(ctx context.Context, _ entities.Address, _ entities.Amount) error {
		f.vault.BeforeTransfer = nil
		_, reentrant = f.withdraw.Execute(ctx, commands.WithdrawCommand{Caller: residualAddress})
		return nil
	}

	result, err := f.withdraw.Execute(ctx, commands.WithdrawCommand{Caller: ownerAddress})
	require.NoError(t, err)
	assert.Equal(t, entities.Address(residualAddress), result.Beneficiary)
	assert.Equal(t, "800", result.Amount.String())
	assert.ErrorIs(t, reentrant, domainerrors.ErrNothingOwed)
	assert.Equal(t, "800", f.vault.TotalTo(entities.Address(residualAddress)).String())

	_, err = f.withdraw.Execute(ctx, commands.WithdrawCommand{Caller: residualAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingOwed)
}

func TestWithdrawPaymentsForBeneficiaries(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(200)})
	require.NoError(t, err)

	result, err := f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: fixedAddress})
	require.NoError(t, err)
	assert.Equal(t, "20", result.Amount.String())

	result, err = f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: capAddress})
	require.NoError(t, err)
	assert.Equal(t, "180", result.Amount.String())

	_, err = f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: capAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingOwed)
	_, err = f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: bobAddress})
	assert.ErrorIs(t, err, domainerrors.ErrNothingOwed)

	assert.True(t, f.collection(t).Ledger.PendingFor(entities.Address(capAddress)).IsZero())
}

func TestFailedTransferIsRecredited(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(200)})
	require.NoError(t, err)

	rail := errors.New("payment rail unavailable")
	f.vault.BeforeTransfer = func(context.Context, entities.Address, entities.Amount) error { return rail }

	_, err = f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: fixedAddress})
	require.ErrorIs(t, err, rail)
	assert.Equal(t, "20", f.collection(t).Ledger.PendingFor(entities.Address(fixedAddress)).String())

	pending, err := f.store.ListPendingOutbox(ctx, 100)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	last := pending[len(pending)-1]
	assert.Equal(t, contractsv1.EventTypeDropWithdrawalReverted, last.EventType)

	f.vault.BeforeTransfer = nil
	result, err := f.withdrawPayments.Execute(ctx, commands.WithdrawPaymentsCommand{Beneficiary: fixedAddress})
	require.NoError(t, err)
	assert.Equal(t, "20", result.Amount.String())
}

func TestAdminOperationsAreOwnerOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	patch := commands.SettingsPatch{RegularCost: ptr(entities.NewAmount(1))}

	_, err := f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: aliceAddress, Patch: patch})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.admin.UpdateWhitelist(ctx, commands.UpdateWhitelistCommand{Caller: "", Addresses: []string{aliceAddress}, Whitelisted: true})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.admin.TransferOwnership(ctx, commands.TransferOwnershipCommand{Caller: aliceAddress, NewOwner: aliceAddress})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.admin.RaiseMaxSupply(ctx, commands.RaiseMaxSupplyCommand{Caller: aliceAddress, MaxSupply: 100})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	assert.Equal(t, "200", f.collection(t).Pricing.RegularCost.String())
}

func TestUpdateSettingsOverwritesIdempotently(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	patch := commands.SettingsPatch{
		MemberCost:        ptr(entities.NewAmount(10)),
		WhitelistCost:     ptr(entities.NewAmount(20)),
		RegularCost:       ptr(entities.NewAmount(30)),
		WhitelistQuota:    ptr(int64(4)),
		PerTransactionCap: ptr(int64(3)),
		BaseURI:           ptr(" ipfs://fighters/ "),
		CapBeneficiary:    ptr(bobAddress),
		FixedBeneficiary:  ptr(carolAddress),
		ResidualRecipient: ptr(aliceAddress),
	}

	first, err := f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: patch})
	require.NoError(t, err)
	second, err := f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: patch})
	require.NoError(t, err)

	assert.Equal(t, first.Pricing, second.Pricing)
	assert.Equal(t, first.Beneficiaries, second.Beneficiaries)
	assert.Equal(t, first.Version+1, second.Version)
	assert.Equal(t, "ipfs://fighters/", second.BaseURI)
	assert.Equal(t, int64(3), second.PerTransactionCap)
	assert.Equal(t, entities.Address(aliceAddress), second.Beneficiaries.Residual)

	_, err = f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: commands.SettingsPatch{PerTransactionCap: ptr(int64(-1))}})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = f.admin.UpdateSettings(ctx, commands.UpdateSettingsCommand{Caller: ownerAddress, Patch: commands.SettingsPatch{CapBeneficiary: ptr("0x0000000000000000000000000000000000000000")}})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddress)
}

func TestWhitelistAddAndRemove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.whitelist(t, aliceAddress, bobAddress)

	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(150)})
	require.NoError(t, err)

	_, err = f.admin.UpdateWhitelist(ctx, commands.UpdateWhitelistCommand{Caller: ownerAddress, Addresses: []string{aliceAddress}})
	require.NoError(t, err)

	account, err := f.store.GetBuyerAccount(ctx, entities.Address(aliceAddress))
	require.NoError(t, err)
	assert.False(t, account.Whitelisted)
	assert.Equal(t, int64(1), account.WhitelistPurchased)

	_, err = f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 1, Payment: entities.NewAmount(150)})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientPayment)

	_, err = f.admin.UpdateWhitelist(ctx, commands.UpdateWhitelistCommand{Caller: ownerAddress, Addresses: []string{aliceAddress, "bogus"}, Whitelisted: true})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddress)
	account, err = f.store.GetBuyerAccount(ctx, entities.Address(aliceAddress))
	require.NoError(t, err)
	assert.False(t, account.Whitelisted, "a rejected batch applies no entries")
}

func TestTransferOwnershipAndRaiseMaxSupply(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.admin.RaiseMaxSupply(ctx, commands.RaiseMaxSupplyCommand{Caller: ownerAddress, MaxSupply: 19})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	updated, err := f.admin.RaiseMaxSupply(ctx, commands.RaiseMaxSupplyCommand{Caller: ownerAddress, MaxSupply: 25})
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.MaxSupply)

	_, err = f.admin.TransferOwnership(ctx, commands.TransferOwnershipCommand{Caller: ownerAddress, NewOwner: aliceAddress})
	require.NoError(t, err)

	_, err = f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: ownerAddress, Recipient: ownerAddress, Quantity: 1})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.reserve.Execute(ctx, commands.ReserveMintCommand{Caller: aliceAddress, Recipient: aliceAddress, Quantity: 1})
	require.NoError(t, err)
}

func TestMintEmitsMintedAndSettledEvents(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.mint.Execute(ctx, commands.MintCommand{Buyer: aliceAddress, Quantity: 2, Payment: entities.NewAmount(500)})
	require.NoError(t, err)

	pending, err := f.store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, contractsv1.EventTypeDropMinted, pending[0].EventType)
	assert.Equal(t, contractsv1.EventTypeDropSettled, pending[1].EventType)

	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(pending[0].Payload, &envelope))
	assert.Equal(t, "fighters-v2", envelope.PartitionKey)

	var minted ports.MintedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &minted))
	assert.Equal(t, []uint64{1, 2}, minted.TokenIDs)
	assert.Equal(t, "500", minted.Paid)
	assert.Equal(t, aliceAddress, minted.Recipient)
	assert.WithinDuration(t, time.Now(), minted.MintedAt, time.Minute)
}
