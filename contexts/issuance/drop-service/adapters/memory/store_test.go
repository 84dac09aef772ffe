package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddress = entities.Address("0x1000000000000000000000000000000000000001")
	aliceAddress = entities.Address("0xa000000000000000000000000000000000000001")
	bobAddress   = entities.Address("0xb000000000000000000000000000000000000002")
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	collection, err := entities.NewCollection(entities.CollectionDefinition{
		CollectionID:      "fighters-v2",
		Owner:             ownerAddress.String(),
		MaxSupply:         10,
		PerTransactionCap: 5,
		ClaimRatio:        3,
		CapBeneficiary:    "0x2000000000000000000000000000000000000002",
		FixedBeneficiary:  "0x3000000000000000000000000000000000000003",
		ResidualRecipient: "0x4000000000000000000000000000000000000004",
		CapLifetime:       entities.NewAmount(1000),
		FixedSharePercent: 10,
	}, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, store.CreateCollection(context.Background(), collection))
	return store
}

func TestCreateCollectionOnlyOnce(t *testing.T) {
	store := seededStore(t)
	collection, err := store.GetCollection(context.Background())
	require.NoError(t, err)

	err = store.CreateCollection(context.Background(), collection)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyInitialized)
}

func TestGetCollectionBeforeInitialization(t *testing.T) {
	_, err := NewStore().GetCollection(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrCollectionNotFound)

	err = NewStore().WithinTransaction(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.Collection(ctx)
		return err
	})
	assert.ErrorIs(t, err, domainerrors.ErrCollectionNotFound)
}

func TestWithinTransactionDiscardsWritesOnError(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		require.NoError(t, err)
		collection.TotalIssued = 3
		collection.Ledger.Credit(aliceAddress, entities.NewAmount(50))
		require.NoError(t, tx.SaveCollection(ctx, collection))

		account, err := tx.BuyerAccount(ctx, aliceAddress)
		require.NoError(t, err)
		account.Whitelisted = true
		require.NoError(t, tx.SaveBuyerAccount(ctx, account))

		_, err = tx.Titles().MintNext(ctx, aliceAddress)
		require.NoError(t, err)
		require.NoError(t, tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "evt-1", EventType: "drop.minted"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	collection, err := store.GetCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), collection.TotalIssued)
	assert.True(t, collection.Ledger.PendingFor(aliceAddress).IsZero())

	account, err := store.GetBuyerAccount(ctx, aliceAddress)
	require.NoError(t, err)
	assert.False(t, account.Whitelisted)

	supply, err := store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), supply)

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTitleIDsAreSequentialAcrossTransactions(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	mint := func(to entities.Address, n int) []entities.TokenID {
		var ids []entities.TokenID
		require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
			for i := 0; i < n; i++ {
				id, err := tx.Titles().MintNext(ctx, to)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		}))
		return ids
	}

	assert.Equal(t, []entities.TokenID{1, 2}, mint(aliceAddress, 2))
	assert.Equal(t, []entities.TokenID{3, 4, 5}, mint(bobAddress, 3))
	assert.Equal(t, []entities.TokenID{6}, mint(aliceAddress, 1))

	holdings, err := store.HoldingsOf(ctx, aliceAddress)
	require.NoError(t, err)
	assert.Equal(t, []entities.TokenID{1, 2, 6}, holdings)

	balance, err := store.BalanceOf(ctx, bobAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)
}

func TestRolledBackMintDoesNotConsumeIDs(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_ = store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, _ = tx.Titles().MintNext(ctx, aliceAddress)
		return domainerrors.ErrInsufficientPayment
	})
	var id entities.TokenID
	require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		id, err = tx.Titles().MintNext(ctx, aliceAddress)
		return err
	}))
	assert.Equal(t, entities.TokenID(1), id)
}

func TestTransferMovesTitle(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.Titles().MintNext(ctx, aliceAddress)
		return err
	}))

	assert.ErrorIs(t, store.Transfer(ctx, bobAddress, aliceAddress, 1), domainerrors.ErrUnauthorized)
	require.NoError(t, store.Transfer(ctx, aliceAddress, bobAddress, 1))

	holdings, err := store.HoldingsOf(ctx, bobAddress)
	require.NoError(t, err)
	assert.Equal(t, []entities.TokenID{1}, holdings)
}

func TestSaveCollectionRejectsOverIssue(t *testing.T) {
	store := seededStore(t)
	err := store.WithinTransaction(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		collection.TotalIssued = collection.MaxSupply + 1
		return tx.SaveCollection(ctx, collection)
	})
	assert.ErrorIs(t, err, domainerrors.ErrRepositoryInvariantBroke)
}

func TestOutboxListsInCommitOrderAndMarksSent(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	occurred := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"evt-c", "evt-a", "evt-b"} {
		eventID := id
		require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
			return tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: eventID, EventType: "drop.minted", OccurredAt: occurred})
		}))
	}

	pending, err := store.ListPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-c", pending[0].OutboxID)
	assert.Equal(t, "evt-a", pending[1].OutboxID)

	require.NoError(t, store.MarkOutboxSent(ctx, "evt-c", occurred))
	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-a", pending[0].OutboxID)

	assert.ErrorIs(t, store.MarkOutboxSent(ctx, "missing", occurred), domainerrors.ErrRepositoryInvariantBroke)
}

func TestIdempotencyRecordExpires(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		return tx.PutIdempotencyRecord(ctx, ports.IdempotencyRecord{
			Key:         "drop_mint:k1",
			RequestHash: "h1",
			ExpiresAt:   now.Add(time.Hour),
		})
	}))

	require.NoError(t, store.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		record, found, err := tx.IdempotencyRecord(ctx, "drop_mint:k1", now)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "h1", record.RequestHash)

		_, found, err = tx.IdempotencyRecord(ctx, "drop_mint:k1", now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, found)

		err = tx.PutIdempotencyRecord(ctx, ports.IdempotencyRecord{Key: "drop_mint:k1", RequestHash: "h2", ExpiresAt: now.Add(time.Hour)})
		assert.ErrorIs(t, err, domainerrors.ErrIdempotencyKeyConflict)
		return nil
	}))
}

func TestHoldingsAndVault(t *testing.T) {
	ctx := context.Background()
	holdings := NewHoldings()
	holdings.SetBalance(aliceAddress, 4)

	balance, err := holdings.BalanceOf(ctx, aliceAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)

	member, err := holdings.IsMember(ctx, bobAddress)
	require.NoError(t, err)
	assert.False(t, member)

	holdings.SetBalance(aliceAddress, 0)
	member, err = holdings.IsMember(ctx, aliceAddress)
	require.NoError(t, err)
	assert.False(t, member)

	vault := NewVault()
	require.NoError(t, vault.Transfer(ctx, aliceAddress, entities.NewAmount(7)))
	require.NoError(t, vault.Transfer(ctx, aliceAddress, entities.NewAmount(3)))
	assert.Equal(t, "10", vault.TotalTo(aliceAddress).String())
	assert.Len(t, vault.Payouts(), 2)

	vault.BeforeTransfer = func(context.Context, entities.Address, entities.Amount) error {
		return errors.New("rail down")
	}
	assert.Error(t, vault.Transfer(ctx, bobAddress, entities.NewAmount(1)))
	assert.True(t, vault.TotalTo(bobAddress).IsZero())
}
