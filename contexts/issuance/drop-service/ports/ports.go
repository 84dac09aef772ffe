package ports

import (
	"context"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	contractsv1 "mintworks/contracts/gen/events/v1"
)

// TitleMinter issues the next sequential title id to an address.
type TitleMinter interface {
	MintNext(ctx context.Context, to entities.Address) (entities.TokenID, error)
}

// TitleReader is the read side of the title ledger.
type TitleReader interface {
	BalanceOf(ctx context.Context, owner entities.Address) (int64, error)
	HoldingsOf(ctx context.Context, owner entities.Address) ([]entities.TokenID, error)
	TotalSupply(ctx context.Context) (int64, error)
}

// TitleTransferer moves a title between holders.
type TitleTransferer interface {
	Transfer(ctx context.Context, from entities.Address, to entities.Address, tokenID entities.TokenID) error
}

// PredecessorHoldings counts items an address holds in the predecessor collection.
type PredecessorHoldings interface {
	BalanceOf(ctx context.Context, owner entities.Address) (int64, error)
}

// MembershipRegistry reports whether an address holds at least one membership item.
type MembershipRegistry interface {
	IsMember(ctx context.Context, address entities.Address) (bool, error)
}

// FundsTransferer pays out settled funds. It is always called after the owed
// balance has been zeroed and committed.
type FundsTransferer interface {
	Transfer(ctx context.Context, to entities.Address, amount entities.Amount) error
}

// Tx is the transactional view handed to a unit of work. Writes made through
// it commit together or not at all.
type Tx interface {
	Collection(ctx context.Context) (entities.Collection, error)
	SaveCollection(ctx context.Context, collection entities.Collection) error
	// BuyerAccount returns a fresh account when the address has no state yet.
	BuyerAccount(ctx context.Context, address entities.Address) (entities.BuyerAccount, error)
	SaveBuyerAccount(ctx context.Context, account entities.BuyerAccount) error
	Titles() TitleMinter
	IdempotencyRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutIdempotencyRecord(ctx context.Context, record IdempotencyRecord) error
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// UnitOfWork serializes operations on one collection. fn's writes are
// discarded when it returns an error.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// CollectionInitializer creates the collection aggregate exactly once.
type CollectionInitializer interface {
	CreateCollection(ctx context.Context, collection entities.Collection) error
}

// CollectionReader serves committed state to queries.
type CollectionReader interface {
	GetCollection(ctx context.Context) (entities.Collection, error)
	GetBuyerAccount(ctx context.Context, address entities.Address) (entities.BuyerAccount, error)
}

// IdempotencyRecord captures dedupe metadata for mutating requests.
type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// Clock allows deterministic testing of timestamps and TTLs.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
