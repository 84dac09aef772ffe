package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	seq     int64
	sent    bool
}

// Store keeps one collection, its buyer accounts, the title ledger, the
// outbox, and idempotency records in process memory. Units of work are
// serialized and applied only when they succeed.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	collection  *entities.Collection
	accounts    map[entities.Address]entities.BuyerAccount
	owners      map[entities.TokenID]entities.Address
	lastTitle   entities.TokenID
	outbox      map[string]outboxRecord
	outboxSeq   int64
	idempotency map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[entities.Address]entities.BuyerAccount),
		owners:      make(map[entities.TokenID]entities.Address),
		outbox:      make(map[string]outboxRecord),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) CreateCollection(_ context.Context, collection entities.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection != nil {
		return domainerrors.ErrAlreadyInitialized
	}
	stored := collection.Clone()
	s.collection = &stored
	return nil
}

func (s *Store) GetCollection(_ context.Context) (entities.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.collection == nil {
		return entities.Collection{}, domainerrors.ErrCollectionNotFound
	}
	return s.collection.Clone(), nil
}

func (s *Store) GetBuyerAccount(_ context.Context, address entities.Address) (entities.BuyerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountLocked(address), nil
}

func (s *Store) accountLocked(address entities.Address) entities.BuyerAccount {
	if account, ok := s.accounts[address]; ok {
		return account
	}
	return entities.NewBuyerAccount(address)
}

func (s *Store) BalanceOf(_ context.Context, owner entities.Address) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	for _, holder := range s.owners {
		if holder == owner {
			balance++
		}
	}
	return balance, nil
}

func (s *Store) HoldingsOf(_ context.Context, owner entities.Address) ([]entities.TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.TokenID, 0)
	for tokenID, holder := range s.owners {
		if holder == owner {
			items = append(items, tokenID)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items, nil
}

func (s *Store) TotalSupply(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.owners)), nil
}

func (s *Store) Transfer(_ context.Context, from entities.Address, to entities.Address, tokenID entities.TokenID) error {
	if to.IsZero() {
		return domainerrors.ErrInvalidAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	holder, ok := s.owners[tokenID]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	if holder != from {
		return domainerrors.ErrUnauthorized
	}
	s.owners[tokenID] = to
	return nil
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := s.begin()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) begin() *memoryTx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &memoryTx{
		store:       s,
		accounts:    make(map[entities.Address]entities.BuyerAccount),
		idempotency: make(map[string]ports.IdempotencyRecord),
		titles:      &stagedTitles{last: s.lastTitle},
	}
	if s.collection != nil {
		snapshot := s.collection.Clone()
		tx.collection = &snapshot
	}
	return tx
}

func (s *Store) commit(tx *memoryTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.collectionDirty && tx.collection != nil {
		stored := tx.collection.Clone()
		s.collection = &stored
	}
	for address, account := range tx.accounts {
		s.accounts[address] = account
	}
	for _, title := range tx.titles.minted {
		s.owners[title.tokenID] = title.owner
	}
	s.lastTitle = tx.titles.last
	for key, record := range tx.idempotency {
		s.idempotency[key] = record
	}
	for _, message := range tx.outbox {
		s.outboxSeq++
		s.outbox[message.OutboxID] = outboxRecord{message: message, seq: s.outboxSeq}
	}
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.sent {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(outboxID)
	row, ok := s.outbox[key]
	if !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	row.sent = true
	s.outbox[key] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type mintedTitle struct {
	tokenID entities.TokenID
	owner   entities.Address
}

type stagedTitles struct {
	last   entities.TokenID
	minted []mintedTitle
}

func (t *stagedTitles) MintNext(_ context.Context, to entities.Address) (entities.TokenID, error) {
	if to.IsZero() {
		return 0, domainerrors.ErrInvalidAddress
	}
	t.last++
	t.minted = append(t.minted, mintedTitle{tokenID: t.last, owner: to})
	return t.last, nil
}

type memoryTx struct {
	store           *Store
	collection      *entities.Collection
	collectionDirty bool
	accounts        map[entities.Address]entities.BuyerAccount
	titles          *stagedTitles
	idempotency     map[string]ports.IdempotencyRecord
	outbox          []ports.OutboxMessage
}

func (tx *memoryTx) Collection(_ context.Context) (entities.Collection, error) {
	if tx.collection == nil {
		return entities.Collection{}, domainerrors.ErrCollectionNotFound
	}
	return tx.collection.Clone(), nil
}

func (tx *memoryTx) SaveCollection(_ context.Context, collection entities.Collection) error {
	if tx.collection == nil {
		return domainerrors.ErrCollectionNotFound
	}
	if collection.TotalIssued > collection.MaxSupply {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	staged := collection.Clone()
	tx.collection = &staged
	tx.collectionDirty = true
	return nil
}

func (tx *memoryTx) BuyerAccount(_ context.Context, address entities.Address) (entities.BuyerAccount, error) {
	if account, ok := tx.accounts[address]; ok {
		return account, nil
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.accountLocked(address), nil
}

func (tx *memoryTx) SaveBuyerAccount(_ context.Context, account entities.BuyerAccount) error {
	if account.Address.IsZero() {
		return domainerrors.ErrInvalidAddress
	}
	tx.accounts[account.Address] = account
	return nil
}

func (tx *memoryTx) Titles() ports.TitleMinter {
	return tx.titles
}

func (tx *memoryTx) IdempotencyRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	key = strings.TrimSpace(key)
	if record, ok := tx.idempotency[key]; ok {
		return record, true, nil
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	record, ok := tx.store.idempotency[key]
	if !ok || !record.ExpiresAt.After(now.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (tx *memoryTx) PutIdempotencyRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	record.Key = strings.TrimSpace(record.Key)
	existing, found, err := tx.IdempotencyRecord(ctx, record.Key, time.Now().UTC())
	if err != nil {
		return err
	}
	if found && existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	record.ExpiresAt = record.ExpiresAt.UTC()
	tx.idempotency[record.Key] = record
	return nil
}

func (tx *memoryTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tx.outbox = append(tx.outbox, ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    createdAt,
	})
	return nil
}

var _ ports.UnitOfWork = (*Store)(nil)
var _ ports.CollectionInitializer = (*Store)(nil)
var _ ports.CollectionReader = (*Store)(nil)
var _ ports.TitleReader = (*Store)(nil)
var _ ports.TitleTransferer = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.Tx = (*memoryTx)(nil)
