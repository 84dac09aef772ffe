package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	moduleName          = "issuance/drop-service"
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository persists one collection. Every unit of work locks the
// collection row, which serializes issuance and settlement.
type Repository struct {
	db           *gorm.DB
	collectionID string
	logger       *slog.Logger
}

func NewRepository(db *gorm.DB, collectionID string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:           db,
		collectionID: strings.TrimSpace(collectionID),
		logger:       logger,
	}
}

// Migrate creates or updates the adapter's tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return r.logError("drop_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateCollection(ctx context.Context, collection entities.Collection) error {
	if collection.CollectionID != r.collectionID {
		return domainerrors.ErrInvalidInput
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := collectionModelFromEntity(collection)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return replacePending(tx, collection)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyInitialized
		}
		return r.logError("drop_repo_create_collection_failed", err)
	}
	return nil
}

func (r *Repository) GetCollection(ctx context.Context) (entities.Collection, error) {
	collection, err := loadCollection(r.db.WithContext(ctx), r.collectionID, false)
	if err != nil && !errors.Is(err, domainerrors.ErrCollectionNotFound) {
		return entities.Collection{}, r.logError("drop_repo_get_collection_failed", err)
	}
	return collection, err
}

func (r *Repository) GetBuyerAccount(ctx context.Context, address entities.Address) (entities.BuyerAccount, error) {
	account, err := loadBuyerAccount(r.db.WithContext(ctx), r.collectionID, address)
	if err != nil {
		return entities.BuyerAccount{}, r.logError("drop_repo_get_buyer_account_failed", err, "address", address.String())
	}
	return account, nil
}

func (r *Repository) BalanceOf(ctx context.Context, owner entities.Address) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&titleModel{}).
		Where("collection_id = ? AND owner = ?", r.collectionID, owner.String()).
		Count(&count).Error; err != nil {
		return 0, r.logError("drop_repo_balance_of_failed", err, "owner", owner.String())
	}
	return count, nil
}

func (r *Repository) HoldingsOf(ctx context.Context, owner entities.Address) ([]entities.TokenID, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&titleModel{}).
		Where("collection_id = ? AND owner = ?", r.collectionID, owner.String()).
		Order("token_id ASC").
		Pluck("token_id", &ids).Error; err != nil {
		return nil, r.logError("drop_repo_holdings_of_failed", err, "owner", owner.String())
	}
	items := make([]entities.TokenID, 0, len(ids))
	for _, id := range ids {
		items = append(items, entities.TokenID(id))
	}
	return items, nil
}

func (r *Repository) TotalSupply(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&titleModel{}).
		Where("collection_id = ?", r.collectionID).
		Count(&count).Error; err != nil {
		return 0, r.logError("drop_repo_total_supply_failed", err)
	}
	return count, nil
}

func (r *Repository) Transfer(ctx context.Context, from entities.Address, to entities.Address, tokenID entities.TokenID) error {
	if to.IsZero() {
		return domainerrors.ErrInvalidAddress
	}
	result := r.db.WithContext(ctx).Model(&titleModel{}).
		Where("collection_id = ? AND token_id = ? AND owner = ?", r.collectionID, int64(tokenID), from.String()).
		Updates(map[string]any{
			"owner":      to.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("drop_repo_transfer_failed", result.Error, "token_id", uint64(tokenID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func (r *Repository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db, collectionID: r.collectionID})
	})
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("drop_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	at := sentAt.UTC()
	result := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": &at,
		})
	if result.Error != nil {
		return r.logError("drop_repo_mark_outbox_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", moduleName,
		"layer", "adapter",
		"collection_id", r.collectionID,
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("drop repository operation failed", fields...)
	return err
}

type gormTx struct {
	db           *gorm.DB
	collectionID string
	locked       bool
	lastTitle    *int64
}

func (t *gormTx) Collection(_ context.Context) (entities.Collection, error) {
	collection, err := loadCollection(t.db, t.collectionID, true)
	if err != nil {
		return entities.Collection{}, err
	}
	t.locked = true
	return collection, nil
}

func (t *gormTx) SaveCollection(_ context.Context, collection entities.Collection) error {
	if !t.locked {
		if _, err := t.Collection(context.Background()); err != nil {
			return err
		}
	}
	if collection.CollectionID != t.collectionID || collection.TotalIssued > collection.MaxSupply {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	row := collectionModelFromEntity(collection)
	if err := t.db.Model(&collectionModel{}).
		Where("collection_id = ?", t.collectionID).
		Select("*").
		Omit("collection_id", "created_at").
		Updates(&row).Error; err != nil {
		return err
	}
	return replacePending(t.db, collection)
}

func (t *gormTx) BuyerAccount(_ context.Context, address entities.Address) (entities.BuyerAccount, error) {
	return loadBuyerAccount(t.db, t.collectionID, address)
}

func (t *gormTx) SaveBuyerAccount(_ context.Context, account entities.BuyerAccount) error {
	if account.Address.IsZero() {
		return domainerrors.ErrInvalidAddress
	}
	row := buyerAccountModelFromEntity(t.collectionID, account)
	return t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection_id"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"whitelisted",
			"whitelist_purchased",
			"has_claimed",
			"claimed_units",
			"claimed_at",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (t *gormTx) Titles() ports.TitleMinter {
	return t
}

// MintNext allocates max(token_id)+1 under the collection row lock.
func (t *gormTx) MintNext(_ context.Context, to entities.Address) (entities.TokenID, error) {
	if to.IsZero() {
		return 0, domainerrors.ErrInvalidAddress
	}
	if t.lastTitle == nil {
		var last int64
		if err := t.db.Model(&titleModel{}).
			Where("collection_id = ?", t.collectionID).
			Select("COALESCE(MAX(token_id), 0)").
			Scan(&last).Error; err != nil {
			return 0, err
		}
		t.lastTitle = &last
	}
	next := *t.lastTitle + 1
	now := time.Now().UTC()
	row := titleModel{
		CollectionID: t.collectionID,
		TokenID:      next,
		Owner:        to.String(),
		MintedAt:     now,
		UpdatedAt:    now,
	}
	if err := t.db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, domainerrors.ErrRepositoryInvariantBroke
		}
		return 0, err
	}
	*t.lastTitle = next
	return entities.TokenID(next), nil
}

func (t *gormTx) IdempotencyRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := t.db.Where("key = ?", strings.TrimSpace(key)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	if !row.ExpiresAt.After(now.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (t *gormTx) PutIdempotencyRecord(_ context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	// Expired rows are overwritten in place.
	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_hash", "response_payload", "expires_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "drop_idempotency.expires_at <= ?", Vars: []any{time.Now().UTC()}},
		}},
	}).Create(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (t *gormTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
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
	row := outboxModel{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	}
	return t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func loadCollection(db *gorm.DB, collectionID string, forUpdate bool) (entities.Collection, error) {
	query := db
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row collectionModel
	if err := query.Where("collection_id = ?", collectionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Collection{}, domainerrors.ErrCollectionNotFound
		}
		return entities.Collection{}, err
	}
	var pending []pendingWithdrawalModel
	if err := db.Where("collection_id = ?", collectionID).Find(&pending).Error; err != nil {
		return entities.Collection{}, err
	}
	return row.toEntity(pending)
}

func loadBuyerAccount(db *gorm.DB, collectionID string, address entities.Address) (entities.BuyerAccount, error) {
	var row buyerAccountModel
	err := db.Where("collection_id = ? AND address = ?", collectionID, address.String()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.NewBuyerAccount(address), nil
		}
		return entities.BuyerAccount{}, err
	}
	return row.toEntity(), nil
}

// replacePending rewrites the escrow rows so they mirror the ledger map.
func replacePending(db *gorm.DB, collection entities.Collection) error {
	if err := db.Where("collection_id = ?", collection.CollectionID).Delete(&pendingWithdrawalModel{}).Error; err != nil {
		return err
	}
	if len(collection.Ledger.Pending) == 0 {
		return nil
	}
	rows := make([]pendingWithdrawalModel, 0, len(collection.Ledger.Pending))
	for beneficiary, amount := range collection.Ledger.Pending {
		if amount.IsZero() {
			continue
		}
		rows = append(rows, pendingWithdrawalModel{
			CollectionID: collection.CollectionID,
			Beneficiary:  beneficiary.String(),
			Amount:       amount.Decimal(),
			UpdatedAt:    collection.UpdatedAt.UTC(),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UnitOfWork = (*Repository)(nil)
var _ ports.CollectionInitializer = (*Repository)(nil)
var _ ports.CollectionReader = (*Repository)(nil)
var _ ports.TitleReader = (*Repository)(nil)
var _ ports.TitleTransferer = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
var _ ports.Tx = (*gormTx)(nil)
var _ ports.TitleMinter = (*gormTx)(nil)
