package postgresadapter

import (
	"context"
	"strings"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const payoutStatusQueued = "queued"

// PayoutQueue implements ports.FundsTransferer by queueing a payout row for
// the settlement rail.
type PayoutQueue struct {
	db           *gorm.DB
	collectionID string
}

func NewPayoutQueue(db *gorm.DB, collectionID string) *PayoutQueue {
	return &PayoutQueue{db: db, collectionID: strings.TrimSpace(collectionID)}
}

func (q *PayoutQueue) Transfer(ctx context.Context, to entities.Address, amount entities.Amount) error {
	row := payoutModel{
		PayoutID:     uuid.NewString(),
		CollectionID: q.collectionID,
		Beneficiary:  to.String(),
		Amount:       amount.Decimal(),
		Status:       payoutStatusQueued,
		CreatedAt:    time.Now().UTC(),
	}
	return q.db.WithContext(ctx).Create(&row).Error
}

var _ ports.FundsTransferer = (*PayoutQueue)(nil)
