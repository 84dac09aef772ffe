package postgresadapter

import (
	"context"
	"strings"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SourcePredecessor = "predecessor"
	SourceMembership  = "membership"
)

// ExternalHoldings reads balances of a collection this service does not own.
// Rows are kept current by an indexer outside this module.
type ExternalHoldings struct {
	db     *gorm.DB
	source string
}

func NewExternalHoldings(db *gorm.DB, source string) *ExternalHoldings {
	return &ExternalHoldings{db: db, source: strings.TrimSpace(source)}
}

func (h *ExternalHoldings) BalanceOf(ctx context.Context, owner entities.Address) (int64, error) {
	var rows []externalHoldingModel
	if err := h.db.WithContext(ctx).
		Where("source = ? AND owner = ?", h.source, owner.String()).
		Limit(1).
		Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Balance, nil
}

func (h *ExternalHoldings) IsMember(ctx context.Context, address entities.Address) (bool, error) {
	balance, err := h.BalanceOf(ctx, address)
	return balance > 0, err
}

// SetBalance upserts one holder's balance.
func (h *ExternalHoldings) SetBalance(ctx context.Context, owner entities.Address, balance int64) error {
	row := externalHoldingModel{
		Source:    h.source,
		Owner:     owner.String(),
		Balance:   balance,
		UpdatedAt: time.Now().UTC(),
	}
	return h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&row).Error
}

var _ ports.PredecessorHoldings = (*ExternalHoldings)(nil)
var _ ports.MembershipRegistry = (*ExternalHoldings)(nil)
