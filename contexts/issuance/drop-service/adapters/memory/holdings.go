package memory

import (
	"context"
	"sync"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"
)

// Holdings is a balance sheet for a collection this service does not own,
// such as the predecessor collection or the membership collection.
type Holdings struct {
	mu       sync.RWMutex
	balances map[entities.Address]int64
}

func NewHoldings() *Holdings {
	return &Holdings{balances: make(map[entities.Address]int64)}
}

func (h *Holdings) SetBalance(owner entities.Address, balance int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if balance <= 0 {
		delete(h.balances, owner)
		return
	}
	h.balances[owner] = balance
}

func (h *Holdings) BalanceOf(_ context.Context, owner entities.Address) (int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.balances[owner], nil
}

func (h *Holdings) IsMember(ctx context.Context, address entities.Address) (bool, error) {
	balance, err := h.BalanceOf(ctx, address)
	return balance > 0, err
}

var _ ports.PredecessorHoldings = (*Holdings)(nil)
var _ ports.MembershipRegistry = (*Holdings)(nil)
