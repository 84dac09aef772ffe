package memory

import (
	"context"
	"sync"
	"time"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"
)

type Payout struct {
	To     entities.Address
	Amount entities.Amount
	At     time.Time
}

// Vault records every funds transfer. BeforeTransfer, when set, runs first and
// may fail the transfer or call back into the service.
type Vault struct {
	BeforeTransfer func(ctx context.Context, to entities.Address, amount entities.Amount) error

	mu      sync.Mutex
	payouts []Payout
}

func NewVault() *Vault {
	return &Vault{}
}

func (v *Vault) Transfer(ctx context.Context, to entities.Address, amount entities.Amount) error {
	if v.BeforeTransfer != nil {
		if err := v.BeforeTransfer(ctx, to, amount); err != nil {
			return err
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.payouts = append(v.payouts, Payout{To: to, Amount: amount, At: time.Now().UTC()})
	return nil
}

func (v *Vault) Payouts() []Payout {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Payout, len(v.payouts))
	copy(out, v.payouts)
	return out
}

// TotalTo sums every payout made to one address.
func (v *Vault) TotalTo(to entities.Address) entities.Amount {
	total := entities.ZeroAmount()
	for _, payout := range v.Payouts() {
		if payout.To == to {
			total = total.Add(payout.Amount)
		}
	}
	return total
}

var _ ports.FundsTransferer = (*Vault)(nil)
