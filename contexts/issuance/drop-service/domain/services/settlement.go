package services

import "mintworks/contexts/issuance/drop-service/domain/entities"

// Split is how one payment is distributed.
type Split struct {
	Total           entities.Amount
	FixedShare      entities.Amount
	CapContribution entities.Amount
	Residual        entities.Amount
}

// SplitPayment computes the fixed share, the capped contribution bounded by
// the remaining lifetime room, and the residual. The three parts always sum to total.
func SplitPayment(ledger entities.PaymentLedger, total entities.Amount) Split {
	fixed := total.Percent(ledger.FixedSharePercent)
	afterFixed := total.Sub(fixed)

	capBase := afterFixed
	if ledger.CapSharePercent > 0 {
		capBase = total.Percent(ledger.CapSharePercent).Min(afterFixed)
	}
	contribution := capBase.Min(ledger.CapRoom())

	return Split{
		Total:           total,
		FixedShare:      fixed,
		CapContribution: contribution,
		Residual:        afterFixed.Sub(contribution),
	}
}

// ApplySplit credits a split to the collection's ledger.
func ApplySplit(collection *entities.Collection, split Split) {
	ledger := &collection.Ledger
	ledger.Credit(collection.Beneficiaries.FixedShare, split.FixedShare)
	ledger.Credit(collection.Beneficiaries.Cap, split.CapContribution)
	ledger.CapPaidToDate = ledger.CapPaidToDate.Add(split.CapContribution)
	ledger.Residual = ledger.Residual.Add(split.Residual)
}
