package services

import (
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
)

// ClaimEntitlement is floor(holdings / ratio).
func ClaimEntitlement(predecessorHoldings int64, ratio int64) int64 {
	if ratio <= 0 || predecessorHoldings <= 0 {
		return 0
	}
	return predecessorHoldings / ratio
}

// EvaluateClaim returns how many titles the account may claim now.
// Already-claimed and zero-entitlement accounts both get ErrNothingToClaim.
func EvaluateClaim(
	collection entities.Collection,
	account entities.BuyerAccount,
	predecessorHoldings int64,
) (int64, error) {
	if collection.ClaimPaused {
		return 0, domainerrors.ErrClaimPaused
	}
	if account.HasClaimed {
		return 0, domainerrors.ErrNothingToClaim
	}
	entitlement := ClaimEntitlement(predecessorHoldings, collection.ClaimRatio)
	if entitlement == 0 {
		return 0, domainerrors.ErrNothingToClaim
	}
	if err := checkSupply(collection, entitlement); err != nil {
		return 0, err
	}
	return entitlement, nil
}
