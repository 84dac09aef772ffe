package services

import (
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
)

// ValidateMint enforces the public mint preconditions in order: pause gate,
// quantity floor, per-transaction cap, supply cap, payment. It returns the
// required payment and the whitelist-priced unit count on success.
func ValidateMint(
	collection entities.Collection,
	quantity int64,
	payment entities.Amount,
	quote Quote,
) (entities.Amount, int64, error) {
	if collection.MintPaused {
		return entities.Amount{}, 0, domainerrors.ErrMintPaused
	}
	if quantity < 1 {
		return entities.Amount{}, 0, domainerrors.ErrInvalidQuantity
	}
	if quantity > collection.PerTransactionCap {
		return entities.Amount{}, 0, domainerrors.ErrExceedsPerTxCap
	}
	if err := checkSupply(collection, quantity); err != nil {
		return entities.Amount{}, 0, err
	}
	required, whitelistUnits := quote.Price(quantity)
	if payment.LessThan(required) {
		return entities.Amount{}, 0, domainerrors.ErrInsufficientPayment
	}
	return required, whitelistUnits, nil
}

// ValidateReserveMint applies only the quantity floor and supply cap; owner
// issuance ignores pause flags, payment, and the per-transaction cap.
func ValidateReserveMint(collection entities.Collection, quantity int64) error {
	if quantity < 1 {
		return domainerrors.ErrInvalidQuantity
	}
	return checkSupply(collection, quantity)
}

// RecordIssuance advances the issuance counter and charges the
// whitelist-priced units against the buyer's quota.
func RecordIssuance(collection *entities.Collection, account *entities.BuyerAccount, quantity int64, whitelistUnits int64) {
	collection.TotalIssued += quantity
	if account != nil && whitelistUnits > 0 {
		account.WhitelistPurchased += whitelistUnits
	}
}

func checkSupply(collection entities.Collection, quantity int64) error {
	if quantity > collection.RemainingSupply() {
		return domainerrors.ErrExceedsSupply
	}
	return nil
}
