package errors

import "errors"

var (
	ErrUnauthorized        = errors.New("caller is not the collection owner")
	ErrMintPaused          = errors.New("minting is paused")
	ErrClaimPaused         = errors.New("claim is paused")
	ErrInvalidQuantity     = errors.New("need to mint at least 1 item")
	ErrExceedsPerTxCap     = errors.New("max mint amount per transaction exceeded")
	ErrExceedsSupply       = errors.New("max supply exceeded")
	ErrInsufficientPayment = errors.New("insufficient payment for mint cost")
	ErrNothingToClaim      = errors.New("nothing to claim")
	ErrNothingOwed         = errors.New("nothing owed to beneficiary")

	ErrInvalidInput             = errors.New("drop input is invalid")
	ErrInvalidAddress           = errors.New("address is invalid")
	ErrInvalidAmount            = errors.New("amount must be a non-negative integer")
	ErrCollectionNotFound       = errors.New("collection not found")
	ErrAlreadyInitialized       = errors.New("collection already initialized")
	ErrIdempotencyKeyConflict   = errors.New("idempotency key reused with different request")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
