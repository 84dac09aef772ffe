package queries

import (
	"context"

	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"
)

type WalletQuery struct {
	Owner string
}

type WalletResult struct {
	Owner    entities.Address   `json:"owner"`
	Balance  int64              `json:"balance"`
	TokenIDs []entities.TokenID `json:"token_ids"`
}

// WalletOfOwnerUseCase lists the titles an address holds in ascending id order.
type WalletOfOwnerUseCase struct {
	Titles ports.TitleReader
}

func (u WalletOfOwnerUseCase) Execute(ctx context.Context, query WalletQuery) (WalletResult, error) {
	owner, err := entities.ParseAddress(query.Owner)
	if err != nil {
		return WalletResult{}, err
	}
	tokenIDs, err := u.Titles.HoldingsOf(ctx, owner)
	if err != nil {
		return WalletResult{}, err
	}
	return WalletResult{
		Owner:    owner,
		Balance:  int64(len(tokenIDs)),
		TokenIDs: tokenIDs,
	}, nil
}
