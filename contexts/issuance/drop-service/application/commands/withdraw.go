package commands

import (
	"context"
	"log/slog"
	"time"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
	"mintworks/contexts/issuance/drop-service/ports"
	contractsv1 "mintworks/contracts/gen/events/v1"

	"go.opentelemetry.io/otel/attribute"
)

type WithdrawCommand struct {
	Caller string
}

type WithdrawPaymentsCommand struct {
	Beneficiary string
}

type WithdrawResult struct {
	Beneficiary entities.Address `json:"beneficiary"`
	Amount      entities.Amount  `json:"amount"`
}

// WithdrawUseCase pays the collection's residual balance to the residual
// recipient. The owner or the recipient may trigger it.
type WithdrawUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Funds       ports.FundsTransferer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u WithdrawUseCase) Execute(ctx context.Context, cmd WithdrawCommand) (_ WithdrawResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.withdraw", attribute.String("caller", cmd.Caller))
	defer func() { application.EndSpan(span, err) }()

	caller := parseCaller(cmd.Caller)
	return payout{
		unitOfWork:  u.UnitOfWork,
		funds:       u.Funds,
		clock:       u.Clock,
		idGenerator: u.IDGenerator,
		logger:      application.ResolveLogger(u.Logger),
		residual:    true,
		take: func(collection *entities.Collection) (entities.Address, entities.Amount, error) {
			if !collection.IsOwner(caller) && caller != collection.Beneficiaries.Residual {
				return "", entities.Amount{}, domainerrors.ErrUnauthorized
			}
			amount, err := collection.Ledger.TakeResidual()
			return collection.Beneficiaries.Residual, amount, err
		},
		restore: func(collection *entities.Collection, _ entities.Address, amount entities.Amount) {
			collection.Ledger.Residual = collection.Ledger.Residual.Add(amount)
		},
	}.run(ctx)
}

// WithdrawPaymentsUseCase pays a beneficiary's escrowed balance. Anyone may
// trigger it; funds only ever go to the beneficiary.
type WithdrawPaymentsUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Funds       ports.FundsTransferer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u WithdrawPaymentsUseCase) Execute(ctx context.Context, cmd WithdrawPaymentsCommand) (_ WithdrawResult, err error) {
	ctx, span := application.StartSpan(ctx, "drop.withdraw_payments", attribute.String("beneficiary", cmd.Beneficiary))
	defer func() { application.EndSpan(span, err) }()

	beneficiary, err := entities.ParseAddress(cmd.Beneficiary)
	if err != nil {
		return WithdrawResult{}, err
	}
	return payout{
		unitOfWork:  u.UnitOfWork,
		funds:       u.Funds,
		clock:       u.Clock,
		idGenerator: u.IDGenerator,
		logger:      application.ResolveLogger(u.Logger),
		take: func(collection *entities.Collection) (entities.Address, entities.Amount, error) {
			amount, err := collection.Ledger.TakePending(beneficiary)
			return beneficiary, amount, err
		},
		restore: func(collection *entities.Collection, to entities.Address, amount entities.Amount) {
			collection.Ledger.Credit(to, amount)
		},
	}.run(ctx)
}

// payout zeroes an owed balance and commits before calling the funds
// transferer. A failed transfer is re-credited in a second unit of work.
type payout struct {
	unitOfWork  ports.UnitOfWork
	funds       ports.FundsTransferer
	clock       ports.Clock
	idGenerator ports.IDGenerator
	logger      *slog.Logger
	residual    bool
	take        func(collection *entities.Collection) (entities.Address, entities.Amount, error)
	restore     func(collection *entities.Collection, to entities.Address, amount entities.Amount)
}

func (p payout) run(ctx context.Context) (WithdrawResult, error) {
	var result WithdrawResult
	err := p.unitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		to, amount, err := p.take(&collection)
		if err != nil {
			return err
		}
		now := resolveNow(p.clock)
		touch(&collection, now)
		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}
		if err := p.appendEvent(ctx, tx, contractsv1.EventTypeDropWithdrawn, collection.CollectionID, to, amount, "", now); err != nil {
			return err
		}
		result = WithdrawResult{Beneficiary: to, Amount: amount}
		return nil
	})
	if err != nil {
		logRejection(p.logger, "drop_withdraw_rejected", err, "residual", p.residual)
		return WithdrawResult{}, err
	}

	if err := p.funds.Transfer(ctx, result.Beneficiary, result.Amount); err != nil {
		p.logger.Error("withdrawal transfer failed",
			"event", "drop_withdraw_transfer_failed",
			"module", application.ModuleName,
			"layer", "application",
			"beneficiary", result.Beneficiary.String(),
			"amount", result.Amount.String(),
			"error", err.Error(),
		)
		if restoreErr := p.compensate(ctx, result, err); restoreErr != nil {
			p.logger.Error("withdrawal compensation failed",
				"event", "drop_withdraw_compensation_failed",
				"module", application.ModuleName,
				"layer", "application",
				"beneficiary", result.Beneficiary.String(),
				"amount", result.Amount.String(),
				"error", restoreErr.Error(),
			)
		}
		return WithdrawResult{}, err
	}

	p.logger.Info("withdrawal completed",
		"event", "drop_withdraw_completed",
		"module", application.ModuleName,
		"layer", "application",
		"beneficiary", result.Beneficiary.String(),
		"amount", result.Amount.String(),
		"residual", p.residual,
	)
	return result, nil
}

func (p payout) compensate(ctx context.Context, result WithdrawResult, cause error) error {
	return p.unitOfWork.WithinTransaction(ctx, func(ctx context.Context, tx ports.Tx) error {
		collection, err := tx.Collection(ctx)
		if err != nil {
			return err
		}
		p.restore(&collection, result.Beneficiary, result.Amount)
		now := resolveNow(p.clock)
		touch(&collection, now)
		if err := tx.SaveCollection(ctx, collection); err != nil {
			return err
		}
		return p.appendEvent(ctx, tx, contractsv1.EventTypeDropWithdrawalReverted, collection.CollectionID,
			result.Beneficiary, result.Amount, cause.Error(), now)
	})
}

func (p payout) appendEvent(
	ctx context.Context,
	tx ports.Tx,
	eventType string,
	collectionID string,
	to entities.Address,
	amount entities.Amount,
	reason string,
	now time.Time,
) error {
	envelope, err := buildEnvelope(ctx, p.idGenerator, eventType, collectionID, now, ports.WithdrawalEvent{
		CollectionID: collectionID,
		Beneficiary:  to.String(),
		Amount:       amount.String(),
		Residual:     p.residual,
		Reason:       reason,
		OccurredAt:   now,
	})
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}
