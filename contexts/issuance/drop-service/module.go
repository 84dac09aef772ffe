package dropservice

import (
	"log/slog"
	"time"

	httpadapter "mintworks/contexts/issuance/drop-service/adapters/http"
	"mintworks/contexts/issuance/drop-service/adapters/memory"
	"mintworks/contexts/issuance/drop-service/application/commands"
	"mintworks/contexts/issuance/drop-service/application/queries"
	"mintworks/contexts/issuance/drop-service/application/workers"
	"mintworks/contexts/issuance/drop-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Initialize commands.InitializeUseCase
	Relay      workers.OutboxRelay
	Store      *memory.Store
	// Predecessor and Members are set only by NewInMemoryModule.
	Predecessor *memory.Holdings
	Members     *memory.Holdings
	Vault       *memory.Vault
}

type Dependencies struct {
	UnitOfWork     ports.UnitOfWork
	Initializer    ports.CollectionInitializer
	Collections    ports.CollectionReader
	Titles         ports.TitleReader
	Predecessor    ports.PredecessorHoldings
	Membership     ports.MembershipRegistry
	Funds          ports.FundsTransferer
	Outbox         ports.OutboxRepository
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	OutboxBatch    int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Mint: commands.MintUseCase{
				UnitOfWork:     deps.UnitOfWork,
				Membership:     deps.Membership,
				Clock:          deps.Clock,
				IDGenerator:    deps.IDGenerator,
				IdempotencyTTL: deps.IdempotencyTTL,
				Logger:         deps.Logger,
			},
			ReserveMint: commands.ReserveMintUseCase{
				UnitOfWork:  deps.UnitOfWork,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			Claim: commands.ClaimUseCase{
				UnitOfWork:  deps.UnitOfWork,
				Predecessor: deps.Predecessor,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			Withdraw: commands.WithdrawUseCase{
				UnitOfWork:  deps.UnitOfWork,
				Funds:       deps.Funds,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			WithdrawPayments: commands.WithdrawPaymentsUseCase{
				UnitOfWork:  deps.UnitOfWork,
				Funds:       deps.Funds,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			Admin: commands.AdminUseCase{
				UnitOfWork:  deps.UnitOfWork,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			MintCost: queries.MintCostUseCase{
				Collections: deps.Collections,
				Membership:  deps.Membership,
				Logger:      deps.Logger,
			},
			IsMember:     queries.IsMemberUseCase{Membership: deps.Membership},
			Wallet:       queries.WalletOfOwnerUseCase{Titles: deps.Titles},
			Collection:   queries.GetCollectionUseCase{Collections: deps.Collections, Titles: deps.Titles},
			Pending:      queries.PendingBalanceUseCase{Collections: deps.Collections},
			BuyerAccount: queries.GetBuyerAccountUseCase{Collections: deps.Collections},
			Logger:       deps.Logger,
		},
		Initialize: commands.InitializeUseCase{
			Collections: deps.Initializer,
			Clock:       deps.Clock,
			Logger:      deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatch,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to process-local fakes.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	predecessor := memory.NewHoldings()
	membership := memory.NewHoldings()
	vault := memory.NewVault()
	module := NewModule(Dependencies{
		UnitOfWork:     store,
		Initializer:    store,
		Collections:    store,
		Titles:         store,
		Predecessor:    predecessor,
		Membership:     membership,
		Funds:          vault,
		Outbox:         store,
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		OutboxBatch:    100,
		Logger:         logger,
	})
	module.Store = store
	module.Predecessor = predecessor
	module.Members = membership
	module.Vault = vault
	return module
}
