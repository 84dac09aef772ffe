package commands

import (
	"context"
	"log/slog"

	application "mintworks/contexts/issuance/drop-service/application"
	"mintworks/contexts/issuance/drop-service/domain/entities"
	"mintworks/contexts/issuance/drop-service/ports"

	"go.opentelemetry.io/otel/attribute"
)

type InitializeCommand struct {
	Definition entities.CollectionDefinition
}

// InitializeUseCase creates the collection aggregate from its deployment
// definition. A second call fails with ErrAlreadyInitialized.
type InitializeUseCase struct {
	Collections ports.CollectionInitializer
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (u InitializeUseCase) Execute(ctx context.Context, cmd InitializeCommand) (_ entities.Collection, err error) {
	ctx, span := application.StartSpan(ctx, "drop.initialize",
		attribute.String("collection_id", cmd.Definition.CollectionID),
	)
	defer func() { application.EndSpan(span, err) }()

	logger := application.ResolveLogger(u.Logger)
	collection, err := entities.NewCollection(cmd.Definition, resolveNow(u.Clock))
	if err != nil {
		logger.Warn("collection definition rejected",
			"event", "drop_initialize_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"collection_id", cmd.Definition.CollectionID,
			"error", err.Error(),
		)
		return entities.Collection{}, err
	}
	if err := u.Collections.CreateCollection(ctx, collection); err != nil {
		logger.Error("collection create failed",
			"event", "drop_initialize_failed",
			"module", application.ModuleName,
			"layer", "application",
			"collection_id", collection.CollectionID,
			"error", err.Error(),
		)
		return entities.Collection{}, err
	}

	logger.Info("collection initialized",
		"event", "drop_initialized",
		"module", application.ModuleName,
		"layer", "application",
		"collection_id", collection.CollectionID,
		"max_supply", collection.MaxSupply,
		"owner", collection.Owner.String(),
	)
	return collection, nil
}
