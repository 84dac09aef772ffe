package workers_test

import (
	"context"
	"errors"
	"testing"

	"mintworks/contexts/issuance/drop-service/adapters/memory"
	"mintworks/contexts/issuance/drop-service/application/workers"
	"mintworks/contexts/issuance/drop-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEvents(t *testing.T, store *memory.Store, events ...ports.EventEnvelope) {
	t.Helper()
	for _, event := range events {
		envelope := event
		require.NoError(t, store.WithinTransaction(context.Background(), func(ctx context.Context, tx ports.Tx) error {
			return tx.AppendOutbox(ctx, envelope)
		}))
	}
}

func TestOutboxRelayPublishesInOrderAndMarksSent(t *testing.T) {
	store := memory.NewStore()
	appendEvents(t, store,
		ports.EventEnvelope{EventID: "evt-1", EventType: "drop.minted", PartitionKey: "fighters-v2"},
		ports.EventEnvelope{EventID: "evt-2", EventType: "drop.settled", PartitionKey: "fighters-v2"},
	)
	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, []string{"drop.minted", "drop.settled"}, publisher.topics)
	assert.Equal(t, "evt-1", publisher.events[0].EventID)

	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestOutboxRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	appendEvents(t, store,
		ports.EventEnvelope{EventID: "evt-1", EventType: "drop.minted"},
		ports.EventEnvelope{EventID: "evt-2", EventType: "drop.withdrawn"},
		ports.EventEnvelope{EventID: "evt-3", EventType: "drop.minted"},
	)
	publisher := &recordingPublisher{failOn: "drop.withdrawn"}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}

	published, err := relay.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, published)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-2", pending[0].OutboxID)
}
