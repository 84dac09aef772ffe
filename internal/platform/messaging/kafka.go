package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mintworks/contexts/issuance/drop-service/ports"
)

const subscriberBuffer = 128

var ErrBusClosed = errors.New("event bus closed")

type subscription struct {
	group string
	ch    chan ports.EventEnvelope
}

// Kafka is the event bus the outbox relay publishes drop events to. Topics are
// event types. Delivery is in-process fan-out; a full subscriber buffer drops
// the event for that subscriber only.
type Kafka struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]subscription
	closed      bool
	logger      *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}, nil
}

func (k *Kafka) Brokers() []string {
	return append([]string(nil), k.brokers...)
}

func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrBusClosed
	}

	for _, sub := range k.subscribers[topic] {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
		default:
			k.logger.Warn("dropping event for slow subscriber",
				"event", "kafka_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	k.logger.Info("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}

// Subscribe delivers events on topic to handler until ctx is cancelled.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	sub := subscription{group: consumerGroup, ch: make(chan ports.EventEnvelope, subscriberBuffer)}

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return ErrBusClosed
	}
	k.subscribers[topic] = append(k.subscribers[topic], sub)
	k.mu.Unlock()

	go func() {
		defer k.removeSubscriber(topic, sub.ch)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.ch:
				if !ok {
					return
				}
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Close stops every subscriber and rejects further publishes.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	for topic, subs := range k.subscribers {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(k.subscribers, topic)
	}
	return nil
}

func (k *Kafka) removeSubscriber(topic string, target chan ports.EventEnvelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]subscription, 0, len(items))
	for _, item := range items {
		if item.ch != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
