// Package kafka relays domain events to an external Kafka topic so other
// services can react to session changes. The relay is just another bus
// subscriber: if it falls behind, the drop-oldest policy applies to it alone.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/eventbus"
)

// Relay forwards bus events to a Kafka topic, keyed by event kind so
// consumers partition by variant.
type Relay struct {
	writer *kafka.Writer
	sub    *eventbus.Subscription
	log    zerolog.Logger
}

// NewRelay subscribes to the bus and starts forwarding. Call Close to stop.
func NewRelay(brokers []string, topic string, bus *eventbus.Bus, log zerolog.Logger) *Relay {
	r := &Relay{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
		sub: bus.Subscribe(),
		log: log.With().Str("component", "kafka_relay").Logger(),
	}
	r.sub.Consume(r.forward)
	return r
}

// envelope is the wire shape published to Kafka.
type envelope struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func (r *Relay) forward(event domain.Event) {
	data, err := json.Marshal(envelope{
		Kind:       event.Kind(),
		OccurredAt: time.Now().UTC(),
		Payload:    event,
	})
	if err != nil {
		r.log.Error().Err(err).Str("event", event.Kind()).Msg("failed to encode event for relay")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Kind()),
		Value: data,
		Time:  time.Now(),
	}); err != nil {
		r.log.Error().Err(err).Str("event", event.Kind()).Msg("failed to relay event to kafka")
	}
}

// Close detaches from the bus and closes the writer.
func (r *Relay) Close() error {
	r.sub.Close()
	return r.writer.Close()
}
