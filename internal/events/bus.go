package events

import (
	"context"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Event is one change notification before it is wrapped in an Envelope.
type Event struct {
	Topic   string
	Type    string
	ID      string // product / invoice id; dipakai sebagai partition key
	TraceID string
	Payload any
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Bus wraps events in envelope v1 and hands them to the producer of their topic.
// Topic tanpa producer di-drop diam-diam.
type Bus struct {
	Producers map[string]Publisher
	Service   string
	Now       func() time.Time
}

func NewBus(service string) *Bus {
	return &Bus{Producers: map[string]Publisher{}, Service: service}
}

func (b *Bus) Route(topic string, p Publisher) { b.Producers[topic] = p }

func (b *Bus) Emit(_ context.Context, ev Event) {
	p, ok := b.Producers[ev.Topic]
	if !ok {
		return
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	env := Wrap(ev, b.Service, now().UTC())
	p.Publish(trx.PartitionKey(ev.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(ev.Type)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}

func Wrap(ev Event, producer string, at time.Time) trx.Envelope {
	return trx.Envelope{
		EventID:       uuid.NewString(),
		EventType:     ev.Type,
		EventVersion:  1,
		OccurredAt:    at,
		Producer:      producer,
		TraceID:       ev.TraceID,
		CorrelationID: ev.ID,
		Payload:       kafkax.MustMarshal(ev.Payload),
	}
}

// Nop drops every event; used when KAFKA_BROKERS is empty.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
