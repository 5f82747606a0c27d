package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type captured struct {
	key     string
	value   []byte
	headers []kafkago.Header
}

type recorder struct{ msgs []captured }

func (r *recorder) Publish(key, value []byte, headers ...kafkago.Header) {
	r.msgs = append(r.msgs, captured{key: string(key), value: value, headers: headers})
}

func TestBusEmitWrapsEnvelope(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBus("trx-api")
	b.Now = func() time.Time { return at }
	b.Route(trx.TopicProductChanged, rec)

	price := decimal.NewFromInt(450)
	old := decimal.NewFromInt(300)
	b.Emit(context.Background(), Event{
		Topic:   trx.TopicProductChanged,
		Type:    trx.EventProductUpdated,
		ID:      "65f000000000000000000001",
		TraceID: "req-1",
		Payload: trx.ProductChangedPayload{ProductID: "65f000000000000000000001", Price: &price, OldPrice: &old},
	})
	// no producer for invoices: dropped
	b.Emit(context.Background(), Event{Topic: trx.TopicInvoiceChanged, Type: trx.EventInvoiceCreated, ID: "x"})

	if len(rec.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(rec.msgs))
	}
	m := rec.msgs[0]
	if m.key != "65f000000000000000000001" {
		t.Fatalf("key = %q", m.key)
	}
	if len(m.headers) != 2 || string(m.headers[0].Value) != trx.EventProductUpdated || string(m.headers[1].Value) != "1" {
		t.Fatalf("headers = %+v", m.headers)
	}

	var env trx.Envelope
	if err := json.Unmarshal(m.value, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.EventID == "" || env.Producer != "trx-api" || env.TraceID != "req-1" || !env.OccurredAt.Equal(at) {
		t.Fatalf("unexpected envelope %+v", env)
	}
	p, err := kafkax.UnwrapPayload[trx.ProductChangedPayload](env.Payload)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !p.PriceChanged() {
		t.Fatalf("expected price change in %+v", p)
	}
}

func TestWrapGeneratesDistinctIDs(t *testing.T) {
	t.Parallel()

	ev := Event{Type: trx.EventInvoiceDeleted, ID: "inv"}
	a := Wrap(ev, "svc", time.Now())
	b := Wrap(ev, "svc", time.Now())
	if a.EventID == b.EventID {
		t.Fatalf("event ids collide: %s", a.EventID)
	}
	if a.CorrelationID != "inv" || a.EventVersion != 1 {
		t.Fatalf("unexpected envelope %+v", a)
	}
}
