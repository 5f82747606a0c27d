package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/events"
	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/logger"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type seenSet map[string]bool

func (s seenSet) FirstSeen(_ context.Context, id string) (bool, error) {
	if s[id] {
		return false, nil
	}
	s[id] = true
	return true, nil
}

type brokenFinder struct{}

func (brokenFinder) InvoicesReferencing(context.Context, string) ([]trx.Invoice, error) {
	return nil, errors.New("store down")
}

// seed returns a store with a referenced product, an unused one and one invoice.
func seed(t *testing.T) (*trx.MemStore, trx.Product, trx.Product, trx.Invoice) {
	t.Helper()
	ctx := context.Background()
	s := trx.NewMemStore()
	p, err := s.CreateProduct(ctx, trx.Product{Name: "Widget", Price: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatal(err)
	}
	unused, err := s.CreateProduct(ctx, trx.Product{Name: "Unused", Price: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := s.CreateInvoice(ctx, trx.Invoice{
		Customer: "Acme",
		Products: []trx.LineItem{{ProductID: p.ID, Quantity: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s, p, unused, inv
}

func envelope(typ string, p trx.ProductChangedPayload) trx.Envelope {
	return events.Wrap(events.Event{Type: typ, ID: p.ProductID, Payload: p}, "trx-api", time.Now())
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestInspect(t *testing.T) {
	t.Parallel()

	store, widget, unused, inv := seed(t)

	cases := []struct {
		name   string
		env    trx.Envelope
		report bool
	}{
		{"deleted and referenced", envelope(trx.EventProductDeleted, trx.ProductChangedPayload{ProductID: widget.ID}), true},
		{"price changed", envelope(trx.EventProductUpdated, trx.ProductChangedPayload{ProductID: widget.ID, Price: price(150), OldPrice: price(100)}), true},
		{"price unchanged", envelope(trx.EventProductUpdated, trx.ProductChangedPayload{ProductID: widget.ID, Name: "Renamed", Price: price(100), OldPrice: price(100)}), false},
		{"name only", envelope(trx.EventProductUpdated, trx.ProductChangedPayload{ProductID: widget.ID, Name: "Renamed"}), false},
		{"not referenced", envelope(trx.EventProductDeleted, trx.ProductChangedPayload{ProductID: unused.ID}), false},
		{"created ignored", envelope(trx.EventProductCreated, trx.ProductChangedPayload{ProductID: widget.ID}), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &Service{Invoices: store, Dedup: seenSet{}, Log: logger.Nop()}
			rep, err := svc.Inspect(context.Background(), tc.env)
			if err != nil {
				t.Fatalf("inspect: %v", err)
			}
			if (rep != nil) != tc.report {
				t.Fatalf("report = %+v, want report=%v", rep, tc.report)
			}
			if rep != nil && (len(rep.InvoiceIDs) != 1 || rep.InvoiceIDs[0] != inv.ID) {
				t.Fatalf("invoice ids = %v, want [%s]", rep.InvoiceIDs, inv.ID)
			}
		})
	}
}

func TestInspectDedup(t *testing.T) {
	t.Parallel()

	store, widget, _, _ := seed(t)
	svc := &Service{Invoices: store, Dedup: seenSet{}, Log: logger.Nop()}
	env := envelope(trx.EventProductDeleted, trx.ProductChangedPayload{ProductID: widget.ID})

	if rep, _ := svc.Inspect(context.Background(), env); rep == nil {
		t.Fatal("first delivery not reported")
	}
	if rep, _ := svc.Inspect(context.Background(), env); rep != nil {
		t.Fatalf("duplicate delivery reported: %+v", rep)
	}
}

func TestStoreErrorSkipsDedup(t *testing.T) {
	t.Parallel()

	seen := seenSet{}
	svc := &Service{Invoices: brokenFinder{}, Dedup: seen, Log: logger.Nop()}
	env := envelope(trx.EventProductDeleted, trx.ProductChangedPayload{ProductID: "65f000000000000000000001"})

	if _, err := svc.Inspect(context.Background(), env); err == nil {
		t.Fatal("expected store error")
	}
	if seen[env.EventID] {
		t.Fatal("event marked as seen although the lookup failed")
	}
}

func TestHandleProductChanged(t *testing.T) {
	t.Parallel()

	store, widget, _, _ := seed(t)
	svc := &Service{Invoices: store, Log: logger.Nop()}
	env := envelope(trx.EventProductDeleted, trx.ProductChangedPayload{ProductID: widget.ID})

	if err := svc.HandleProductChanged(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := svc.HandleProductChanged(context.Background(), kafkago.Message{Value: []byte("not json")}); err == nil {
		t.Fatal("expected decode error")
	}
}
