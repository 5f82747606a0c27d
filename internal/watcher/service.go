package watcher

import (
	"context"
	"fmt"

	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/logger"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	kafkago "github.com/segmentio/kafka-go"
)

type InvoiceFinder interface {
	InvoicesReferencing(ctx context.Context, productID string) ([]trx.Invoice, error)
}

// Deduper is satisfied by *redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

// Service watches product changes and reports invoices whose totals moved
// or that now point at a deleted product. Read-only: it never writes.
type Service struct {
	Invoices InvoiceFinder
	Dedup    Deduper // nil = tanpa dedup
	Log      *logger.Logger
}

type Report struct {
	EventID    string
	EventType  string
	ProductID  string
	InvoiceIDs []string
}

// HandleProductChanged: dipasang sebagai handler consumer.
func (s *Service) HandleProductChanged(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnwrapPayload[trx.Envelope](m.Value)
	if err != nil {
		return err
	}
	rep, err := s.Inspect(ctx, env)
	if err != nil || rep == nil {
		return err
	}

	fields := []interface{}{
		"event_id", rep.EventID,
		"product_id", rep.ProductID,
		"invoices", rep.InvoiceIDs,
		"trace_id", env.TraceID,
	}
	if rep.EventType == trx.EventProductDeleted {
		s.Log.Warn("invoices reference a deleted product", fields...)
		return nil
	}
	s.Log.Info("product price change moves invoice totals", fields...)
	return nil
}

// Inspect returns nil when the event needs no report: other event types,
// updates that kept the price, products no invoice uses, or duplicates.
func (s *Service) Inspect(ctx context.Context, env trx.Envelope) (*Report, error) {
	if env.EventType != trx.EventProductDeleted && env.EventType != trx.EventProductUpdated {
		return nil, nil // ignore
	}
	p, err := kafkax.UnwrapPayload[trx.ProductChangedPayload](env.Payload)
	if err != nil {
		return nil, err
	}
	if env.EventType == trx.EventProductUpdated && !p.PriceChanged() {
		return nil, nil
	}

	invs, err := s.Invoices.InvoicesReferencing(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invoices referencing %s: %w", p.ProductID, err)
	}
	if len(invs) == 0 {
		return nil, nil
	}

	// dedup setelah query sukses, supaya redelivery karena error tetap diproses
	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			s.Log.Warn("dedup unavailable", "event_id", env.EventID, "error", err)
		} else if !first {
			return nil, nil
		}
	}

	ids := make([]string, 0, len(invs))
	for _, inv := range invs {
		ids = append(ids, inv.ID)
	}
	return &Report{EventID: env.EventID, EventType: env.EventType, ProductID: p.ProductID, InvoiceIDs: ids}, nil
}
