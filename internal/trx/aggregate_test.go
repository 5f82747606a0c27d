package trx

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type priceTable map[string]Product

func (t priceTable) Resolve(_ context.Context, id string) (Resolution, error) {
	p, ok := t[id]
	if !ok {
		return Missing, nil
	}
	return Resolved(p), nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateInvoiceTotals(t *testing.T) {
	t.Parallel()
	widget, gadget := NewID(), NewID()
	table := priceTable{
		widget: {ID: widget, Name: "Widget", Price: dec("100")},
		gadget: {ID: gadget, Name: "Gadget", Price: dec("12.5")},
	}
	inv := Invoice{
		Customer:    "Acme",
		DownPayment: dec("20"),
		Products: []LineItem{
			{ProductID: gadget, Quantity: dec("2")},
			{ProductID: widget, Quantity: dec("3")},
		},
	}

	agg, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(agg.Lines) != 2 {
		t.Fatalf("lines: got=%d want=2", len(agg.Lines))
	}
	// urutan line mengikuti invoice
	if agg.Lines[0].ProductID != gadget || agg.Lines[1].ProductID != widget {
		t.Fatalf("line order not preserved: %+v", agg.Lines)
	}
	if got := agg.Lines[0].TotalPrice; got == nil || !got.Equal(dec("25")) {
		t.Fatalf("gadget total: got=%v want=25", got)
	}
	if got := agg.Lines[1].TotalPrice; got == nil || !got.Equal(dec("300")) {
		t.Fatalf("widget total: got=%v want=300", got)
	}
	if !agg.GrandPrice.Equal(dec("325")) {
		t.Fatalf("grand: got=%s want=325", agg.GrandPrice)
	}
	if !agg.BalanceDue.Equal(dec("305")) {
		t.Fatalf("balance: got=%s want=305", agg.BalanceDue)
	}
	if err := agg.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestAggregateInvoiceRecomputesFromCurrentPrice(t *testing.T) {
	t.Parallel()
	widget := NewID()
	table := priceTable{widget: {ID: widget, Price: dec("100")}}
	inv := Invoice{DownPayment: dec("20"), Products: []LineItem{{ProductID: widget, Quantity: dec("3")}}}

	first, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatal(err)
	}
	again, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatal(err)
	}
	if !first.GrandPrice.Equal(again.GrandPrice) {
		t.Fatalf("same catalog, different totals: %s vs %s", first.GrandPrice, again.GrandPrice)
	}

	table[widget] = Product{ID: widget, Price: dec("150")}
	after, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatal(err)
	}
	if !after.GrandPrice.Equal(dec("450")) || !after.BalanceDue.Equal(dec("430")) {
		t.Fatalf("after price change: grand=%s balance=%s", after.GrandPrice, after.BalanceDue)
	}
	if !first.GrandPrice.Equal(dec("300")) {
		t.Fatalf("earlier aggregate must not change: %s", first.GrandPrice)
	}
}

func TestAggregateInvoiceNegativeBalance(t *testing.T) {
	t.Parallel()
	id := NewID()
	table := priceTable{id: {ID: id, Price: dec("10")}}
	inv := Invoice{DownPayment: dec("50"), Products: []LineItem{{ProductID: id, Quantity: dec("1")}}}

	agg, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatal(err)
	}
	if !agg.BalanceDue.Equal(dec("-40")) {
		t.Fatalf("balance: got=%s want=-40", agg.BalanceDue)
	}
}

func TestAggregateInvoiceMissingProduct(t *testing.T) {
	t.Parallel()
	kept, gone := NewID(), NewID()
	table := priceTable{kept: {ID: kept, Price: dec("5")}}
	inv := Invoice{
		DownPayment: dec("0"),
		Products: []LineItem{
			{ProductID: gone, Quantity: dec("4")},
			{ProductID: kept, Quantity: dec("2")},
		},
	}

	agg, err := AggregateInvoice(context.Background(), inv, table)
	if err != nil {
		t.Fatalf("missing product must not fail aggregation: %v", err)
	}
	if len(agg.Lines) != 2 {
		t.Fatalf("missing line must be kept: %+v", agg.Lines)
	}
	l := agg.Lines[0]
	if !l.Unresolved || l.Price != nil || l.TotalPrice != nil || l.Product != nil {
		t.Fatalf("unresolved line: %+v", l)
	}
	if !agg.GrandPrice.Equal(dec("10")) {
		t.Fatalf("grand: got=%s want=10", agg.GrandPrice)
	}
	if len(agg.Unresolved) != 1 || agg.Unresolved[0] != gone {
		t.Fatalf("unresolved ids: %v", agg.Unresolved)
	}
	if err := agg.Complete(); !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("complete: got=%v want ErrUnresolvedReference", err)
	}
}

func TestAggregateInvoiceResolverError(t *testing.T) {
	t.Parallel()
	boom := errors.New("store down")
	r := ResolverFunc(func(context.Context, string) (Resolution, error) { return Missing, boom })
	inv := Invoice{Products: []LineItem{{ProductID: NewID(), Quantity: dec("1")}}}

	if _, err := AggregateInvoice(context.Background(), inv, r); !errors.Is(err, boom) {
		t.Fatalf("got=%v want wrapped store error", err)
	}
}

func TestAggregateInvoiceEmpty(t *testing.T) {
	t.Parallel()
	agg, err := AggregateInvoice(context.Background(), Invoice{DownPayment: dec("7")}, priceTable{})
	if err != nil {
		t.Fatal(err)
	}
	if !agg.GrandPrice.IsZero() || !agg.BalanceDue.Equal(dec("-7")) || len(agg.Lines) != 0 {
		t.Fatalf("empty invoice: %+v", agg)
	}
}

func TestAggregateAllPreservesOrder(t *testing.T) {
	t.Parallel()
	id := NewID()
	table := priceTable{id: {ID: id, Price: dec("2")}}
	invs := []Invoice{
		{ID: "a", Products: []LineItem{{ProductID: id, Quantity: dec("1")}}},
		{ID: "b", Products: []LineItem{{ProductID: id, Quantity: dec("5")}}},
	}
	aggs, err := AggregateAll(context.Background(), invs, table)
	if err != nil {
		t.Fatal(err)
	}
	if aggs[0].Invoice.ID != "a" || !aggs[1].GrandPrice.Equal(dec("10")) {
		t.Fatalf("aggregates: %+v", aggs)
	}
}
