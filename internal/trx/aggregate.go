package trx

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Resolution is the outcome of looking up a line item's product:
// either Resolved(product) or Missing.
type Resolution struct {
	product *Product
}

var Missing = Resolution{}

func Resolved(p Product) Resolution { return Resolution{product: &p} }

// Product returns the resolved product and false when the reference is missing.
func (r Resolution) Product() (Product, bool) {
	if r.product == nil {
		return Product{}, false
	}
	return *r.product, true
}

// Resolver looks up the current catalog entry for a product id.
// An error means the lookup itself failed (store down), not that the
// product is gone; a gone product is reported as Missing.
type Resolver interface {
	Resolve(ctx context.Context, productID string) (Resolution, error)
}

type ResolverFunc func(ctx context.Context, productID string) (Resolution, error)

func (f ResolverFunc) Resolve(ctx context.Context, productID string) (Resolution, error) {
	return f(ctx, productID)
}

// Line is one line item priced against the catalog at aggregation time.
// Product, Price and TotalPrice are nil when the reference is unresolved.
type Line struct {
	ProductID  string           `json:"productId"`
	Product    *Product         `json:"product"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Price      *decimal.Decimal `json:"price"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	Unresolved bool             `json:"unresolved"`
}

type Aggregate struct {
	Invoice    Invoice
	Lines      []Line
	GrandPrice decimal.Decimal
	BalanceDue decimal.Decimal
	// Unresolved lists product ids (in line order) that did not resolve.
	Unresolved []string
}

// Aggregate prices every line of inv against r, in line order, one lookup
// per line. Nothing is cached or written back: two calls may disagree if
// the catalog changed in between.
//
// Missing products keep their line, are flagged Unresolved and add zero to
// GrandPrice. Use Complete when a fully priced invoice is required.
func AggregateInvoice(ctx context.Context, inv Invoice, r Resolver) (Aggregate, error) {
	agg := Aggregate{
		Invoice:    inv,
		Lines:      make([]Line, 0, len(inv.Products)),
		GrandPrice: decimal.Zero,
	}
	for _, li := range inv.Products {
		res, err := r.Resolve(ctx, li.ProductID)
		if err != nil {
			return Aggregate{}, fmt.Errorf("resolve product %s: %w", li.ProductID, err)
		}
		line := Line{ProductID: li.ProductID, Quantity: li.Quantity}
		p, ok := res.Product()
		if !ok {
			line.Unresolved = true
			agg.Unresolved = append(agg.Unresolved, li.ProductID)
			agg.Lines = append(agg.Lines, line)
			continue
		}
		price := p.Price
		total := price.Mul(li.Quantity)
		line.Product = &p
		line.Price = &price
		line.TotalPrice = &total
		agg.GrandPrice = agg.GrandPrice.Add(total)
		agg.Lines = append(agg.Lines, line)
	}
	agg.BalanceDue = agg.GrandPrice.Sub(inv.DownPayment)
	return agg, nil
}

// Complete returns ErrUnresolvedReference when any line lost its product.
func (a Aggregate) Complete() error {
	if len(a.Unresolved) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnresolvedReference, strings.Join(a.Unresolved, ","))
}

// AggregateAll aggregates each invoice independently, preserving order.
func AggregateAll(ctx context.Context, invs []Invoice, r Resolver) ([]Aggregate, error) {
	out := make([]Aggregate, 0, len(invs))
	for _, inv := range invs {
		a, err := AggregateInvoice(ctx, inv, r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
