package trx

import (
	"context"
	"errors"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	// ListProducts returns products ordered by CreatedAt ascending.
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	// ListInvoices returns invoices ordered by CreatedAt ascending.
	ListInvoices(ctx context.Context) ([]Invoice, error)
	GetInvoice(ctx context.Context, id string) (Invoice, error)
	UpdateInvoice(ctx context.Context, id string, patch InvoicePatch) (Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	InvoicesReferencing(ctx context.Context, productID string) ([]Invoice, error)
}

// Store is what the API layer needs: both collections plus price
// resolution backed by the product collection.
type Store interface {
	ProductStore
	InvoiceStore
	Resolver
}

// ProductResolver adapts a ProductStore to the Resolver contract:
// ErrNotFound becomes Missing, any other error is returned as-is.
func ProductResolver(ps ProductStore) Resolver {
	return ResolverFunc(func(ctx context.Context, productID string) (Resolution, error) {
		p, err := ps.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Missing, nil
			}
			return Missing, err
		}
		return Resolved(p), nil
	})
}
