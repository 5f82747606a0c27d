package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/shopspring/decimal"
)

func TestEncodeLinesNeverNull(t *testing.T) {
	b, err := encodeLines(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Fatalf("got=%s want=[]", b)
	}
}

// Butuh postgres beneran: POSTGRES_TEST_DSN=postgres://... go test ./internal/postgres
func TestRepoRoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	repo := &Repo{DB: db}

	p, err := repo.CreateProduct(ctx, trx.Product{Name: "Widget", Price: decimal.RequireFromString("100.25")})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.DeleteProduct(ctx, p.ID)

	got, err := repo.GetProduct(ctx, p.ID)
	if err != nil || !got.Price.Equal(p.Price) {
		t.Fatalf("get: %+v %v", got, err)
	}

	inv, err := repo.CreateInvoice(ctx, trx.Invoice{
		Customer: "Acme",
		Products: []trx.LineItem{{ProductID: p.ID, Quantity: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.DeleteInvoice(ctx, inv.ID)

	refs, err := repo.InvoicesReferencing(ctx, p.ID)
	if err != nil || len(refs) != 1 || refs[0].ID != inv.ID {
		t.Fatalf("refs: %+v %v", refs, err)
	}

	agg, err := trx.AggregateInvoice(ctx, inv, repo)
	if err != nil {
		t.Fatal(err)
	}
	if !agg.GrandPrice.Equal(decimal.RequireFromString("300.75")) {
		t.Fatalf("grand: %s", agg.GrandPrice)
	}

	if err := repo.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("invoice must survive product deletion: %v", err)
	}
	if err := repo.DeleteProduct(ctx, p.ID); !errors.Is(err, trx.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
