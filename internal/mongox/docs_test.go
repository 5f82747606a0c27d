package mongox

import (
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInvoiceDocRoundTrip(t *testing.T) {
	terima := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := trx.Invoice{
		ID:            trx.NewID(),
		Customer:      "Acme",
		TanggalTerima: &terima,
		DownPayment:   decimal.RequireFromString("20.5"),
		Products: []trx.LineItem{
			{ProductID: trx.NewID(), Quantity: decimal.RequireFromString("1.25")},
		},
		CreatedAt: terima,
		TimeStamp: terima,
	}
	doc, err := newInvoiceDoc(inv)
	if err != nil {
		t.Fatal(err)
	}
	// lewat bson beneran, bukan cuma struct
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back invoiceDoc
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	got, err := back.invoice()
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != inv.ID || got.Customer != "Acme" || got.TanggalSelesai != nil {
		t.Fatalf("invoice: %+v", got)
	}
	if !got.DownPayment.Equal(inv.DownPayment) || !got.Products[0].Quantity.Equal(inv.Products[0].Quantity) {
		t.Fatalf("decimals: %+v", got)
	}
	if got.Products[0].ProductID != inv.Products[0].ProductID {
		t.Fatalf("product id: %s", got.Products[0].ProductID)
	}
}

func TestNewLineDocsRejectsBadID(t *testing.T) {
	_, err := newLineDocs([]trx.LineItem{{ProductID: "not-an-id", Quantity: decimal.NewFromInt(1)}})
	if !errors.Is(err, trx.ErrInvalidID) {
		t.Fatalf("got=%v want ErrInvalidID", err)
	}
}

func TestInvoiceSetReplacesProductsWholesale(t *testing.T) {
	now := time.Now().UTC()
	set, err := invoiceSet(trx.InvoicePatch{Products: []trx.LineItem{}}, now)
	if err != nil {
		t.Fatal(err)
	}
	lines, ok := set["products"].([]lineDoc)
	if !ok || len(lines) != 0 {
		t.Fatalf("products: %#v", set["products"])
	}
	if _, ok := set["customer"]; ok {
		t.Fatal("untouched fields must not be set")
	}

	set, _ = invoiceSet(trx.InvoicePatch{}, now)
	if _, ok := set["products"]; ok {
		t.Fatal("nil products must leave line items alone")
	}
}

func TestFromD128Exponent(t *testing.T) {
	v, err := primitive.ParseDecimal128("1.5E+3")
	if err != nil {
		t.Fatal(err)
	}
	d, err := fromD128(v)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("got=%s", d)
	}
}
