package mongox

import (
	"fmt"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nama collection mengikuti data lama: "product" & "invoices".
const (
	CollProducts = "product"
	CollInvoices = "invoices"
)

type productDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	TimeStamp time.Time            `bson:"timeStamp"`
	CreatedAt time.Time            `bson:"createdAt"`
}

type lineDoc struct {
	ProductID primitive.ObjectID   `bson:"productId"`
	Quantity  primitive.Decimal128 `bson:"quantity"`
}

type invoiceDoc struct {
	ID             primitive.ObjectID   `bson:"_id"`
	Customer       string               `bson:"customer"`
	TanggalTerima  *time.Time           `bson:"tanggalTerima,omitempty"`
	TanggalSelesai *time.Time           `bson:"tanggalSelesai,omitempty"`
	DownPayment    primitive.Decimal128 `bson:"downPayment"`
	Products       []lineDoc            `bson:"products"`
	TimeStamp      time.Time            `bson:"timeStamp"`
	CreatedAt      time.Time            `bson:"createdAt"`
}

func toD128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromD128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}

func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, trx.ErrInvalidID
	}
	return o, nil
}

func newProductDoc(p trx.Product) (productDoc, error) {
	o, err := oid(p.ID)
	if err != nil {
		return productDoc{}, err
	}
	price, err := toD128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{ID: o, Name: p.Name, Price: price, TimeStamp: p.TimeStamp, CreatedAt: p.CreatedAt}, nil
}

func (d productDoc) product() (trx.Product, error) {
	price, err := fromD128(d.Price)
	if err != nil {
		return trx.Product{}, err
	}
	return trx.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     price,
		TimeStamp: d.TimeStamp,
		CreatedAt: d.CreatedAt,
	}, nil
}

func newLineDocs(items []trx.LineItem) ([]lineDoc, error) {
	out := make([]lineDoc, 0, len(items))
	for _, li := range items {
		o, err := oid(li.ProductID)
		if err != nil {
			return nil, err
		}
		q, err := toD128(li.Quantity)
		if err != nil {
			return nil, err
		}
		out = append(out, lineDoc{ProductID: o, Quantity: q})
	}
	return out, nil
}

func newInvoiceDoc(inv trx.Invoice) (invoiceDoc, error) {
	o, err := oid(inv.ID)
	if err != nil {
		return invoiceDoc{}, err
	}
	dp, err := toD128(inv.DownPayment)
	if err != nil {
		return invoiceDoc{}, err
	}
	lines, err := newLineDocs(inv.Products)
	if err != nil {
		return invoiceDoc{}, err
	}
	return invoiceDoc{
		ID:             o,
		Customer:       inv.Customer,
		TanggalTerima:  inv.TanggalTerima,
		TanggalSelesai: inv.TanggalSelesai,
		DownPayment:    dp,
		Products:       lines,
		TimeStamp:      inv.TimeStamp,
		CreatedAt:      inv.CreatedAt,
	}, nil
}

func (d invoiceDoc) invoice() (trx.Invoice, error) {
	dp, err := fromD128(d.DownPayment)
	if err != nil {
		return trx.Invoice{}, err
	}
	items := make([]trx.LineItem, 0, len(d.Products))
	for _, l := range d.Products {
		q, err := fromD128(l.Quantity)
		if err != nil {
			return trx.Invoice{}, err
		}
		items = append(items, trx.LineItem{ProductID: l.ProductID.Hex(), Quantity: q})
	}
	return trx.Invoice{
		ID:             d.ID.Hex(),
		Customer:       d.Customer,
		TanggalTerima:  d.TanggalTerima,
		TanggalSelesai: d.TanggalSelesai,
		DownPayment:    dp,
		Products:       items,
		TimeStamp:      d.TimeStamp,
		CreatedAt:      d.CreatedAt,
	}, nil
}
