package httpx

import (
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/shopspring/decimal"
)

// Angka boleh dikirim sebagai number atau numeric string, jadi field-nya any.

type createProductReq struct {
	Name  string `json:"name" validate:"required"`
	Price any    `json:"price" validate:"numeric"`
}

var createProductMsgs = messages{
	"name":  "Name is required",
	"price": "Price must be a number",
}

type updateProductReq struct {
	Name  *string `json:"name" validate:"omitnil,min=1"`
	Price any     `json:"price" validate:"omitnil,numeric"`
}

var updateProductMsgs = messages{
	"name":  "Name cannot be empty",
	"price": "Price must be a number",
}

type lineReq struct {
	ProductID string `json:"productId" validate:"objectid"`
	Quantity  any    `json:"quantity" validate:"numeric,nonneg"`
}

type createInvoiceReq struct {
	Customer       string    `json:"customer" validate:"required"`
	TanggalTerima  *string   `json:"tanggalTerima" validate:"omitnil,iso8601"`
	TanggalSelesai *string   `json:"tanggalSelesai" validate:"omitnil,iso8601"`
	DownPayment    any       `json:"downPayment" validate:"numeric"`
	Products       []lineReq `json:"products" validate:"required,dive"`
}

type updateInvoiceReq struct {
	Customer       *string   `json:"customer" validate:"omitnil,min=1"`
	TanggalTerima  *string   `json:"tanggalTerima" validate:"omitnil,iso8601"`
	TanggalSelesai *string   `json:"tanggalSelesai" validate:"omitnil,iso8601"`
	DownPayment    any       `json:"downPayment" validate:"omitnil,numeric"`
	Products       []lineReq `json:"products" validate:"omitnil,dive"`
}

var invoiceMsgs = messages{
	"customer":       "Customer name is required",
	"tanggalTerima":  "Invalid date format for tanggalTerima",
	"tanggalSelesai": "Invalid date format for tanggalSelesai",
	"downPayment":    "Down payment must be a number",
	"products":       "Products must be an array",
	"productId":      "Invalid product ID",
	"quantity":       "Quantity must be a non-negative number",
}

var updateInvoiceMsgs = func() messages {
	m := messages{"customer": "Customer name cannot be empty"}
	for k, v := range invoiceMsgs {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return m
}()

// Konversi di bawah hanya dipanggil setelah validasi lolos, jadi error
// parse praktis tidak mungkin; tetap dikembalikan supaya tidak diam-diam 0.

func (req createProductReq) product() (trx.Product, error) {
	price, err := decimalOf(req.Price)
	if err != nil {
		return trx.Product{}, err
	}
	return trx.Product{Name: req.Name, Price: price}, nil
}

func (req updateProductReq) patch() (trx.ProductPatch, error) {
	p := trx.ProductPatch{Name: req.Name}
	if req.Price != nil {
		price, err := decimalOf(req.Price)
		if err != nil {
			return p, err
		}
		p.Price = &price
	}
	return p, nil
}

func lineItems(in []lineReq) ([]trx.LineItem, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]trx.LineItem, 0, len(in))
	for _, l := range in {
		q, err := decimalOf(l.Quantity)
		if err != nil {
			return nil, err
		}
		out = append(out, trx.LineItem{ProductID: l.ProductID, Quantity: q})
	}
	return out, nil
}

func optDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (req createInvoiceReq) invoice() (trx.Invoice, error) {
	var (
		inv trx.Invoice
		err error
	)
	inv.Customer = req.Customer
	if inv.TanggalTerima, err = optDate(req.TanggalTerima); err != nil {
		return inv, err
	}
	if inv.TanggalSelesai, err = optDate(req.TanggalSelesai); err != nil {
		return inv, err
	}
	if inv.DownPayment, err = decimalOf(req.DownPayment); err != nil {
		return inv, err
	}
	if inv.Products, err = lineItems(req.Products); err != nil {
		return inv, err
	}
	return inv, nil
}

func (req updateInvoiceReq) patch() (trx.InvoicePatch, error) {
	var (
		p   trx.InvoicePatch
		err error
	)
	p.Customer = req.Customer
	if p.TanggalTerima, err = optDate(req.TanggalTerima); err != nil {
		return p, err
	}
	if p.TanggalSelesai, err = optDate(req.TanggalSelesai); err != nil {
		return p, err
	}
	if req.DownPayment != nil {
		dp, err := decimalOf(req.DownPayment)
		if err != nil {
			return p, err
		}
		p.DownPayment = &dp
	}
	if p.Products, err = lineItems(req.Products); err != nil {
		return p, err
	}
	return p, nil
}

// invoiceView is an invoice with its lines priced at read time.
type invoiceView struct {
	ID             string          `json:"id"`
	Customer       string          `json:"customer"`
	TanggalTerima  *time.Time      `json:"tanggalTerima"`
	TanggalSelesai *time.Time      `json:"tanggalSelesai"`
	DownPayment    decimal.Decimal `json:"downPayment"`
	Products       []trx.Line      `json:"products"`
	GrandPrice     decimal.Decimal `json:"grandPrice"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
	Unresolved     []string        `json:"unresolved"`
	TimeStamp      time.Time       `json:"timeStamp"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func newInvoiceView(a trx.Aggregate) invoiceView {
	unresolved := a.Unresolved
	if unresolved == nil {
		unresolved = []string{}
	}
	return invoiceView{
		ID:             a.Invoice.ID,
		Customer:       a.Invoice.Customer,
		TanggalTerima:  a.Invoice.TanggalTerima,
		TanggalSelesai: a.Invoice.TanggalSelesai,
		DownPayment:    a.Invoice.DownPayment,
		Products:       a.Lines,
		GrandPrice:     a.GrandPrice,
		BalanceDue:     a.BalanceDue,
		Unresolved:     unresolved,
		TimeStamp:      a.Invoice.TimeStamp,
		CreatedAt:      a.Invoice.CreatedAt,
	}
}
