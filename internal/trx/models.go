package trx

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// harga & qty keluar sebagai angka JSON, bukan string
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TimeStamp time.Time       `json:"timeStamp"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LineItem hanya menyimpan referensi + qty. Harga selalu di-resolve saat baca.
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type Invoice struct {
	ID             string          `json:"id"`
	Customer       string          `json:"customer"`
	TanggalTerima  *time.Time      `json:"tanggalTerima,omitempty"`
	TanggalSelesai *time.Time      `json:"tanggalSelesai,omitempty"`
	DownPayment    decimal.Decimal `json:"downPayment"`
	Products       []LineItem      `json:"products"`
	TimeStamp      time.Time       `json:"timeStamp"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ProductPatch: nil field = tidak diubah.
type ProductPatch struct {
	Name  *string
	Price *decimal.Decimal
}

// InvoicePatch: Products non-nil mengganti seluruh line item.
type InvoicePatch struct {
	Customer       *string
	TanggalTerima  *time.Time
	TanggalSelesai *time.Time
	DownPayment    *decimal.Decimal
	Products       []LineItem
}

// Apply mutates p in place and refreshes its TimeStamp.
func (pp ProductPatch) Apply(p *Product, now time.Time) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	p.TimeStamp = now
}

func (ip InvoicePatch) Apply(inv *Invoice, now time.Time) {
	if ip.Customer != nil {
		inv.Customer = *ip.Customer
	}
	if ip.TanggalTerima != nil {
		inv.TanggalTerima = ip.TanggalTerima
	}
	if ip.TanggalSelesai != nil {
		inv.TanggalSelesai = ip.TanggalSelesai
	}
	if ip.DownPayment != nil {
		inv.DownPayment = *ip.DownPayment
	}
	if ip.Products != nil {
		inv.Products = append([]LineItem(nil), ip.Products...)
	}
	inv.TimeStamp = now
}

// References reports whether any line item points at productID.
func (inv Invoice) References(productID string) bool {
	for _, li := range inv.Products {
		if li.ProductID == productID {
			return true
		}
	}
	return false
}
