package trx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
	EventInvoiceCreated = "InvoiceCreated"
	EventInvoiceUpdated = "InvoiceUpdated"
	EventInvoiceDeleted = "InvoiceDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "trx-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product/invoice id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type ProductChangedPayload struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	// OldPrice diisi hanya untuk ProductUpdated
	OldPrice *decimal.Decimal `json:"old_price,omitempty"`
}

type InvoiceChangedPayload struct {
	InvoiceID  string   `json:"invoice_id"`
	Customer   string   `json:"customer,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`
}

// PriceChanged reports whether an update event moved the price.
func (p ProductChangedPayload) PriceChanged() bool {
	if p.Price == nil || p.OldPrice == nil {
		return false
	}
	return !p.Price.Equal(*p.OldPrice)
}

func ProductIDs(inv Invoice) []string {
	out := make([]string, 0, len(inv.Products))
	for _, li := range inv.Products {
		out = append(out, li.ProductID)
	}
	return out
}
