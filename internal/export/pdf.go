package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/go-pdf/fpdf"
)

// Filename is the attachment name sent with a rendered invoice.
func Filename(invoiceID string) string {
	return fmt.Sprintf("invoice-%s.pdf", invoiceID)
}

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"No", 12, "C"},
	{"Product Name", 70, "L"},
	{"Quantity", 25, "R"},
	{"Price", 37, "R"},
	{"Total Price", 46, "R"},
}

// Renderer lays an aggregated invoice out on A4. No business logic here:
// every number comes from the Aggregate.
type Renderer struct {
	Location *time.Location // zona untuk tanggal; nil = UTC
	Now      func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

// Render returns the PDF bytes. Aggregates with unresolved lines are
// refused with an error wrapping trx.ErrUnresolvedReference.
func (r *Renderer) Render(agg trx.Aggregate) ([]byte, error) {
	if err := agg.Complete(); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", agg.Invoice.ID, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+agg.Invoice.ID, true)
	pdf.SetCreator("trx-api", true)
	if r.Now != nil {
		pdf.SetCreationDate(r.Now())
	}
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	field("Customer", agg.Invoice.Customer)
	field("Tanggal Terima", Date(agg.Invoice.TanggalTerima, r.Location))
	field("Tanggal Selesai", Date(agg.Invoice.TanggalSelesai, r.Location))
	pdf.Ln(5)

	// header tabel
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(242, 242, 242)
	pdf.SetDrawColor(221, 221, 221)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i, l := range agg.Lines {
		cells := []string{
			strconv.Itoa(i + 1),
			tr(l.Product.Name),
			Amount(l.Quantity),
			Rupiah(*l.Price),
			Rupiah(*l.TotalPrice),
		}
		for j, c := range columns {
			pdf.CellFormat(c.width, 7, cells[j], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(5)

	summary := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	summary("Sub Total", Rupiah(agg.GrandPrice))
	summary("DP", Rupiah(agg.Invoice.DownPayment))
	summary("Total", Rupiah(agg.BalanceDue))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", agg.Invoice.ID, err)
	}
	return buf.Bytes(), nil
}
