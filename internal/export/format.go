package export

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idr = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount with Indonesian grouping: 1500 -> "Rp 1.500".
func Rupiah(d decimal.Decimal) string {
	return "Rp " + Amount(d)
}

// Amount is Rupiah without the currency prefix; also used for quantities.
func Amount(d decimal.Decimal) string {
	return idr.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Date renders dd/mm/yyyy in loc, "-" kalau kosong.
func Date(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02/01/2006")
}
