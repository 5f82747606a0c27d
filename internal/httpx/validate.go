package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// messages maps a json field name to the message shown when it fails.
type messages map[string]string

func (m messages) lookup(field string) string {
	if msg, ok := m[field]; ok {
		return msg
	}
	return "Invalid value"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return trx.ValidID(fl.Field().String())
	})
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("nonneg", func(fl validator.FieldLevel) bool {
		d, err := decimalOf(fl.Field().Interface())
		return err == nil && !d.IsNegative()
	})
	return v
}

func validationErrors(err error, msgs messages) []fieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []fieldError{{Message: err.Error()}}
	}
	out := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		// namespace = "createInvoiceReq.products[0].productId"; buang nama struct
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, fieldError{Field: field, Message: msgs.lookup(fe.Field())})
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate accepts the ISO-8601 shapes clients actually send.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// decimalOf converts a decoded JSON number or numeric string.
func decimalOf(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(strings.TrimPrefix(n.String(), "+"))
	case string:
		return decimal.NewFromString(strings.TrimPrefix(n, "+"))
	case float64:
		return decimal.NewFromFloat(n), nil
	}
	return decimal.Zero, fmt.Errorf("not a number: %T", v)
}
