package timeline

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// AmountFormatter renders a payment amount for event descriptions. It must be
// deterministic for a given value.
type AmountFormatter func(decimal.Decimal) string

// DefaultAmountFormatter groups thousands the Russian way and appends a rouble sign.
var DefaultAmountFormatter = mustAmountFormatter("ru", "₽")

// NewAmountFormatter builds a formatter that groups thousands per locale and
// appends suffix, if any. At most two fraction digits are printed.
func NewAmountFormatter(locale, suffix string) (AmountFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid currency locale %q: %w", locale, err)
	}
	printer := message.NewPrinter(tag)
	suffix = strings.TrimSpace(suffix)

	return func(v decimal.Decimal) string {
		s := printer.Sprint(number.Decimal(v.Round(2).String(), number.MaxFractionDigits(2)))
		if suffix == "" {
			return s
		}
		return s + " " + suffix
	}, nil
}

func mustAmountFormatter(locale, suffix string) AmountFormatter {
	f, err := NewAmountFormatter(locale, suffix)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseAmount reads a raw numeric amount. Blank or non-numeric input is not an amount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
