// Package format renders amounts and dates for terminal output.
package format

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

var printer = message.NewPrinter(language.English)

// Amount renders minor currency units with grouping and the currency's
// standard fraction digits, e.g. Amount(250000, "INR") is "₹2,500.00".
// Codes without a known symbol are prefixed with the code itself.
func Amount(minor int64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	value := float64(minor) / math.Pow10(scale)
	n := printer.Sprint(number.Decimal(value, number.Scale(scale)))

	if sym, ok := symbols[code]; ok {
		if value < 0 {
			return "-" + sym + strings.TrimPrefix(n, "-")
		}
		return sym + n
	}
	if code == "" {
		return n
	}
	return code + " " + n
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
