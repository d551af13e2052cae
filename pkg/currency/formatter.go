package currency

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders amount with two decimals and grouped thousands, prefixed by
// the ISO code when code is a known currency.
func Format(amount float64, code string) string {
	rounded := math.Round(amount*100) / 100
	number := printer.Sprintf("%.2f", rounded)

	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return number
	}
	return unit.String() + " " + number
}
