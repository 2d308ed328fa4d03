// Package format renders amounts the way the Turkish UI shows them.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₺"

var printer = message.NewPrinter(language.Turkish)

// Currency rounds v half away from zero to whole lira and groups thousands
// with dots: Currency(1234.5) == "₺1.235".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return CurrencySymbol + "0"
	}

	rounded := int64(math.Round(v))
	if rounded < 0 {
		return "-" + CurrencySymbol + printer.Sprintf("%d", -rounded)
	}
	return CurrencySymbol + printer.Sprintf("%d", rounded)
}

// Range formats an estimate interval: Range(800, 1200) == "₺800 - ₺1.200".
func Range(minValue, maxValue float64) string {
	return Currency(minValue) + " - " + Currency(maxValue)
}
