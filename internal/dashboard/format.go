package dashboard

import (
	"github.com/shopspring/decimal"
)

var million = decimal.NewFromInt(1_000_000)

// FormatPrice renders a price as $123.45
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatPriceFloat renders a bar price as $123.45
func FormatPriceFloat(f float64) string {
	return FormatPrice(decimal.NewFromFloat(f))
}

// FormatPercent renders a signed percentage as +1.23% or -1.23%
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.IsNegative() {
		return "+" + s + "%"
	}
	return s + "%"
}

// FormatVolume renders a share count in millions as 12.34M
func FormatVolume(v int64) string {
	return decimal.NewFromInt(v).Div(million).StringFixed(2) + "M"
}
