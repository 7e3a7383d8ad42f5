// Package money holds the decimal helpers shared by the catalog, cart and
// order code. Prices are never float64 once they leave the JSON decoder.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func init() {
	// Catalog and order files store prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Zero is the additive identity.
var Zero = decimal.Zero

// Places is the number of fractional digits used for display.
const Places = 2

// New parses a decimal string such as "19.99". Invalid input yields Zero.
func New(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero
	}
	return d
}

// Times returns price * qty.
func Times(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with two fractional digits, comma thousands separators
// and round-half-up: 1234.565 → "1,234.57".
func Format(d decimal.Decimal) string {
	r := Round(d)
	neg := r.IsNegative()
	r = r.Abs()

	fixed := r.StringFixed(Places)
	_, frac, _ := strings.Cut(fixed, ".")

	out := humanize.Comma(r.IntPart()) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatPtr is Format with a nil guard; nil renders as "0.00".
func FormatPtr(d *decimal.Decimal) string {
	if d == nil {
		return Format(Zero)
	}
	return Format(*d)
}
