package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nl-BE puts the euro sign first, followed by a no-break space.
const euroPrefix = "€\u00a0"

// FromCents converts minor units to a decimal euro amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatPrice renders an amount in cents as a Belgian Dutch euro price,
// e.g. 123456 becomes € 1.234,56.
func FormatPrice(cents int64) string {
	amount := FromCents(cents)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")

	return euroPrefix + sign + groupThousands(whole) + "," + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
