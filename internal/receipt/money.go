package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount is the largest value a NUMERIC(12,2) column holds.
var maxAmount = decimal.New(999_999_999_999, -2)

// CentsFromAmount rounds amount half away from zero to two places and returns
// it as integer cents. Amounts a NUMERIC(12,2) column cannot hold are an
// error.
func CentsFromAmount(amount decimal.Decimal) (int64, error) {
	rounded := amount.Round(2)
	if rounded.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("receipt: amount %s exceeds %s", amount, maxAmount.StringFixed(2))
	}
	return rounded.Shift(2).IntPart(), nil
}

// AmountFromCents is the inverse of CentsFromAmount.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// NumericFromCents renders cents as the fixed two-decimal text Postgres
// accepts for NUMERIC(12,2): 2550 → "25.50".
func NumericFromCents(cents int64) string {
	return AmountFromCents(cents).StringFixed(2)
}

// CentsFromNumeric parses NUMERIC text read back from Postgres ("25", "25.5",
// "25.50"). More than two decimals is an error: the column never holds them.
func CentsFromNumeric(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("receipt: parse amount %q: %w", s, err)
	}
	if !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("receipt: amount %q has more than two decimals", s)
	}
	return CentsFromAmount(d)
}
