// Package money formats and parses amounts held in minor units (agorot).
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the shekel glyph.
const DefaultSymbol = "₪"

var (
	ErrNotANumber = errors.New("not a number")
	ErrOutOfRange = errors.New("amount out of range")
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// Formatter renders minor units with a fixed currency glyph and two fraction digits.
type Formatter struct {
	Symbol string
}

func (f Formatter) symbol() string {
	if f.Symbol == "" {
		return DefaultSymbol
	}
	return f.Symbol
}

// Abs renders the magnitude: -4250 -> "₪42.50".
func (f Formatter) Abs(cents int64) string {
	if cents < 0 {
		cents = -cents
	}
	return f.symbol() + Decimal(cents)
}

// Signed renders the magnitude with an explicit sign chosen by the caller.
func (f Formatter) Signed(cents int64, positive bool) string {
	sign := "-"
	if positive {
		sign = "+"
	}
	return sign + f.Abs(cents)
}

// Decimal renders minor units as a plain decimal for input fields: 550 -> "5.50".
func Decimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Parse converts decimal text into minor units, rounding half away from zero
// to the nearest cent. Blank, non-numeric and exponent input is an error, as
// is anything outside int64 minor units; sign is preserved.
func Parse(text string) (int64, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if text == "" || strings.ContainsAny(text, "eE") {
		return 0, ErrNotANumber
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, ErrNotANumber
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxMinorUnits) || cents.LessThan(minMinorUnits) {
		return 0, ErrOutOfRange
	}
	return cents.IntPart(), nil
}

// FromFloat converts a configured decimal amount into minor units.
func FromFloat(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

// ParsePositive is Parse restricted to amounts > 0; anything else yields 0, false.
func ParsePositive(text string) (int64, bool) {
	v, err := Parse(text)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
