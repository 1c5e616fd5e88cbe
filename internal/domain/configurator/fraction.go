package configurator

import (
	"strings"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Fraction is the fractional-inch part of a dimension, stored as a decimal
// token ("0.125") rather than a rational value.
type Fraction string

// Enumerated fractions, in eighths of an inch
const (
	FractionZero         Fraction = "0"
	FractionOneEighth    Fraction = "0.125"
	FractionQuarter      Fraction = "0.25"
	FractionThreeEighths Fraction = "0.375"
	FractionHalf         Fraction = "0.5"
	FractionFiveEighths  Fraction = "0.625"
	FractionThreeQuarter Fraction = "0.75"
	FractionSevenEighths Fraction = "0.875"
)

// Fractions lists the allowed fractions in ascending order
var Fractions = []Fraction{
	FractionZero,
	FractionOneEighth,
	FractionQuarter,
	FractionThreeEighths,
	FractionHalf,
	FractionFiveEighths,
	FractionThreeQuarter,
	FractionSevenEighths,
}

var fractionLabels = map[Fraction]string{
	FractionZero:         "0",
	FractionOneEighth:    "1/8",
	FractionQuarter:      "1/4",
	FractionThreeEighths: "3/8",
	FractionHalf:         "1/2",
	FractionFiveEighths:  "5/8",
	FractionThreeQuarter: "3/4",
	FractionSevenEighths: "7/8",
}

// ParseFraction accepts a decimal token ("0.375") or a label ("3/8").
// An empty string is read as zero. Anything else is ErrInvalidFraction.
func ParseFraction(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FractionZero, nil
	}
	for f, label := range fractionLabels {
		if s == string(f) || s == label {
			return f, nil
		}
	}
	return "", shared.ErrInvalidFraction
}

// MustParseFraction is ParseFraction for constant inputs
func MustParseFraction(s string) Fraction {
	f, err := ParseFraction(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FractionFromEighths returns the fraction for n eighths, n in [0, 7]
func FractionFromEighths(n int) (Fraction, error) {
	if n < 0 || n >= len(Fractions) {
		return "", shared.ErrInvalidFraction
	}
	return Fractions[n], nil
}

// IsValid reports whether f is one of the enumerated fractions
func (f Fraction) IsValid() bool {
	_, ok := fractionLabels[f]
	return ok
}

// Decimal returns the fraction as a decimal; an invalid token is zero
func (f Fraction) Decimal() decimal.Decimal {
	if !f.IsValid() {
		return decimal.Zero
	}
	return decimal.RequireFromString(string(f))
}

// Eighths returns the number of eighths the fraction represents
func (f Fraction) Eighths() int {
	for i, candidate := range Fractions {
		if candidate == f {
			return i
		}
	}
	return 0
}

// Label renders the fraction as shown on the storefront ("3/8")
func (f Fraction) Label() string {
	if label, ok := fractionLabels[f]; ok {
		return label
	}
	return "0"
}

// String returns the decimal token
func (f Fraction) String() string {
	return string(f)
}
