package configurator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

var eight = decimal.NewFromInt(8)

// Dimension is a whole-inch measurement plus an enumerated fraction
type Dimension struct {
	Whole    int      `json:"whole"`
	Fraction Fraction `json:"fraction"`
}

// NewDimension creates a dimension with whole clamped to r
func NewDimension(whole int, fraction Fraction, r catalog.DimensionRange) Dimension {
	if !fraction.IsValid() {
		fraction = FractionZero
	}
	return Dimension{Whole: r.Clamp(whole), Fraction: fraction}
}

// Inches returns whole + fraction. It is computed on every call.
func (d Dimension) Inches() decimal.Decimal {
	return decimal.NewFromInt(int64(d.Whole)).Add(d.Fraction.Decimal())
}

// String renders the dimension as `42 3/8"`, or `42"` with no fraction
func (d Dimension) String() string {
	if d.Fraction == FractionZero || !d.Fraction.IsValid() {
		return fmt.Sprintf(`%d"`, d.Whole)
	}
	return fmt.Sprintf(`%d %s"`, d.Whole, d.Fraction.Label())
}

// DimensionFromInches splits decimal inches into whole + nearest eighth,
// then clamps the whole part to r.
func DimensionFromInches(inches decimal.Decimal, r catalog.DimensionRange) Dimension {
	eighths := inches.Mul(eight).Round(0).IntPart()
	if eighths < 0 {
		eighths = 0
	}
	whole := int(eighths / 8)
	fraction := Fractions[eighths%8]
	return NewDimension(whole, fraction, r)
}

// ParseWhole reads a whole-inch input and clamps it to r.
// Non-numeric input resolves to the range minimum; numeric input outside
// the range resolves to the nearest bound; decimals are truncated.
func ParseWhole(input string, r catalog.DimensionRange) int {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		return r.Clamp(n)
	}
	f, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(f) {
		return r.Min
	}
	switch {
	case f <= float64(r.Min):
		return r.Min
	case f >= float64(r.Max):
		return r.Max
	}
	return r.Clamp(int(math.Trunc(f)))
}
