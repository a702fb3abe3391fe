package business

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to 2 decimal places (half up).
// Every computed amount passes through this before it is stored or used
// as an operand in the next step; rounding only at the end drifts across
// the sale waterfall.
func Round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// IsFiniteAmount reports whether x is usable as a monetary input.
func IsFiniteAmount(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
