// Package money holds rounding helpers for prices and percentages shown to users.
package money

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimal places using the shortest
// decimal representation of v, so 0.375 becomes 0.38 and 1.005 becomes 1.01.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format2 renders v with exactly two decimals.
func Format2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
