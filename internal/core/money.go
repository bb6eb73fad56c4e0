// Package core provides the value types shared by the ledger engine,
// storage adapters and report renderers.
//
// This file contains the tolerance used for zero comparisons and helpers
// for formatting euro amounts.
package core

import (
	"math"
	"strconv"
)

// Tolerance is the currency amount below which a balance counts as settled.
const Tolerance = 0.01

// IsSettled reports whether amount is within Tolerance of zero.
func IsSettled(amount float64) bool {
	return math.Abs(amount) <= Tolerance
}

// ValidAmount reports whether amount is a finite number.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Fixed2 formats amount with exactly two decimals. Rounding works on the
// binary value, so an amount stored just below a half cent rounds down.
//
// Examples:
//   Fixed2(7.5)    -> "7.50"
//   Fixed2(-25)    -> "-25.00"
//   Fixed2(1.005)  -> "1.00"
func Fixed2(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// Euros formats amount as "€12.34", putting the sign before the symbol.
func Euros(amount float64) string {
	if amount < 0 {
		return "-€" + Fixed2(-amount)
	}
	return "€" + Fixed2(amount)
}
