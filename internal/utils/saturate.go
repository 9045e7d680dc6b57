package utils

import "math"

// AddCapped adds two non-negative counters, stopping at math.MaxInt instead of
// wrapping.
func AddCapped(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// MulCapped multiplies two non-negative counters, stopping at math.MaxInt.
func MulCapped(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
