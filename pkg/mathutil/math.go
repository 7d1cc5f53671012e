// Package mathutil provides integer math helpers.
package mathutil

// CeilDiv returns n divided by d, rounded up. Both arguments must be
// positive.
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}
