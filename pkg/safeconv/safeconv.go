// Package safeconv provides safe integer type conversion functions that panic on overflow.
package safeconv

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustUintToInt converts uint to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustIntToUint64 converts int to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}

// MustUint64ToInt converts uint64 to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUint64ToInt(v uint64) int {
	if v > uint64(MaxInt) {
		panic("safeconv: uint64 to int overflow")
	}

	return int(v)
}
