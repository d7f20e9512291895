package crypto

import (
	"fmt"
	"math"
)

// SafeUint32ToInt converts a size field read from an untrusted blob into an
// int usable for slicing.
//
// CWE-190: Integer Overflow or Wraparound
func SafeUint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("uint32 value exceeds int max: %d", v)
	}
	return int(v), nil
}

// SafeUint64ToInt converts an iteration count or length supplied by a
// caller into an int, checking for overflow.
//
// CWE-190: Integer Overflow or Wraparound
// gosec G115: Integer overflow check
func SafeUint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("uint64 value exceeds int max: %d (max: %d)", v, math.MaxInt)
	}
	return int(v), nil
}

// SumLengths adds blob field lengths, failing instead of wrapping when a
// crafted header declares sizes whose total overflows.
func SumLengths(lengths ...uint32) (int, error) {
	var total uint64
	for _, l := range lengths {
		total += uint64(l)
		if total > uint64(math.MaxInt32) {
			return 0, fmt.Errorf("declared lengths overflow: %d", total)
		}
	}
	return int(total), nil
}
