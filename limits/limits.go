// Package limits provides centralized length ranges and buffer negotiation
// for the provider. This ensures consistent validation across every engine.
package limits

import (
	"fmt"

	"github.com/opd-ai/cngcrypt/status"
)

const (
	// MinAuthTag is the shortest GCM tag accepted, in bytes
	MinAuthTag = 12

	// MaxAuthTag is the longest GCM tag accepted, in bytes
	MaxAuthTag = 16

	// GCMNonceSize is the nonce length every GCM call accepts
	GCMNonceSize = 12
)

// Range describes the lengths an algorithm accepts: every value from Min to
// Max stepping by Increment. A zero Increment means Min must equal Max.
type Range struct {
	Min       int
	Max       int
	Increment int
}

// Fixed returns a range that admits exactly one value.
func Fixed(n int) Range {
	return Range{Min: n, Max: n}
}

// Contains reports whether n is one of the lengths admitted by r.
func (r Range) Contains(n int) bool {
	if n < r.Min || n > r.Max {
		return false
	}
	if r.Increment == 0 {
		return n == r.Min
	}
	return (n-r.Min)%r.Increment == 0
}

// String renders the range the way error messages quote it.
func (r Range) String() string {
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d..%d step %d", r.Min, r.Max, r.Increment)
}

// AuthTagRange is the GCM tag length range in bytes.
var AuthTagRange = Range{Min: MinAuthTag, Max: MaxAuthTag, Increment: 1}

// FitSecret validates a symmetric secret against a key-length range given
// in bits. Secrets longer than the maximum are truncated to it; anything
// else outside the range is rejected.
func FitSecret(secret []byte, bits Range) ([]byte, error) {
	if len(secret) == 0 {
		return nil, status.Errorf(status.InvalidParameter, "empty secret")
	}
	if len(secret)*8 > bits.Max {
		return secret[:bits.Max/8], nil
	}
	if !bits.Contains(len(secret) * 8) {
		return nil, status.Errorf(status.InvalidParameter, "secret of %d bits outside %s", len(secret)*8, bits)
	}
	return secret, nil
}

// ValidateKeyBits checks a requested key size in bits against a range.
func ValidateKeyBits(bits int, r Range) error {
	if !r.Contains(bits) {
		return status.Errorf(status.InvalidParameter, "key length %d outside %s", bits, r)
	}
	return nil
}

// ValidateAuthTag checks a GCM tag buffer length.
func ValidateAuthTag(n int) error {
	if !AuthTagRange.Contains(n) {
		return status.Errorf(status.InvalidParameter, "tag length %d outside %s", n, AuthTagRange)
	}
	return nil
}

// Negotiate implements the size-query idiom shared by every size-producing
// call. An empty out is a query and reports need with no error. A
// non-empty out shorter than need is left untouched and yields
// BufferTooSmall. Otherwise the caller may write need bytes into out.
func Negotiate(out []byte, need int) (query bool, err error) {
	if len(out) == 0 {
		return true, nil
	}
	if len(out) < need {
		return false, status.TooSmall(need)
	}
	return false, nil
}

// CopyOut negotiates and then copies data into out, returning the number
// of bytes required.
func CopyOut(out, data []byte) (int, error) {
	query, err := Negotiate(out, len(data))
	if err != nil || query {
		return len(data), err
	}
	copy(out, data)
	return len(data), nil
}

// PaddedLength returns the length of n bytes after block padding: the next
// multiple of block, or a whole extra block when n is already aligned.
func PaddedLength(n, block int) int {
	return (n/block + 1) * block
}

// Aligned reports whether n is a whole number of blocks.
func Aligned(n, block int) bool {
	return block > 0 && n%block == 0
}
