package symmetric

import (
	"crypto/subtle"

	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// pad returns in followed by PKCS#7 padding to a multiple of block. An
// aligned input gains a whole block.
func pad(in []byte, block int) []byte {
	n := limits.PaddedLength(len(in), block)
	out := make([]byte, n)
	copy(out, in)
	p := byte(n - len(in))
	for i := len(in); i < n; i++ {
		out[i] = p
	}
	return out
}

// unpad returns the length of buf without its PKCS#7 padding.
func unpad(buf []byte, block int) (int, error) {
	if len(buf) == 0 || len(buf)%block != 0 {
		return 0, status.Errorf(status.BadData, "padded data is not block aligned")
	}
	p := int(buf[len(buf)-1])
	if p == 0 || p > block {
		return 0, status.Errorf(status.BadData, "invalid padding length %d", p)
	}
	good := 1
	for _, b := range buf[len(buf)-p:] {
		good &= subtle.ConstantTimeByteEq(b, byte(p))
	}
	if good != 1 {
		return 0, status.Errorf(status.BadData, "malformed padding")
	}
	return len(buf) - p, nil
}
