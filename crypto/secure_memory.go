package crypto

import (
	"crypto/subtle"
	"errors"
	"math/big"
	"runtime"
)

// SecureWipe attempts to securely erase the contents of a byte slice
// containing key material. It returns an error if the byte slice is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	// Overwrite the data with zeros
	// Using subtle.ConstantTimeCompare's byteXor operation to avoid
	// potential compiler optimizations that might remove the overwrite
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)

	return nil
}

// ZeroBytes erases the contents of a byte slice containing key material.
// This is a convenience function that ignores the error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}

// WipeAll erases every non-nil slice passed to it.
func WipeAll(slices ...[]byte) {
	for _, s := range slices {
		if s != nil {
			ZeroBytes(s)
		}
	}
}

// WipeBigInt overwrites the limbs of a big integer holding a private
// component, then sets it to zero.
func WipeBigInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	n.SetInt64(0)
}

// CloneBytes returns an independent copy of data; nil stays nil.
func CloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
