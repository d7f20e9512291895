package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"

	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// Algorithm names accepted by Lookup.
const (
	AES     = "AES"
	DES3    = "3DES"
	DES3112 = "3DES_112"
	RC4     = "RC4"
)

// ObjectSize is the key object size every cipher provider reports.
const ObjectSize = 654

// Algorithm describes one cipher family.
type Algorithm struct {
	Name string
	// BlockSize is 1 for stream ciphers.
	BlockSize int
	// KeyBits is the admitted key length range in bits.
	KeyBits     limits.Range
	DefaultMode Mode
	modes       []Mode
	newBlock    func(key []byte) (cipher.Block, error)
}

// Stream reports whether the algorithm is a stream cipher without
// chaining modes.
func (a *Algorithm) Stream() bool {
	return a.newBlock == nil
}

// Supports reports whether m is a valid chaining mode for the algorithm.
func (a *Algorithm) Supports(m Mode) bool {
	for _, have := range a.modes {
		if have == m {
			return true
		}
	}
	return false
}

// newTripleDES112 expands a two-key 3DES secret K1||K2 to K1||K2||K1.
func newTripleDES112(key []byte) (cipher.Block, error) {
	full := make([]byte, 0, 24)
	full = append(full, key...)
	full = append(full, key[:8]...)
	return des.NewTripleDESCipher(full)
}

var algorithms = map[string]*Algorithm{
	AES: {
		Name:        AES,
		BlockSize:   aes.BlockSize,
		KeyBits:     limits.Range{Min: 128, Max: 256, Increment: 64},
		DefaultMode: ModeCBC,
		modes:       []Mode{ModeECB, ModeCBC, ModeCFB, ModeGCM},
		newBlock:    aes.NewCipher,
	},
	DES3: {
		Name:        DES3,
		BlockSize:   des.BlockSize,
		KeyBits:     limits.Fixed(192),
		DefaultMode: ModeCBC,
		modes:       []Mode{ModeECB, ModeCBC, ModeCFB},
		newBlock:    des.NewTripleDESCipher,
	},
	DES3112: {
		Name:        DES3112,
		BlockSize:   des.BlockSize,
		KeyBits:     limits.Fixed(128),
		DefaultMode: ModeCBC,
		modes:       []Mode{ModeECB, ModeCBC, ModeCFB},
		newBlock:    newTripleDES112,
	},
	RC4: {
		Name:        RC4,
		BlockSize:   1,
		KeyBits:     limits.Range{Min: 8, Max: 512, Increment: 8},
		DefaultMode: ModeNone,
	},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (*Algorithm, error) {
	alg, ok := algorithms[name]
	if !ok {
		return nil, status.Errorf(status.NotFound, "cipher algorithm %q", name)
	}
	return alg, nil
}
