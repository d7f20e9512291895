package symmetric

import "crypto/cipher"

// cfb8 is CFB mode with 8-bit feedback. The standard library only ships
// full-block feedback.
type cfb8 struct {
	b       cipher.Block
	reg     []byte
	tmp     []byte
	decrypt bool
}

func newCFB8(b cipher.Block, iv []byte, decrypt bool) *cfb8 {
	reg := make([]byte, b.BlockSize())
	copy(reg, iv)
	return &cfb8{
		b:       b,
		reg:     reg,
		tmp:     make([]byte, b.BlockSize()),
		decrypt: decrypt,
	}
}

func (x *cfb8) XORKeyStream(dst, src []byte) {
	for i, c := range src {
		x.b.Encrypt(x.tmp, x.reg)
		o := c ^ x.tmp[0]
		fb := o
		if x.decrypt {
			fb = c
		}
		copy(x.reg, x.reg[1:])
		x.reg[len(x.reg)-1] = fb
		dst[i] = o
	}
}

// register returns the feedback register, which is the trailing block of
// IV||ciphertext.
func (x *cfb8) register() []byte {
	return x.reg
}
