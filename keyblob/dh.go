package keyblob

import (
	"math/big"

	"github.com/opd-ai/cngcrypt/status"
)

// DHKey holds the components of a Diffie-Hellman key. X is nil for public
// keys.
type DHKey struct {
	P, G, Y, X *big.Int
}

type dhHeader struct {
	Magic  Magic
	KeyLen uint32
}

type dhParamHeader struct {
	Length uint32
	Magic  Magic
	KeyLen uint32
}

// EncodeDH produces a DHPUBLICBLOB, or a DHPRIVATEBLOB when private is set.
// Every component is padded to size bytes.
func EncodeDH(k DHKey, size int, private bool) []byte {
	magic := DHPublicMagic
	if private {
		magic = DHPrivateMagic
	}
	var w writer
	w.header(dhHeader{Magic: magic, KeyLen: uint32(size)})
	w.fixed(k.P, size)
	w.fixed(k.G, size)
	w.fixed(k.Y, size)
	if private {
		w.fixed(k.X, size)
	}
	return w.Bytes()
}

// ParseDH decodes a DHPUBLICBLOB or DHPRIVATEBLOB and returns the key and
// its byte length.
func ParseDH(blob []byte, private bool) (DHKey, int, error) {
	var h dhHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return DHKey{}, 0, err
	}
	want := DHPublicMagic
	if private {
		want = DHPrivateMagic
	}
	if h.Magic != want {
		return DHKey{}, 0, wrongMagic(h.Magic, want)
	}
	if h.KeyLen == 0 {
		return DHKey{}, 0, status.Errorf(status.InvalidParameter, "empty DH key")
	}
	r := reader{buf: rest}
	lengths := []uint32{h.KeyLen, h.KeyLen, h.KeyLen}
	if private {
		lengths = append(lengths, h.KeyLen)
	}
	if err := r.need(lengths...); err != nil {
		return DHKey{}, 0, err
	}

	k := DHKey{P: r.int(h.KeyLen), G: r.int(h.KeyLen), Y: r.int(h.KeyLen)}
	if private {
		k.X = r.int(h.KeyLen)
	}
	if err := checkDHGroup(k.P, k.G); err != nil {
		return DHKey{}, 0, err
	}
	if !inGroup(k.Y, k.P) {
		return DHKey{}, 0, badData("DH public value out of range")
	}
	if private {
		if k.X.Sign() <= 0 || k.X.Cmp(k.P) >= 0 {
			return DHKey{}, 0, badData("DH private value out of range")
		}
		if new(big.Int).Exp(k.G, k.X, k.P).Cmp(k.Y) != 0 {
			return DHKey{}, 0, badData("DH public value does not match private value")
		}
	}
	return k, int(h.KeyLen), nil
}

// EncodeDHParameters produces a DH parameters blob.
func EncodeDHParameters(p, g *big.Int, size int) []byte {
	var w writer
	w.header(dhParamHeader{Length: uint32(12 + 2*size), Magic: DHParametersMagic, KeyLen: uint32(size)})
	w.fixed(p, size)
	w.fixed(g, size)
	return w.Bytes()
}

// ParseDHParameters decodes a DH parameters blob and returns the prime,
// generator and key byte length.
func ParseDHParameters(blob []byte) (p, g *big.Int, size int, err error) {
	var h dhParamHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return nil, nil, 0, err
	}
	if h.Magic != DHParametersMagic {
		return nil, nil, 0, wrongMagic(h.Magic, DHParametersMagic)
	}
	if h.KeyLen == 0 {
		return nil, nil, 0, status.Errorf(status.InvalidParameter, "empty DH parameters")
	}
	r := reader{buf: rest}
	if err := r.need(h.KeyLen, h.KeyLen); err != nil {
		return nil, nil, 0, err
	}
	if uint64(h.Length) != 12+2*uint64(h.KeyLen) {
		return nil, nil, 0, status.Errorf(status.InvalidParameter, "DH parameters length %d for %d-byte key", h.Length, h.KeyLen)
	}
	p, g = r.int(h.KeyLen), r.int(h.KeyLen)
	if err := checkDHGroup(p, g); err != nil {
		return nil, nil, 0, err
	}
	return p, g, int(h.KeyLen), nil
}

func checkDHGroup(p, g *big.Int) error {
	if p.BitLen() < 2 || p.Bit(0) == 0 {
		return badData("DH prime is not odd")
	}
	if !inGroup(g, p) {
		return badData("DH generator out of range")
	}
	return nil
}

// inGroup reports whether 1 < v < p-1.
func inGroup(v, p *big.Int) bool {
	pm1 := new(big.Int).Sub(p, big.NewInt(1))
	return v.Cmp(big.NewInt(1)) > 0 && v.Cmp(pm1) < 0
}
