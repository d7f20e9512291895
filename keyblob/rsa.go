package keyblob

import (
	"crypto/rsa"
	"math"
	"math/big"

	"github.com/opd-ai/cngcrypt/status"
)

// maxPublicExpLen is the widest public exponent field accepted.
const maxPublicExpLen = 8

type rsaHeader struct {
	Magic        Magic
	BitLength    uint32
	PublicExpLen uint32
	ModulusLen   uint32
	Prime1Len    uint32
	Prime2Len    uint32
}

// EncodeRSAPublic produces an RSAPUBLICBLOB.
func EncodeRSAPublic(pub *rsa.PublicKey) []byte {
	bits := pub.N.BitLen()
	e := big.NewInt(int64(pub.E)).Bytes()
	nLen := byteLen(pub.N, (bits+7)/8)

	var w writer
	w.header(rsaHeader{
		Magic:        RSAPublicMagic,
		BitLength:    uint32(bits),
		PublicExpLen: uint32(len(e)),
		ModulusLen:   uint32(nLen),
	})
	w.Write(e)
	w.fixed(pub.N, nLen)
	return w.Bytes()
}

// EncodeRSAPrivate produces an RSAPRIVATEBLOB, or an RSAFULLPRIVATEBLOB
// when full is set. Only two-prime keys can be encoded.
func EncodeRSAPrivate(priv *rsa.PrivateKey, full bool) ([]byte, error) {
	if len(priv.Primes) != 2 {
		return nil, status.Errorf(status.NotSupported, "%d-prime RSA key", len(priv.Primes))
	}
	bits := priv.N.BitLen()
	p, q := priv.Primes[0], priv.Primes[1]
	e := big.NewInt(int64(priv.E)).Bytes()
	nLen := byteLen(priv.N, (bits+7)/8)
	pLen := byteLen(p, (bits+15)/16)
	qLen := byteLen(q, (bits+15)/16)

	magic := RSAPrivateMagic
	if full {
		magic = RSAFullPrivateMagic
	}

	var w writer
	w.header(rsaHeader{
		Magic:        magic,
		BitLength:    uint32(bits),
		PublicExpLen: uint32(len(e)),
		ModulusLen:   uint32(nLen),
		Prime1Len:    uint32(pLen),
		Prime2Len:    uint32(qLen),
	})
	w.Write(e)
	w.fixed(priv.N, nLen)
	w.fixed(p, pLen)
	w.fixed(q, qLen)
	if full {
		dp, dq, qinv := crtValues(priv)
		w.fixed(dp, pLen)
		w.fixed(dq, qLen)
		w.fixed(qinv, pLen)
		w.fixed(priv.D, nLen)
	}
	return w.Bytes(), nil
}

// crtValues returns the CRT exponents and coefficient of a two-prime key.
func crtValues(priv *rsa.PrivateKey) (dp, dq, qinv *big.Int) {
	if priv.Precomputed.Dp != nil && priv.Precomputed.Dq != nil && priv.Precomputed.Qinv != nil {
		return priv.Precomputed.Dp, priv.Precomputed.Dq, priv.Precomputed.Qinv
	}
	p, q := priv.Primes[0], priv.Primes[1]
	one := big.NewInt(1)
	dp = new(big.Int).Mod(priv.D, new(big.Int).Sub(p, one))
	dq = new(big.Int).Mod(priv.D, new(big.Int).Sub(q, one))
	qinv = new(big.Int).ModInverse(q, p)
	return dp, dq, qinv
}

// publicExponent validates an exponent field and converts it to the int
// used by crypto/rsa.
func publicExponent(raw []byte) (int, error) {
	if len(raw) > maxPublicExpLen {
		return 0, badData("public exponent of %d bytes", len(raw))
	}
	e := new(big.Int).SetBytes(raw)
	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > math.MaxInt32 {
		return 0, badData("public exponent %s not representable", e)
	}
	return int(e.Int64()), nil
}

func parseRSAHeader(blob []byte, want Magic) (rsaHeader, reader, error) {
	var h rsaHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return h, reader{}, err
	}
	if h.Magic != want {
		return h, reader{}, wrongMagic(h.Magic, want)
	}
	if h.PublicExpLen == 0 || h.ModulusLen == 0 {
		return h, reader{}, status.Errorf(status.InvalidParameter, "empty exponent or modulus")
	}
	r := reader{buf: rest}
	lengths := []uint32{h.PublicExpLen, h.ModulusLen}
	switch want {
	case RSAPrivateMagic:
		lengths = append(lengths, h.Prime1Len, h.Prime2Len)
	case RSAFullPrivateMagic:
		lengths = append(lengths, h.Prime1Len, h.Prime2Len, h.Prime1Len, h.Prime2Len, h.Prime1Len, h.ModulusLen)
	}
	if err := r.need(lengths...); err != nil {
		return h, reader{}, err
	}
	if want != RSAPublicMagic && (h.Prime1Len == 0 || h.Prime2Len == 0) {
		return h, reader{}, status.Errorf(status.InvalidParameter, "private blob without primes")
	}
	return h, r, nil
}

func readRSAPublic(h rsaHeader, r *reader) (*rsa.PublicKey, error) {
	if h.PublicExpLen > maxPublicExpLen {
		return nil, badData("public exponent of %d bytes", h.PublicExpLen)
	}
	e, err := publicExponent(r.next(h.PublicExpLen))
	if err != nil {
		return nil, err
	}
	n := r.int(h.ModulusLen)
	if h.BitLength == 0 || (h.BitLength+7)/8 != h.ModulusLen || uint32(n.BitLen()) > h.BitLength {
		return nil, badData("bit length %d disagrees with %d-byte modulus", h.BitLength, h.ModulusLen)
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}

// ParseRSAPublic decodes an RSAPUBLICBLOB.
func ParseRSAPublic(blob []byte) (*rsa.PublicKey, error) {
	h, r, err := parseRSAHeader(blob, RSAPublicMagic)
	if err != nil {
		return nil, err
	}
	return readRSAPublic(h, &r)
}

// ParseRSAPrivate decodes an RSAPRIVATEBLOB, or an RSAFULLPRIVATEBLOB when
// full is set. The private exponent of a plain private blob is derived from
// the primes.
func ParseRSAPrivate(blob []byte, full bool) (*rsa.PrivateKey, error) {
	want := RSAPrivateMagic
	if full {
		want = RSAFullPrivateMagic
	}
	h, r, err := parseRSAHeader(blob, want)
	if err != nil {
		return nil, err
	}
	pub, err := readRSAPublic(h, &r)
	if err != nil {
		return nil, err
	}
	p := r.int(h.Prime1Len)
	q := r.int(h.Prime2Len)

	var d *big.Int
	if full {
		r.next(h.Prime1Len) // dp
		r.next(h.Prime2Len) // dq
		r.next(h.Prime1Len) // qinv
		d = r.int(h.ModulusLen)
	} else {
		one := big.NewInt(1)
		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
		d = new(big.Int).ModInverse(big.NewInt(int64(pub.E)), phi)
		if d == nil {
			return nil, badData("public exponent not invertible")
		}
	}
	return buildRSAPrivate(pub, d, p, q)
}

func buildRSAPrivate(pub *rsa.PublicKey, d, p, q *big.Int) (*rsa.PrivateKey, error) {
	if p.Sign() == 0 || q.Sign() == 0 || new(big.Int).Mul(p, q).Cmp(pub.N) != 0 {
		return nil, badData("primes do not match modulus")
	}
	priv := &rsa.PrivateKey{PublicKey: *pub, D: d, Primes: []*big.Int{p, q}}
	if err := priv.Validate(); err != nil {
		return nil, badData("inconsistent RSA key: %v", err)
	}
	priv.Precompute()
	return priv, nil
}
