package keyblob

import (
	"crypto/dsa"
	"crypto/rsa"
	"math"
	"math/big"

	"github.com/opd-ai/cngcrypt/status"
)

// CryptoAPI blob constants.
const (
	capiPublicKeyBlob  = 0x6
	capiPrivateKeyBlob = 0x7
	capiBlobVersion    = 2
	calgRSAKeyX        = 0x0000a400
	calgRSASign        = 0x00002400
	calgDSSSign        = 0x00002200
	dssQLen            = 20
	dssSeedLen         = 20
)

type blobHeader struct {
	Type     uint8
	Version  uint8
	Reserved uint16
	KeyAlg   uint32
}

type rsaPubKey struct {
	Magic  Magic
	BitLen uint32
	PubExp uint32
}

type dssPubKey struct {
	Magic  Magic
	BitLen uint32
}

// DSSSeed is the generation seed carried by DSS blobs. A Counter of
// 0xffffffff means the seed is unknown.
type DSSSeed struct {
	Counter uint32
	Seed    [dssSeedLen]byte
}

// UnknownSeed is the seed recorded for keys whose generation seed is not
// available.
var UnknownSeed = DSSSeed{Counter: math.MaxUint32}

func readCAPIHeader(blob []byte, private bool, algs ...uint32) ([]byte, error) {
	var h blobHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return nil, err
	}
	want := uint8(capiPublicKeyBlob)
	if private {
		want = capiPrivateKeyBlob
	}
	if h.Type != want || h.Version != capiBlobVersion {
		return nil, status.Errorf(status.InvalidParameter, "blob type %d version %d", h.Type, h.Version)
	}
	for _, alg := range algs {
		if h.KeyAlg == alg {
			return rest, nil
		}
	}
	return nil, status.Errorf(status.InvalidParameter, "blob algorithm 0x%x", h.KeyAlg)
}

// EncodeCAPIRSAPublic produces a PUBLICKEYBLOB for an RSA key-exchange key.
func EncodeCAPIRSAPublic(pub *rsa.PublicKey) []byte {
	bits := pub.N.BitLen()
	var w writer
	w.header(blobHeader{Type: capiPublicKeyBlob, Version: capiBlobVersion, KeyAlg: calgRSAKeyX})
	w.header(rsaPubKey{Magic: RSAPublicMagic, BitLen: uint32(bits), PubExp: uint32(pub.E)})
	w.reversed(pub.N, (bits+7)/8)
	return w.Bytes()
}

// EncodeCAPIRSAPrivate produces a PRIVATEKEYBLOB for an RSA key.
func EncodeCAPIRSAPrivate(priv *rsa.PrivateKey) ([]byte, error) {
	if len(priv.Primes) != 2 {
		return nil, status.Errorf(status.NotSupported, "%d-prime RSA key", len(priv.Primes))
	}
	bits := priv.N.BitLen()
	full, half := (bits+7)/8, (bits+15)/16
	p, q := priv.Primes[0], priv.Primes[1]
	if byteLen(p, 0) > half || byteLen(q, 0) > half {
		return nil, status.Errorf(status.NotSupported, "unbalanced RSA primes")
	}
	dp, dq, qinv := crtValues(priv)

	var w writer
	w.header(blobHeader{Type: capiPrivateKeyBlob, Version: capiBlobVersion, KeyAlg: calgRSAKeyX})
	w.header(rsaPubKey{Magic: RSAPrivateMagic, BitLen: uint32(bits), PubExp: uint32(priv.E)})
	w.reversed(priv.N, full)
	w.reversed(p, half)
	w.reversed(q, half)
	w.reversed(dp, half)
	w.reversed(dq, half)
	w.reversed(qinv, half)
	w.reversed(priv.D, full)
	return w.Bytes(), nil
}

func readCAPIRSA(blob []byte, private bool) (*rsa.PublicKey, rsaPubKey, reader, error) {
	rest, err := readCAPIHeader(blob, private, calgRSAKeyX, calgRSASign)
	if err != nil {
		return nil, rsaPubKey{}, reader{}, err
	}
	var k rsaPubKey
	if rest, err = readHeader(rest, &k); err != nil {
		return nil, k, reader{}, err
	}
	want := RSAPublicMagic
	if private {
		want = RSAPrivateMagic
	}
	if k.Magic != want {
		return nil, k, reader{}, wrongMagic(k.Magic, want)
	}
	if k.BitLen == 0 || k.BitLen%8 != 0 {
		return nil, k, reader{}, badData("RSA bit length %d", k.BitLen)
	}
	full, half := k.BitLen/8, (k.BitLen+15)/16
	r := reader{buf: rest}
	lengths := []uint32{full}
	if private {
		lengths = append(lengths, half, half, half, half, half, full)
	}
	if err := r.need(lengths...); err != nil {
		return nil, k, reader{}, err
	}
	if k.PubExp < 2 || k.PubExp > math.MaxInt32 {
		return nil, k, reader{}, badData("public exponent %d", k.PubExp)
	}
	n := r.intLE(full)
	if uint32(n.BitLen()) > k.BitLen {
		return nil, k, reader{}, badData("modulus wider than %d bits", k.BitLen)
	}
	return &rsa.PublicKey{N: n, E: int(k.PubExp)}, k, r, nil
}

// ParseCAPIRSAPublic decodes an RSA PUBLICKEYBLOB.
func ParseCAPIRSAPublic(blob []byte) (*rsa.PublicKey, error) {
	pub, _, _, err := readCAPIRSA(blob, false)
	return pub, err
}

// ParseCAPIRSAPrivate decodes an RSA PRIVATEKEYBLOB.
func ParseCAPIRSAPrivate(blob []byte) (*rsa.PrivateKey, error) {
	pub, k, r, err := readCAPIRSA(blob, true)
	if err != nil {
		return nil, err
	}
	half := (k.BitLen + 15) / 16
	p := r.intLE(half)
	q := r.intLE(half)
	r.next(3 * half) // dp, dq, qinv are recomputed
	d := r.intLE(k.BitLen / 8)
	return buildRSAPrivate(pub, d, p, q)
}

// EncodeCAPIDSAPublic produces a DSS PUBLICKEYBLOB.
func EncodeCAPIDSAPublic(pub *dsa.PublicKey, seed DSSSeed) []byte {
	size := dsaSize(&pub.Parameters)
	var w writer
	w.header(blobHeader{Type: capiPublicKeyBlob, Version: capiBlobVersion, KeyAlg: calgDSSSign})
	w.header(dssPubKey{Magic: DSS1Magic, BitLen: uint32(size * 8)})
	w.reversed(pub.P, size)
	w.reversed(pub.Q, dssQLen)
	w.reversed(pub.G, size)
	w.reversed(pub.Y, size)
	w.header(seed)
	return w.Bytes()
}

// EncodeCAPIDSAPrivate produces a DSS PRIVATEKEYBLOB. The public value is
// not stored; importers recompute it.
func EncodeCAPIDSAPrivate(priv *dsa.PrivateKey, seed DSSSeed) []byte {
	size := dsaSize(&priv.Parameters)
	var w writer
	w.header(blobHeader{Type: capiPrivateKeyBlob, Version: capiBlobVersion, KeyAlg: calgDSSSign})
	w.header(dssPubKey{Magic: DSS2Magic, BitLen: uint32(size * 8)})
	w.reversed(priv.P, size)
	w.reversed(priv.Q, dssQLen)
	w.reversed(priv.G, size)
	w.reversed(priv.X, dssQLen)
	w.header(seed)
	return w.Bytes()
}

// ParseCAPIDSA decodes a DSS PUBLICKEYBLOB or PRIVATEKEYBLOB. For private
// blobs the public value is recomputed as g^x mod p.
func ParseCAPIDSA(blob []byte, private bool) (*dsa.PrivateKey, DSSSeed, error) {
	var seed DSSSeed
	rest, err := readCAPIHeader(blob, private, calgDSSSign)
	if err != nil {
		return nil, seed, err
	}
	var k dssPubKey
	if rest, err = readHeader(rest, &k); err != nil {
		return nil, seed, err
	}
	want := DSS1Magic
	if private {
		want = DSS2Magic
	}
	if k.Magic != want {
		return nil, seed, wrongMagic(k.Magic, want)
	}
	if k.BitLen == 0 || k.BitLen%64 != 0 || k.BitLen > 1024 {
		return nil, seed, badData("DSS bit length %d", k.BitLen)
	}
	size := k.BitLen / 8
	last := size
	if private {
		last = dssQLen
	}
	r := reader{buf: rest}
	if err := r.need(size, dssQLen, size, last, 24); err != nil {
		return nil, seed, err
	}

	key := new(dsa.PrivateKey)
	key.P = r.intLE(size)
	key.Q = r.intLE(dssQLen)
	key.G = r.intLE(size)
	if private {
		key.X = r.intLE(dssQLen)
	} else {
		key.Y = r.intLE(size)
	}
	if _, err := readHeader(r.buf, &seed); err != nil {
		return nil, seed, err
	}
	if err := checkDSAParameters(&key.Parameters); err != nil {
		return nil, seed, err
	}
	if private {
		key.Y = new(big.Int).Exp(key.G, key.X, key.P)
	}
	if err := checkDSAKey(key, private); err != nil {
		return nil, seed, err
	}
	return key, seed, nil
}
