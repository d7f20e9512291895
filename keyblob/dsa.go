package keyblob

import (
	"crypto/dsa"
	"encoding/binary"
	"math/big"
)

// maxDSAKeyLen is the widest p accepted by the v1 DSA blobs, in bytes.
const maxDSAKeyLen = 128

type dsaHeader struct {
	Magic  Magic
	KeyLen uint32
	Count  [4]byte
	Seed   [dssSeedLen]byte
	Q      [dssQLen]byte
}

func dsaSize(params *dsa.Parameters) int {
	return (params.P.BitLen() + 7) / 8
}

func checkDSAParameters(params *dsa.Parameters) error {
	one := big.NewInt(1)
	if params.P.Cmp(one) <= 0 {
		return badData("DSA prime is not positive")
	}
	if params.Q.Sign() == 0 || params.Q.BitLen() > dssQLen*8 {
		return badData("DSA subgroup order of %d bits", params.Q.BitLen())
	}
	if params.G.Cmp(one) <= 0 || params.G.Cmp(params.P) >= 0 {
		return badData("DSA generator out of range")
	}
	return nil
}

func checkDSAKey(key *dsa.PrivateKey, private bool) error {
	if key.Y.Cmp(big.NewInt(1)) <= 0 || key.Y.Cmp(key.P) >= 0 {
		return badData("DSA public value out of range")
	}
	if private && (key.X.Sign() <= 0 || key.X.Cmp(key.Q) >= 0) {
		return badData("DSA private value out of range")
	}
	return nil
}

// EncodeDSA produces a DSAPUBLICBLOB, or a DSAPRIVATEBLOB when private is
// set.
func EncodeDSA(key *dsa.PrivateKey, seed DSSSeed, private bool) []byte {
	size := dsaSize(&key.Parameters)
	h := dsaHeader{Magic: DSAPublicMagic, KeyLen: uint32(size), Seed: seed.Seed}
	if private {
		h.Magic = DSAPrivateMagic
	}
	binary.BigEndian.PutUint32(h.Count[:], seed.Counter)
	key.Q.FillBytes(h.Q[:])

	var w writer
	w.header(h)
	w.fixed(key.P, size)
	w.fixed(key.G, size)
	w.fixed(key.Y, size)
	if private {
		w.fixed(key.X, dssQLen)
	}
	return w.Bytes()
}

// ParseDSA decodes a DSAPUBLICBLOB, or a DSAPRIVATEBLOB when private is
// set. For public blobs the returned key has a nil X.
func ParseDSA(blob []byte, private bool) (*dsa.PrivateKey, DSSSeed, error) {
	var seed DSSSeed
	var h dsaHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return nil, seed, err
	}
	want := DSAPublicMagic
	if private {
		want = DSAPrivateMagic
	}
	if h.Magic != want {
		return nil, seed, wrongMagic(h.Magic, want)
	}
	r := reader{buf: rest}
	lengths := []uint32{h.KeyLen, h.KeyLen, h.KeyLen}
	if private {
		lengths = append(lengths, dssQLen)
	}
	if err := r.need(lengths...); err != nil {
		return nil, seed, err
	}
	if h.KeyLen == 0 || h.KeyLen > maxDSAKeyLen || h.KeyLen%8 != 0 {
		return nil, seed, badData("DSA key length %d", h.KeyLen)
	}

	key := new(dsa.PrivateKey)
	key.Q = new(big.Int).SetBytes(h.Q[:])
	key.P = r.int(h.KeyLen)
	key.G = r.int(h.KeyLen)
	key.Y = r.int(h.KeyLen)
	if private {
		key.X = r.int(dssQLen)
	}
	if err := checkDSAParameters(&key.Parameters); err != nil {
		return nil, seed, err
	}
	if err := checkDSAKey(key, private); err != nil {
		return nil, seed, err
	}
	seed.Counter = binary.BigEndian.Uint32(h.Count[:])
	seed.Seed = h.Seed
	return key, seed, nil
}
