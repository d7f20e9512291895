package keyblob

import (
	"bytes"
	"crypto/ecdh"
	"crypto/elliptic"

	"github.com/opd-ai/cngcrypt/crypto"
)

// Curve describes a named prime curve and its blob magics.
type Curve struct {
	// Name is the CNG curve name reported by ECCCurveName.
	Name string
	Bits int
	// Size is the byte length of one coordinate.
	Size     int
	ECDH     ecdh.Curve
	Elliptic elliptic.Curve

	ecdhPublic, ecdhPrivate   Magic
	ecdsaPublic, ecdsaPrivate Magic
}

// Supported curves.
var (
	P256 = &Curve{
		Name: "nistP256", Bits: 256, Size: 32,
		ECDH: ecdh.P256(), Elliptic: elliptic.P256(),
		ecdhPublic: ECDHPublicP256, ecdhPrivate: ECDHPrivateP256,
		ecdsaPublic: ECDSAPublicP256, ecdsaPrivate: ECDSAPrivateP256,
	}
	P384 = &Curve{
		Name: "nistP384", Bits: 384, Size: 48,
		ECDH: ecdh.P384(), Elliptic: elliptic.P384(),
		ecdhPublic: ECDHPublicP384, ecdhPrivate: ECDHPrivateP384,
		ecdsaPublic: ECDSAPublicP384, ecdsaPrivate: ECDSAPrivateP384,
	}
)

// Magic returns the blob magic for a key on c.
func (c *Curve) Magic(signing, private bool) Magic {
	switch {
	case signing && private:
		return c.ecdsaPrivate
	case signing:
		return c.ecdsaPublic
	case private:
		return c.ecdhPrivate
	default:
		return c.ecdhPublic
	}
}

// ECCKey holds an uncompressed public point (0x04||X||Y) and, for private
// keys, the fixed-width scalar D.
type ECCKey struct {
	Public  []byte
	Private []byte
}

type eccHeader struct {
	Magic  Magic
	KeyLen uint32
}

// EncodeECC produces an ECCPUBLICBLOB, or an ECCPRIVATEBLOB when k carries a
// private scalar and private is set.
func EncodeECC(c *Curve, signing, private bool, k ECCKey) []byte {
	var w writer
	w.header(eccHeader{Magic: c.Magic(signing, private), KeyLen: uint32(c.Size)})
	w.Write(k.Public[1:])
	if private {
		w.Write(k.Private)
	}
	return w.Bytes()
}

// ParseECC decodes an ECC blob for curve c. The point is checked to lie on
// the curve and, for private blobs, to match the scalar.
func ParseECC(blob []byte, c *Curve, signing, private bool) (ECCKey, error) {
	var h eccHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return ECCKey{}, err
	}
	if want := c.Magic(signing, private); h.Magic != want {
		return ECCKey{}, wrongMagic(h.Magic, want)
	}
	if h.KeyLen != uint32(c.Size) {
		return ECCKey{}, badData("key length %d on %s", h.KeyLen, c.Name)
	}
	r := reader{buf: rest}
	lengths := []uint32{h.KeyLen, h.KeyLen}
	if private {
		lengths = append(lengths, h.KeyLen)
	}
	if err := r.need(lengths...); err != nil {
		return ECCKey{}, err
	}

	point := make([]byte, 0, 1+2*c.Size)
	point = append(point, 4)
	point = append(point, r.next(2*h.KeyLen)...)
	pub, err := c.ECDH.NewPublicKey(point)
	if err != nil {
		return ECCKey{}, badData("point not on %s", c.Name)
	}
	k := ECCKey{Public: pub.Bytes()}
	if private {
		priv, err := c.ECDH.NewPrivateKey(r.next(h.KeyLen))
		if err != nil {
			return ECCKey{}, badData("private scalar out of range")
		}
		if !bytes.Equal(priv.PublicKey().Bytes(), k.Public) {
			return ECCKey{}, badData("private scalar does not match public point")
		}
		k.Private = crypto.CloneBytes(priv.Bytes())
	}
	return k, nil
}
