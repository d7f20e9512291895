package asymmetric

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"math/big"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// blobKind says which half of a key a blob type carries.
type blobKind struct {
	private bool
	full    bool
	capi    bool
}

// blobKinds lists the blob types each key family accepts. PUBLICBLOB and
// PRIVATEBLOB take the family's native layout.
var blobKinds = map[Kind]map[string]blobKind{
	KindRSA: {
		keyblob.PublicBlob:         {},
		keyblob.PrivateBlob:        {private: true},
		keyblob.RSAPublicBlob:      {},
		keyblob.RSAPrivateBlob:     {private: true},
		keyblob.RSAFullPrivateBlob: {private: true, full: true},
		keyblob.CAPIPublicBlob:     {capi: true},
		keyblob.CAPIPrivateBlob:    {private: true, capi: true},
	},
	KindDSA: {
		keyblob.PublicBlob:         {},
		keyblob.PrivateBlob:        {private: true},
		keyblob.DSAPublicBlob:      {},
		keyblob.DSAPrivateBlob:     {private: true},
		keyblob.CAPIDSAPublicBlob:  {capi: true},
		keyblob.CAPIDSAPrivateBlob: {private: true, capi: true},
	},
	KindECDSA: {
		keyblob.PublicBlob:     {},
		keyblob.PrivateBlob:    {private: true},
		keyblob.ECCPublicBlob:  {},
		keyblob.ECCPrivateBlob: {private: true},
	},
	KindECDH: {
		keyblob.PublicBlob:     {},
		keyblob.PrivateBlob:    {private: true},
		keyblob.ECCPublicBlob:  {},
		keyblob.ECCPrivateBlob: {private: true},
	},
	KindDH: {
		keyblob.PublicBlob:    {},
		keyblob.PrivateBlob:   {private: true},
		keyblob.DHPublicBlob:  {},
		keyblob.DHPrivateBlob: {private: true},
	},
}

func (a *Algorithm) blobKind(blobType string) (blobKind, error) {
	kind, ok := blobKinds[a.Kind][blobType]
	if !ok {
		return blobKind{}, status.Errorf(status.NotSupported, "%s blob for %s", blobType, a.Name)
	}
	return kind, nil
}

// Import decodes a key blob into a new, immediately usable key pair.
func Import(alg *Algorithm, blobType string, blob []byte) (*KeyPair, error) {
	logger := crypto.NewPackageLogger("asymmetric", "Import").
		WithAlgorithm(alg.Name).
		WithFields(crypto.SizeFields("blob", blob))

	kind, err := alg.blobKind(blobType)
	if err != nil {
		return nil, err
	}
	k := &KeyPair{alg: alg, seed: keyblob.UnknownSeed}
	if err := k.load(kind, blob); err != nil {
		logger.WithError(err, "load").Debug("rejected key blob")
		return nil, err
	}
	k.finalized = true
	logger.WithField("blob_type", blobType).WithField("bits", k.bits).Debug("imported key pair")
	return k, nil
}

// load replaces every component of k with the contents of blob.
func (k *KeyPair) load(kind blobKind, blob []byte) error {
	k.clear()
	switch k.alg.Kind {
	case KindRSA:
		return k.loadRSA(kind, blob)
	case KindDSA:
		return k.loadDSA(kind, blob)
	case KindECDSA:
		return k.loadECDSA(kind, blob)
	case KindECDH:
		return k.loadECDH(kind, blob)
	case KindDH:
		key, size, err := keyblob.ParseDH(blob, kind.private)
		if err != nil {
			return err
		}
		if err := limits.ValidateKeyBits(size*8, k.alg.KeyBits); err != nil {
			return err
		}
		k.dh, k.bits = &key, size*8
		k.group = &dhGroup{p: key.P, g: key.G, size: size}
		return nil
	}
	return status.Errorf(status.NotSupported, "import %s", k.alg.Name)
}

func (k *KeyPair) loadRSA(kind blobKind, blob []byte) error {
	var (
		priv *rsa.PrivateKey
		pub  *rsa.PublicKey
		err  error
	)
	switch {
	case kind.capi && kind.private:
		priv, err = keyblob.ParseCAPIRSAPrivate(blob)
	case kind.capi:
		pub, err = keyblob.ParseCAPIRSAPublic(blob)
	case kind.private:
		priv, err = keyblob.ParseRSAPrivate(blob, kind.full)
	default:
		pub, err = keyblob.ParseRSAPublic(blob)
	}
	if err != nil {
		return err
	}
	if priv != nil {
		pub = &priv.PublicKey
	}
	k.rsaPriv, k.rsaPub = priv, pub
	k.bits = pub.N.BitLen()
	return nil
}

func (k *KeyPair) loadDSA(kind blobKind, blob []byte) error {
	var (
		key  *dsa.PrivateKey
		seed keyblob.DSSSeed
		err  error
	)
	if kind.capi {
		key, seed, err = keyblob.ParseCAPIDSA(blob, kind.private)
	} else {
		key, seed, err = keyblob.ParseDSA(blob, kind.private)
	}
	if err != nil {
		return err
	}
	k.dsa, k.seed = key, seed
	k.bits = (key.P.BitLen() + 63) / 64 * 64
	return nil
}

func (k *KeyPair) loadECDSA(kind blobKind, blob []byte) error {
	c := k.alg.Curve
	key, err := keyblob.ParseECC(blob, c, true, kind.private)
	if err != nil {
		return err
	}
	pub := &ecdsa.PublicKey{
		Curve: c.Elliptic,
		X:     new(big.Int).SetBytes(key.Public[1 : 1+c.Size]),
		Y:     new(big.Int).SetBytes(key.Public[1+c.Size:]),
	}
	k.ecdsa = pub
	if kind.private {
		k.ecdsaD = &ecdsa.PrivateKey{PublicKey: *pub, D: new(big.Int).SetBytes(key.Private)}
		crypto.ZeroBytes(key.Private)
	}
	k.bits = c.Bits
	return nil
}

func (k *KeyPair) loadECDH(kind blobKind, blob []byte) error {
	c := k.alg.Curve
	key, err := keyblob.ParseECC(blob, c, false, kind.private)
	if err != nil {
		return err
	}
	// ParseECC has already validated both halves
	pub, err := c.ECDH.NewPublicKey(key.Public)
	if err != nil {
		return status.Errorf(status.BadData, "%v", err)
	}
	k.ecdhPub = pub
	if kind.private {
		priv, err := c.ECDH.NewPrivateKey(key.Private)
		crypto.ZeroBytes(key.Private)
		if err != nil {
			return status.Errorf(status.BadData, "%v", err)
		}
		k.ecdh = priv
	}
	k.bits = c.Bits
	return nil
}

// Export encodes the key as blobType into out and returns the blob size.
// An empty out is a size query.
func (k *KeyPair) Export(blobType string, out []byte) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.usable(); err != nil {
		return 0, err
	}
	kind, err := k.alg.blobKind(blobType)
	if err != nil {
		return 0, err
	}
	if kind.private && !k.hasPrivate() {
		return 0, status.Errorf(status.InvalidParameter, "%s key has no private half to export", k.alg.Name)
	}

	blob, err := k.encode(kind)
	if err != nil {
		return 0, err
	}
	if kind.private {
		defer crypto.ZeroBytes(blob)
	}
	return limits.CopyOut(out, blob)
}

func (k *KeyPair) encode(kind blobKind) ([]byte, error) {
	switch k.alg.Kind {
	case KindRSA:
		switch {
		case kind.capi && kind.private:
			return keyblob.EncodeCAPIRSAPrivate(k.rsaPriv)
		case kind.capi:
			return keyblob.EncodeCAPIRSAPublic(k.rsaPub), nil
		case kind.private:
			return keyblob.EncodeRSAPrivate(k.rsaPriv, kind.full)
		default:
			return keyblob.EncodeRSAPublic(k.rsaPub), nil
		}
	case KindDSA:
		switch {
		case kind.capi && kind.private:
			return keyblob.EncodeCAPIDSAPrivate(k.dsa, k.seed), nil
		case kind.capi:
			return keyblob.EncodeCAPIDSAPublic(&k.dsa.PublicKey, k.seed), nil
		default:
			return keyblob.EncodeDSA(k.dsa, k.seed, kind.private), nil
		}
	case KindECDSA:
		c := k.alg.Curve
		key := keyblob.ECCKey{Public: ecdsaPoint(c, k.ecdsa)}
		if kind.private {
			key.Private = k.ecdsaD.D.FillBytes(make([]byte, c.Size))
			defer crypto.ZeroBytes(key.Private)
		}
		return keyblob.EncodeECC(c, true, kind.private, key), nil
	case KindECDH:
		key := keyblob.ECCKey{Public: k.ecdhPub.Bytes()}
		if kind.private {
			key.Private = k.ecdh.Bytes()
			defer crypto.ZeroBytes(key.Private)
		}
		return keyblob.EncodeECC(k.alg.Curve, false, kind.private, key), nil
	case KindDH:
		return keyblob.EncodeDH(*k.dh, k.bits/8, kind.private), nil
	}
	return nil, status.Errorf(status.NotSupported, "export %s", k.alg.Name)
}

// ecdsaPoint returns the uncompressed encoding 0x04||X||Y of pub.
func ecdsaPoint(c *keyblob.Curve, pub *ecdsa.PublicKey) []byte {
	point := make([]byte, 1+2*c.Size)
	point[0] = 4
	pub.X.FillBytes(point[1 : 1+c.Size])
	pub.Y.FillBytes(point[1+c.Size:])
	return point
}
