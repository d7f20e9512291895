package asymmetric

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// dsaDigestSize is the only digest length DSA keys sign.
const dsaDigestSize = 20

// ecdsaDigestSizes are the digest lengths of SHA1, SHA256, SHA384 and
// SHA512, the hashes an ECDSA key signs.
var ecdsaDigestSizes = map[int]bool{20: true, 32: true, 48: true, 64: true}

// SignatureSize returns the length of a signature made by the key.
func (k *KeyPair) SignatureSize() (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.usable(); err != nil {
		return 0, err
	}
	return k.signatureSize()
}

func (k *KeyPair) signatureSize() (int, error) {
	switch k.alg.Kind {
	case KindRSA:
		return k.rsaPub.Size(), nil
	case KindDSA:
		return 2 * ((k.dsa.Q.BitLen() + 7) / 8), nil
	case KindECDSA:
		return 2 * k.alg.Curve.Size, nil
	}
	return 0, status.Errorf(status.NotSupported, "%s cannot sign", k.alg.Name)
}

// Sign signs a precomputed digest into out and returns the signature
// length. An empty out is a size query. RSA keys need a *PKCS1Padding or
// *PSSPadding naming the digest hash. DSA keys take a nil padding; ECDSA
// keys take nil or a *PKCS1Padding whose hash matches the digest length.
func (k *KeyPair) Sign(padding Padding, digest, out []byte) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	logger := crypto.NewPackageLogger("asymmetric", "Sign").WithAlgorithm(k.alg.Name)
	if err := k.usable(); err != nil {
		return 0, err
	}
	size, err := k.signatureSize()
	if err != nil {
		return 0, err
	}
	if err := k.checkSignInput(padding, digest, status.InvalidParameter); err != nil {
		return 0, err
	}
	if pss, ok := padding.(*PSSPadding); ok && pss.SaltLength == 0 {
		return 0, status.Errorf(status.NotSupported, "PSS signatures without salt")
	}
	query, err := limits.Negotiate(out, size)
	if err != nil || query {
		return size, err
	}
	if !k.hasPrivate() {
		return 0, status.Errorf(status.InvalidParameter, "%s key has no private half", k.alg.Name)
	}

	var sig []byte
	switch k.alg.Kind {
	case KindRSA:
		sig, err = k.signRSA(padding, digest)
	case KindDSA:
		var r, s *big.Int
		r, s, err = dsa.Sign(rand.Reader, k.dsa, digest)
		if err == nil {
			sig = joinRS(r, s, size/2)
		}
	case KindECDSA:
		var r, s *big.Int
		r, s, err = ecdsa.Sign(rand.Reader, k.ecdsaD, digest)
		if err == nil {
			sig = joinRS(r, s, size/2)
		}
	}
	if err != nil {
		logger.WithError(err, "sign").Error("signing failed")
		return 0, status.Errorf(status.InvalidParameter, "sign: %v", err)
	}
	copy(out, sig)
	logger.WithField("signature_size", len(sig)).Debug("signed digest")
	return len(sig), nil
}

func (k *KeyPair) signRSA(padding Padding, digest []byte) ([]byte, error) {
	switch p := padding.(type) {
	case *PKCS1Padding:
		_, id, _ := signatureHash(p.Hash)
		return rsa.SignPKCS1v15(rand.Reader, k.rsaPriv, id, digest)
	case *PSSPadding:
		_, id, _ := signatureHash(p.Hash)
		return rsa.SignPSS(rand.Reader, k.rsaPriv, id, digest, &rsa.PSSOptions{SaltLength: p.SaltLength, Hash: id})
	}
	return nil, status.Errorf(status.InvalidParameter, "padding %T cannot sign", padding)
}

// checkSignInput validates the padding and digest shared by Sign and Verify.
// A hint without a hash or a digest of no signable length fails with
// reject: InvalidParameter when signing, InvalidSignature when verifying.
func (k *KeyPair) checkSignInput(padding Padding, digest []byte, reject status.Status) error {
	if len(digest) == 0 {
		return status.Errorf(status.InvalidParameter, "empty digest")
	}
	switch k.alg.Kind {
	case KindRSA:
		return checkRSASignPadding(padding, digest, reject)
	case KindDSA:
		if padding != nil {
			return status.Errorf(status.InvalidParameter, "DSA takes no padding")
		}
		if len(digest) != dsaDigestSize {
			return status.Errorf(status.InvalidParameter, "DSA digest of %d bytes, want %d", len(digest), dsaDigestSize)
		}
	case KindECDSA:
		return checkECDSAHint(padding, digest, reject)
	}
	return nil
}

func checkECDSAHint(padding Padding, sum []byte, reject status.Status) error {
	if !ecdsaDigestSizes[len(sum)] {
		return status.Errorf(reject, "ECDSA digest of %d bytes matches no supported hash", len(sum))
	}
	switch p := padding.(type) {
	case nil:
		return nil
	case *PKCS1Padding:
		alg, err := digest.Lookup(p.Hash)
		if err != nil || alg.Size != len(sum) {
			return status.Errorf(status.InvalidParameter, "ECDSA hint %q does not match a %d-byte digest", p.Hash, len(sum))
		}
		return nil
	}
	return status.Errorf(status.InvalidParameter, "ECDSA takes no %T", padding)
}

func checkRSASignPadding(padding Padding, digest []byte, reject status.Status) error {
	var hashName string
	switch p := padding.(type) {
	case nil:
		return status.Errorf(status.InvalidParameter, "RSA signatures need a padding")
	case *PKCS1Padding:
		if p.Hash == "" {
			return status.Errorf(reject, "PKCS1 signature hint names no hash")
		}
		hashName = p.Hash
	case *PSSPadding:
		if p.SaltLength < 0 {
			return status.Errorf(status.InvalidParameter, "negative PSS salt length")
		}
		hashName = p.Hash
	default:
		return status.Errorf(status.InvalidParameter, "padding %T cannot sign", padding)
	}
	alg, _, err := signatureHash(hashName)
	if err != nil {
		return err
	}
	if len(digest) != alg.Size {
		return status.Errorf(status.InvalidParameter, "%s digest of %d bytes, want %d", alg.Name, len(digest), alg.Size)
	}
	return nil
}

// Verify checks sig over a precomputed digest. A signature that does not
// verify is InvalidSignature.
func (k *KeyPair) Verify(padding Padding, digest, sig []byte) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	logger := crypto.NewPackageLogger("asymmetric", "Verify").WithAlgorithm(k.alg.Name)
	if err := k.usable(); err != nil {
		return err
	}
	size, err := k.signatureSize()
	if err != nil {
		return err
	}
	if err := k.checkSignInput(padding, digest, status.InvalidSignature); err != nil {
		logger.WithError(err, "check_input").Warn("signature rejected")
		return err
	}

	var valid bool
	if len(sig) == size {
		switch k.alg.Kind {
		case KindRSA:
			valid = k.verifyRSA(padding, digest, sig)
		case KindDSA:
			r, s := splitRS(sig)
			valid = dsa.Verify(&k.dsa.PublicKey, digest, r, s)
		case KindECDSA:
			r, s := splitRS(sig)
			valid = ecdsa.Verify(k.ecdsa, digest, r, s)
		}
	}
	if !valid {
		logger.WithField("signature_size", len(sig)).Warn("signature rejected")
		return status.Errorf(status.InvalidSignature, "%s signature does not verify", k.alg.Name)
	}
	logger.Debug("signature verified")
	return nil
}

func (k *KeyPair) verifyRSA(padding Padding, digest, sig []byte) bool {
	switch p := padding.(type) {
	case *PKCS1Padding:
		_, id, _ := signatureHash(p.Hash)
		return rsa.VerifyPKCS1v15(k.rsaPub, id, digest, sig) == nil
	case *PSSPadding:
		_, id, _ := signatureHash(p.Hash)
		// a zero salt length is detected from the signature
		opts := &rsa.PSSOptions{SaltLength: p.SaltLength, Hash: id}
		return rsa.VerifyPSS(k.rsaPub, id, digest, sig, opts) == nil
	}
	return false
}

// joinRS encodes r and s as fixed-width big-endian halves.
func joinRS(r, s *big.Int, half int) []byte {
	sig := make([]byte, 2*half)
	r.FillBytes(sig[:half])
	s.FillBytes(sig[half:])
	return sig
}

func splitRS(sig []byte) (r, s *big.Int) {
	half := len(sig) / 2
	return new(big.Int).SetBytes(sig[:half]), new(big.Int).SetBytes(sig[half:])
}
