package digest

import (
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/status"
	"golang.org/x/crypto/pbkdf2"
)

// capiPadLen is the pad width of the CryptDeriveKey expansion.
const capiPadLen = 64

// PBKDF2 derives keyLen bytes from password and salt with HMAC-alg as the
// PRF (RFC 2898).
func PBKDF2(alg *Algorithm, password, salt []byte, iterations uint64, keyLen int) ([]byte, error) {
	logger := crypto.NewPackageLogger("digest", "PBKDF2").WithAlgorithm(alg.Name)

	if iterations == 0 {
		return nil, status.Errorf(status.InvalidParameter, "iteration count must be positive")
	}
	if keyLen <= 0 {
		return nil, status.Errorf(status.InvalidParameter, "derived key length must be positive")
	}
	iter, err := crypto.SafeUint64ToInt(iterations)
	if err != nil {
		return nil, status.Errorf(status.InvalidParameter, "%v", err)
	}

	logger.WithField("iterations", iter).WithField("key_len", keyLen).Debug("deriving key")
	return pbkdf2.Key(password, salt, iter, keyLen, alg.New), nil
}

// CapiExpand stretches a finished digest to keyLen bytes the way
// CryptDeriveKey does. Up to one digest is copied verbatim; up to two
// digests are produced by hashing the digest XORed into 0x36 and 0x5c
// pads. Anything longer is InvalidParameter.
func CapiExpand(alg *Algorithm, sum []byte, keyLen int) ([]byte, error) {
	if keyLen <= 0 || keyLen > 2*len(sum) {
		return nil, status.Errorf(status.InvalidParameter, "cannot derive %d bytes from a %d-byte %s digest", keyLen, len(sum), alg.Name)
	}
	if keyLen <= len(sum) {
		return crypto.CloneBytes(sum[:keyLen]), nil
	}

	pad1 := make([]byte, capiPadLen)
	pad2 := make([]byte, capiPadLen)
	for i := 0; i < capiPadLen; i++ {
		var b byte
		if i < len(sum) {
			b = sum[i]
		}
		pad1[i] = 0x36 ^ b
		pad2[i] = 0x5c ^ b
	}
	expanded := append(alg.Sum(pad1), alg.Sum(pad2)...)
	defer crypto.ZeroBytes(expanded)
	return crypto.CloneBytes(expanded[:keyLen]), nil
}
