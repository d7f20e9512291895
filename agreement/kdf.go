package agreement

import (
	"crypto/hmac"
	"io"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
	"golang.org/x/crypto/hkdf"
)

// Key derivation functions accepted by DeriveKey.
const (
	KDFTruncate = "TRUNCATE"
	KDFHash     = "HASH"
	KDFHMAC     = "HMAC"
	KDFHKDF     = "HKDF"
)

// KDFParams configures a derivation. A nil *KDFParams selects the
// defaults. Hash defaults to SHA1. Prepend and Append surround the shared
// value for HASH and HMAC. HMACKey keys the HMAC KDF; without one the
// shared value is the key. Salt and Info feed HKDF.
type KDFParams struct {
	Hash    string
	Prepend []byte
	Append  []byte
	HMACKey []byte
	Salt    []byte
	Info    []byte
}

func (p *KDFParams) hash() (*digest.Algorithm, error) {
	name := digest.SHA1
	if p != nil && p.Hash != "" {
		name = p.Hash
	}
	alg, err := digest.Lookup(name)
	if err != nil {
		return nil, status.Errorf(status.NotSupported, "KDF hash %q", name)
	}
	return alg, nil
}

// DeriveKey runs kdf over the shared value and writes the result to out.
// An empty out reports the natural output size: the secret length for
// TRUNCATE and the digest length otherwise. HASH and HMAC output is
// truncated to a shorter out; HKDF fills out completely.
func (s *Secret) DeriveKey(kdf string, params *KDFParams, out []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := crypto.NewPackageLogger("agreement", "DeriveKey").WithField("kdf", kdf)
	if s.destroyed {
		return 0, status.Errorf(status.InvalidHandle, "secret destroyed")
	}

	if kdf == KDFTruncate {
		return limits.CopyOut(out, s.z)
	}

	var derive func(alg *digest.Algorithm) []byte
	switch kdf {
	case KDFHash:
		derive = func(alg *digest.Algorithm) []byte {
			return alg.Sum(s.prefixed(params)...)
		}
	case KDFHMAC:
		derive = func(alg *digest.Algorithm) []byte {
			key := s.z
			if params != nil && params.HMACKey != nil {
				key = params.HMACKey
			}
			mac := hmac.New(alg.New, key)
			for _, part := range s.prefixed(params) {
				mac.Write(part)
			}
			return mac.Sum(nil)
		}
	case KDFHKDF:
	default:
		return 0, status.Errorf(status.NotSupported, "key derivation function %q", kdf)
	}

	alg, err := params.hash()
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return alg.Size, nil
	}

	if kdf == KDFHKDF {
		var salt, info []byte
		if params != nil {
			salt, info = params.Salt, params.Info
		}
		r := hkdf.New(alg.New, s.z, salt, info)
		if _, err := io.ReadFull(r, out); err != nil {
			return 0, status.Errorf(status.InvalidParameter, "HKDF output of %d bytes: %v", len(out), err)
		}
		logger.WithAlgorithm(alg.Name).WithField("derived_size", len(out)).Debug("derived key")
		return len(out), nil
	}

	sum := derive(alg)
	defer crypto.ZeroBytes(sum)
	n := copy(out, sum)
	logger.WithAlgorithm(alg.Name).WithField("derived_size", n).Debug("derived key")
	return n, nil
}

// prefixed returns the HASH and HMAC message parts in order.
func (s *Secret) prefixed(params *KDFParams) [][]byte {
	if params == nil {
		return [][]byte{s.z}
	}
	return [][]byte{params.Prepend, s.z, params.Append}
}
