package symmetric

import (
	"crypto/cipher"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// aead builds the per-call GCM instance. Nonces other than 12 bytes are
// only accepted with a full 16-byte tag.
func (k *Key) aead(auth *AuthInfo, iv []byte, flags Flags) (cipher.AEAD, error) {
	if auth == nil {
		return nil, status.Errorf(status.InvalidParameter, "GCM requires auth info")
	}
	if iv != nil {
		return nil, status.Errorf(status.InvalidParameter, "GCM takes its nonce from auth info")
	}
	if flags&BlockPadding != 0 {
		return nil, status.Errorf(status.InvalidParameter, "GCM does not pad")
	}
	if err := limits.ValidateAuthTag(len(auth.Tag)); err != nil {
		return nil, err
	}
	switch {
	case len(auth.Nonce) == limits.GCMNonceSize:
		return cipher.NewGCMWithTagSize(k.block, len(auth.Tag))
	case len(auth.Nonce) > 0 && len(auth.Tag) == limits.MaxAuthTag:
		return cipher.NewGCMWithNonceSize(k.block, len(auth.Nonce))
	default:
		return nil, status.Errorf(status.InvalidParameter, "nonce of %d bytes with a %d-byte tag", len(auth.Nonce), len(auth.Tag))
	}
}

func (k *Key) sealGCM(in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	aead, err := k.aead(auth, iv, flags)
	if err != nil {
		return 0, err
	}
	need := len(in)
	if need > 0 {
		query, err := limits.Negotiate(out, need)
		if err != nil || query {
			return need, err
		}
	}

	sealed := aead.Seal(nil, auth.Nonce, in, auth.AuthData)
	copy(out, sealed[:need])
	copy(auth.Tag, sealed[need:])
	return need, nil
}

func (k *Key) openGCM(in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	aead, err := k.aead(auth, iv, flags)
	if err != nil {
		return 0, err
	}
	need := len(in)
	if need > 0 {
		query, err := limits.Negotiate(out, need)
		if err != nil || query {
			return need, err
		}
	}

	sealed := make([]byte, 0, need+len(auth.Tag))
	sealed = append(sealed, in...)
	sealed = append(sealed, auth.Tag...)
	plain, err := aead.Open(nil, auth.Nonce, sealed, auth.AuthData)
	if err != nil {
		crypto.NewPackageLogger("symmetric", "openGCM").
			WithAlgorithm(k.alg.Name).
			WithFields(crypto.SecureFieldHash(auth.Tag, "tag")).
			Warn("GCM tag mismatch")
		return 0, status.Errorf(status.AuthTagMismatch, "GCM authentication failed")
	}
	copy(out, plain)
	crypto.ZeroBytes(plain)
	return need, nil
}
