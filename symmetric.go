package cngcrypt

import (
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/opd-ai/cngcrypt/symmetric"
)

// AuthInfo carries the nonce, associated data and tag of a GCM call.
type AuthInfo = symmetric.AuthInfo

// CipherFlags modify Encrypt and Decrypt.
type CipherFlags = symmetric.Flags

// BlockPadding requests PKCS#7 padding of the final block.
const BlockPadding = symmetric.BlockPadding

// SymmetricKey is a cipher key created from a cipher provider.
type SymmetricKey struct {
	key *symmetric.Key
}

// GenerateSymmetricKey creates a key from secret. The key starts in the
// provider's current chaining mode.
func (p *Provider) GenerateSymmetricKey(secret []byte) (*SymmetricKey, error) {
	if err := p.open(FamilyCipher); err != nil {
		return nil, err
	}
	key, err := symmetric.NewKey(p.cipher, secret, p.chainingMode())
	if err != nil {
		return nil, err
	}
	return &SymmetricKey{key: key}, nil
}

// ImportSymmetricKey creates a key from a KeyDataBlob or OpaqueKeyBlob.
func (p *Provider) ImportSymmetricKey(blobType string, blob []byte) (*SymmetricKey, error) {
	if err := p.open(FamilyCipher); err != nil {
		return nil, err
	}
	logger := crypto.NewPackageLogger("cngcrypt", "ImportSymmetricKey").
		WithAlgorithm(p.name).
		WithField("blob_type", blobType)

	switch blobType {
	case keyblob.KeyDataBlob:
		secret, err := keyblob.ParseKeyData(blob)
		if err != nil {
			return nil, err
		}
		defer crypto.ZeroBytes(secret)
		return p.GenerateSymmetricKey(secret)
	case keyblob.OpaqueKeyBlob:
		opaque, err := keyblob.ParseOpaque(blob)
		if err != nil {
			return nil, err
		}
		defer crypto.ZeroBytes(opaque.Secret)
		key, err := p.importOpaque(opaque)
		if err != nil {
			logger.WithError(err, "import_opaque").Debug("rejected opaque key")
			return nil, err
		}
		return key, nil
	}
	return nil, status.Errorf(status.NotSupported, "%s blob for %s", blobType, p.name)
}

func (p *Provider) importOpaque(opaque keyblob.OpaqueKey) (*SymmetricKey, error) {
	if opaque.Algorithm != p.cipher.Name {
		return nil, status.Errorf(status.InvalidParameter, "opaque %s key for a %s provider", opaque.Algorithm, p.cipher.Name)
	}
	mode := symmetric.ModeNone
	if !p.cipher.Stream() {
		var err error
		if mode, err = symmetric.ParseMode(opaque.Mode); err != nil {
			return nil, err
		}
	}
	key, err := symmetric.NewKey(p.cipher, opaque.Secret, mode)
	if err != nil {
		return nil, err
	}
	if mode == symmetric.ModeCFB {
		if err := key.SetMessageBlockLength(opaque.MessageBlockLength); err != nil {
			_ = key.Destroy()
			return nil, err
		}
	}
	return &SymmetricKey{key: key}, nil
}

func (k *SymmetricKey) live() error {
	if k == nil || k.key == nil {
		return status.Errorf(status.InvalidHandle, "nil key")
	}
	return nil
}

// Export encodes the key as a KeyDataBlob or OpaqueKeyBlob into out and
// returns the blob size. An empty out is a size query.
func (k *SymmetricKey) Export(blobType string, out []byte) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	secret, err := k.key.Secret()
	if err != nil {
		return 0, err
	}
	defer crypto.ZeroBytes(secret)

	var blob []byte
	switch blobType {
	case keyblob.KeyDataBlob:
		blob = keyblob.EncodeKeyData(secret)
	case keyblob.OpaqueKeyBlob:
		mode, err := k.key.Mode()
		if err != nil {
			return 0, err
		}
		opaque := keyblob.OpaqueKey{Algorithm: k.key.Algorithm().Name, Mode: mode.String(), Secret: secret}
		if mode == symmetric.ModeCFB {
			if opaque.MessageBlockLength, err = k.key.MessageBlockLength(); err != nil {
				return 0, err
			}
		}
		blob = keyblob.EncodeOpaque(opaque)
	default:
		return 0, status.Errorf(status.NotSupported, "%s blob for %s", blobType, k.key.Algorithm().Name)
	}
	defer crypto.ZeroBytes(blob)
	return limits.CopyOut(out, blob)
}

// Encrypt encrypts in under the key's current chaining mode and returns
// the ciphertext length. A nil or empty out is a size query whenever the
// ciphertext would not be empty. For CBC and CFB a non-nil iv is read and
// overwritten with the chaining value for the next call.
func (k *SymmetricKey) Encrypt(in []byte, auth *AuthInfo, iv, out []byte, flags CipherFlags) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.key.Encrypt(in, auth, iv, out, flags)
}

// Decrypt reverses Encrypt. A GCM tag mismatch is AuthTagMismatch and
// leaves out untouched; malformed block padding is BadData.
func (k *SymmetricKey) Decrypt(in []byte, auth *AuthInfo, iv, out []byte, flags CipherFlags) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.key.Decrypt(in, auth, iv, out, flags)
}

// Duplicate returns an independent copy of the key and its settings.
func (k *SymmetricKey) Duplicate() (*SymmetricKey, error) {
	if err := k.live(); err != nil {
		return nil, err
	}
	dup, err := k.key.Duplicate()
	if err != nil {
		return nil, err
	}
	return &SymmetricKey{key: dup}, nil
}

// Destroy wipes the key. Destroying a nil or already destroyed key is
// InvalidParameter.
func (k *SymmetricKey) Destroy() error {
	if k == nil || k.key == nil {
		return status.Errorf(status.InvalidParameter, "nil key")
	}
	return k.key.Destroy()
}
