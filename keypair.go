package cngcrypt

import (
	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/status"
)

// Padding selects the RSA padding of a signature or encryption call.
type Padding = asymmetric.Padding

// Padding schemes.
type (
	PKCS1Padding = asymmetric.PKCS1Padding
	PSSPadding   = asymmetric.PSSPadding
	OAEPPadding  = asymmetric.OAEPPadding
	NoPadding    = asymmetric.NoPadding
)

// KeyPair is an asymmetric key created from an asymmetric provider.
type KeyPair struct {
	pair *asymmetric.KeyPair
}

// GenerateKeyPair starts an unfinalized key pair of the given size. Zero
// bits selects the curve size for elliptic-curve providers and the
// configured default for RSA.
func (p *Provider) GenerateKeyPair(bits int) (*KeyPair, error) {
	if err := p.open(FamilyAsymmetric); err != nil {
		return nil, err
	}
	if bits == 0 && p.asym.Kind == asymmetric.KindRSA {
		bits = rsaDefaultBits()
	}
	pair, err := asymmetric.Generate(p.asym, bits)
	if err != nil {
		return nil, err
	}
	crypto.NewPackageLogger("cngcrypt", "GenerateKeyPair").
		WithAlgorithm(p.name).
		WithField("bits", bits).
		Debug("created unfinalized key pair")
	return &KeyPair{pair: pair}, nil
}

// ImportKeyPair decodes a key blob into a new, usable key pair.
func (p *Provider) ImportKeyPair(blobType string, blob []byte) (*KeyPair, error) {
	if err := p.open(FamilyAsymmetric); err != nil {
		return nil, err
	}
	pair, err := asymmetric.Import(p.asym, blobType, blob)
	if err != nil {
		return nil, err
	}
	return &KeyPair{pair: pair}, nil
}

func (k *KeyPair) live() error {
	if k == nil || k.pair == nil {
		return status.Errorf(status.InvalidHandle, "nil key pair")
	}
	return nil
}

// Finalize generates the key material. A second call is InvalidHandle.
func (k *KeyPair) Finalize() error {
	if err := k.live(); err != nil {
		return err
	}
	return k.pair.Finalize()
}

// Export encodes the key as blobType into out and returns the blob size.
func (k *KeyPair) Export(blobType string, out []byte) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.pair.Export(blobType, out)
}

// Sign signs a precomputed digest into out and returns the signature
// length.
func (k *KeyPair) Sign(padding Padding, digest, out []byte) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.pair.Sign(padding, digest, out)
}

// Verify checks a signature over a precomputed digest.
func (k *KeyPair) Verify(padding Padding, digest, sig []byte) error {
	if err := k.live(); err != nil {
		return err
	}
	return k.pair.Verify(padding, digest, sig)
}

// Encrypt encrypts in with an RSA public key.
func (k *KeyPair) Encrypt(padding Padding, in, out []byte) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.pair.Encrypt(padding, in, out)
}

// Decrypt decrypts in with an RSA private key.
func (k *KeyPair) Decrypt(padding Padding, in, out []byte) (int, error) {
	if err := k.live(); err != nil {
		return 0, err
	}
	return k.pair.Decrypt(padding, in, out)
}

// Duplicate returns an independent handle on the same key.
func (k *KeyPair) Duplicate() (*KeyPair, error) {
	if err := k.live(); err != nil {
		return nil, err
	}
	dup, err := k.pair.Duplicate()
	if err != nil {
		return nil, err
	}
	return &KeyPair{pair: dup}, nil
}

// Destroy releases the key pair. Destroying a nil or already destroyed
// key pair is InvalidParameter.
func (k *KeyPair) Destroy() error {
	if k == nil || k.pair == nil {
		return status.Errorf(status.InvalidParameter, "nil key pair")
	}
	return k.pair.Destroy()
}
