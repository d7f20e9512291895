package cngcrypt

import (
	"github.com/opd-ai/cngcrypt/agreement"
	"github.com/opd-ai/cngcrypt/status"
)

// KDFParams configures Secret.DeriveKey.
type KDFParams = agreement.KDFParams

// Key derivation functions.
const (
	KDFTruncate = agreement.KDFTruncate
	KDFHash     = agreement.KDFHash
	KDFHMAC     = agreement.KDFHMAC
	KDFHKDF     = agreement.KDFHKDF
)

// Secret is the result of a DH or ECDH agreement.
type Secret struct {
	secret *agreement.Secret
}

// SecretAgreement combines local's private key with peer's public key.
func SecretAgreement(local, peer *KeyPair) (*Secret, error) {
	if local == nil || local.pair == nil || peer == nil || peer.pair == nil {
		return nil, status.Errorf(status.InvalidHandle, "nil key pair")
	}
	s, err := agreement.Agree(local.pair, peer.pair)
	if err != nil {
		return nil, err
	}
	return &Secret{secret: s}, nil
}

// DeriveKey turns the shared secret into key material with kdf.
func (s *Secret) DeriveKey(kdf string, params *KDFParams, out []byte) (int, error) {
	if s == nil || s.secret == nil {
		return 0, status.Errorf(status.InvalidHandle, "nil secret")
	}
	return s.secret.DeriveKey(kdf, params, out)
}

// Destroy wipes the shared secret. A second Destroy is InvalidHandle.
func (s *Secret) Destroy() error {
	if s == nil || s.secret == nil {
		return status.Errorf(status.InvalidHandle, "nil secret")
	}
	return s.secret.Destroy()
}
