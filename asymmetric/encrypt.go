package asymmetric

import (
	"crypto/rand"
	"crypto/rsa"
	"hash"
	"math/big"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// pkcs1Overhead is the minimum padding PKCS #1 v1.5 encryption adds.
const pkcs1Overhead = 11

// oaepHash resolves the digest of an OAEP padding. An empty name is SHA1.
func oaepHash(name string) (hash.Hash, error) {
	if name == "" {
		name = digest.SHA1
	}
	alg, _, err := signatureHash(name)
	if err != nil {
		return nil, err
	}
	return alg.New(), nil
}

func (k *KeyPair) checkCipher() error {
	if err := k.usable(); err != nil {
		return err
	}
	if k.alg.Kind != KindRSA {
		return status.Errorf(status.NotSupported, "%s cannot encrypt", k.alg.Name)
	}
	return nil
}

// Encrypt encrypts in with the public key and returns the ciphertext
// length, which is always the modulus size. An empty out is a size query.
func (k *KeyPair) Encrypt(padding Padding, in, out []byte) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	logger := crypto.NewPackageLogger("asymmetric", "Encrypt").WithAlgorithm(k.alg.Name)
	if err := k.checkCipher(); err != nil {
		return 0, err
	}
	size := k.rsaPub.Size()

	var maxIn int
	switch p := padding.(type) {
	case *NoPadding:
		maxIn = size
	case *PKCS1Padding:
		maxIn = size - pkcs1Overhead
	case *OAEPPadding:
		h, err := oaepHash(p.Hash)
		if err != nil {
			return 0, err
		}
		maxIn = size - 2*h.Size() - 2
	case nil:
		return 0, status.Errorf(status.InvalidParameter, "RSA encryption needs a padding")
	default:
		return 0, status.Errorf(status.InvalidParameter, "padding %T cannot encrypt", padding)
	}
	if len(in) > maxIn {
		return 0, status.Errorf(status.InvalidParameter, "%d-byte message exceeds %d bytes", len(in), maxIn)
	}
	query, err := limits.Negotiate(out, size)
	if err != nil || query {
		return size, err
	}

	var ct []byte
	switch p := padding.(type) {
	case *NoPadding:
		ct, err = k.rawPublic(in)
	case *PKCS1Padding:
		ct, err = rsa.EncryptPKCS1v15(rand.Reader, k.rsaPub, in)
	case *OAEPPadding:
		h, _ := oaepHash(p.Hash)
		ct, err = rsa.EncryptOAEP(h, rand.Reader, k.rsaPub, in, p.Label)
	}
	if err != nil {
		logger.WithError(err, "encrypt").Debug("encryption rejected")
		return 0, status.Errorf(status.InvalidParameter, "encrypt: %v", err)
	}
	copy(out, ct)
	logger.WithFields(crypto.SizeFields("plaintext", in)).Debug("encrypted message")
	return len(ct), nil
}

// Decrypt decrypts in with the private key and returns the plaintext
// length. A size query reports the modulus size; the real call reports the
// exact plaintext length. Undecodable ciphertext is BadData.
func (k *KeyPair) Decrypt(padding Padding, in, out []byte) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	logger := crypto.NewPackageLogger("asymmetric", "Decrypt").WithAlgorithm(k.alg.Name)
	if err := k.checkCipher(); err != nil {
		return 0, err
	}
	size := k.rsaPub.Size()

	switch p := padding.(type) {
	case *NoPadding, *PKCS1Padding:
	case *OAEPPadding:
		if _, err := oaepHash(p.Hash); err != nil {
			return 0, err
		}
	case nil:
		return 0, status.Errorf(status.InvalidParameter, "RSA decryption needs a padding")
	default:
		return 0, status.Errorf(status.InvalidParameter, "padding %T cannot decrypt", padding)
	}
	if len(in) != size {
		return 0, status.Errorf(status.InvalidParameter, "%d-byte ciphertext for a %d-byte modulus", len(in), size)
	}
	if len(out) == 0 {
		return size, nil
	}
	if !k.hasPrivate() {
		return 0, status.Errorf(status.InvalidParameter, "%s key has no private half", k.alg.Name)
	}

	var (
		pt  []byte
		err error
	)
	switch p := padding.(type) {
	case *NoPadding:
		pt, err = k.rawPrivate(in)
	case *PKCS1Padding:
		pt, err = rsa.DecryptPKCS1v15(nil, k.rsaPriv, in)
	case *OAEPPadding:
		h, _ := oaepHash(p.Hash)
		pt, err = rsa.DecryptOAEP(h, nil, k.rsaPriv, in, p.Label)
	}
	if err != nil {
		logger.WithError(err, "decrypt").Warn("ciphertext rejected")
		return 0, status.Errorf(status.BadData, "decrypt: %v", err)
	}
	defer crypto.ZeroBytes(pt)
	return limits.CopyOut(out, pt)
}

// rawPublic computes m^e mod n on a modulus-sized block.
func (k *KeyPair) rawPublic(in []byte) ([]byte, error) {
	m := new(big.Int).SetBytes(in)
	if m.Cmp(k.rsaPub.N) >= 0 {
		return nil, status.Errorf(status.InvalidParameter, "message representative out of range")
	}
	c := m.Exp(m, big.NewInt(int64(k.rsaPub.E)), k.rsaPub.N)
	return c.FillBytes(make([]byte, k.rsaPub.Size())), nil
}

// rawPrivate computes c^d mod n on a modulus-sized block.
func (k *KeyPair) rawPrivate(in []byte) ([]byte, error) {
	c := new(big.Int).SetBytes(in)
	if c.Cmp(k.rsaPub.N) >= 0 {
		return nil, status.Errorf(status.BadData, "ciphertext representative out of range")
	}
	m := c.Exp(c, k.rsaPriv.D, k.rsaPub.N)
	defer crypto.WipeBigInt(m)
	return m.FillBytes(make([]byte, k.rsaPub.Size())), nil
}
