package asymmetric

import (
	"crypto/dsa"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rsa"
	"sync"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/sirupsen/logrus"
)

// KeyPair is an asymmetric key. A generated key pair is unusable until
// Finalize; an imported one is usable at once. Exactly one of the material
// fields is set once the key is usable, and the private half may be absent.
type KeyPair struct {
	alg *Algorithm

	mu        sync.RWMutex
	bits      int
	group     *dhGroup
	finalized bool
	destroyed bool

	rsaPub  *rsa.PublicKey
	rsaPriv *rsa.PrivateKey
	dsa     *dsa.PrivateKey
	seed    keyblob.DSSSeed
	ecdsa   *ecdsa.PublicKey
	ecdsaD  *ecdsa.PrivateKey
	ecdhPub *ecdh.PublicKey
	ecdh    *ecdh.PrivateKey
	dh      *keyblob.DHKey
}

// Generate starts an unfinalized key pair of the given size. A zero size
// selects the curve size for elliptic-curve algorithms.
func Generate(alg *Algorithm, bits int) (*KeyPair, error) {
	if bits == 0 && alg.FixedShape() {
		bits = alg.Curve.Bits
	}
	if err := limits.ValidateKeyBits(bits, alg.KeyBits); err != nil {
		return nil, err
	}
	return &KeyPair{alg: alg, bits: bits, seed: keyblob.UnknownSeed}, nil
}

// Algorithm returns the descriptor of the key.
func (k *KeyPair) Algorithm() *Algorithm {
	return k.alg
}

// usable checks the lifecycle under at least a read lock.
func (k *KeyPair) usable() error {
	if k.destroyed {
		return status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	if !k.finalized {
		return status.Errorf(status.InvalidHandle, "%s key not finalized", k.alg.Name)
	}
	return nil
}

// pending checks that the key is still being configured.
func (k *KeyPair) pending() error {
	if k.destroyed {
		return status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	if k.finalized {
		return status.Errorf(status.NotSupported, "%s key already finalized", k.alg.Name)
	}
	return nil
}

// Bits returns the key size in bits.
func (k *KeyPair) Bits() (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.destroyed {
		return 0, status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	return k.bits, nil
}

// SetBits changes the size of an unfinalized key.
func (k *KeyPair) SetBits(bits int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.pending(); err != nil {
		return err
	}
	if k.alg.FixedShape() {
		return status.Errorf(status.NotSupported, "%s has a fixed key size", k.alg.Name)
	}
	if err := limits.ValidateKeyBits(bits, k.alg.KeyBits); err != nil {
		return err
	}
	k.bits = bits
	if k.group != nil && k.group.size*8 != bits {
		k.group = nil
	}
	return nil
}

// Finalized reports whether the key pair is usable.
func (k *KeyPair) Finalized() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.finalized && !k.destroyed
}

// HasPrivate reports whether the key holds its private half.
func (k *KeyPair) HasPrivate() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.hasPrivate()
}

func (k *KeyPair) hasPrivate() bool {
	switch k.alg.Kind {
	case KindRSA:
		return k.rsaPriv != nil
	case KindDSA:
		return k.dsa != nil && k.dsa.X != nil
	case KindECDSA:
		return k.ecdsaD != nil
	case KindECDH:
		return k.ecdh != nil
	case KindDH:
		return k.dh != nil && k.dh.X != nil
	}
	return false
}

// Finalize generates the key material. A second call is InvalidHandle.
func (k *KeyPair) Finalize() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	logger := crypto.NewPackageLogger("asymmetric", "Finalize").WithAlgorithm(k.alg.Name)
	if k.destroyed {
		return status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	if k.finalized {
		return status.Errorf(status.InvalidHandle, "%s key already finalized", k.alg.Name)
	}

	if err := k.generate(); err != nil {
		logger.WithError(err, "generate").Error("key generation failed")
		return err
	}
	k.finalized = true
	logger.WithField("bits", k.bits).Debug("finalized key pair")
	return nil
}

// clear drops every component so that a subsequent load replaces rather
// than merges.
func (k *KeyPair) clear() {
	if k.rsaPriv != nil {
		crypto.WipeBigInt(k.rsaPriv.D)
	}
	if k.dsa != nil && k.dsa.X != nil {
		crypto.WipeBigInt(k.dsa.X)
	}
	if k.ecdsaD != nil {
		crypto.WipeBigInt(k.ecdsaD.D)
	}
	if k.dh != nil && k.dh.X != nil {
		crypto.WipeBigInt(k.dh.X)
	}
	k.rsaPub, k.rsaPriv = nil, nil
	k.dsa = nil
	k.seed = keyblob.UnknownSeed
	k.ecdsa, k.ecdsaD = nil, nil
	k.ecdhPub, k.ecdh = nil, nil
	k.dh = nil
	k.group = nil
}

// Duplicate returns an independent copy of the key pair in its current
// state. Key material is immutable and is shared.
func (k *KeyPair) Duplicate() (*KeyPair, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.destroyed {
		return nil, status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	return &KeyPair{
		alg:       k.alg,
		bits:      k.bits,
		group:     k.group,
		finalized: k.finalized,
		rsaPub:    k.rsaPub,
		rsaPriv:   k.rsaPriv,
		dsa:       k.dsa,
		seed:      k.seed,
		ecdsa:     k.ecdsa,
		ecdsaD:    k.ecdsaD,
		ecdhPub:   k.ecdhPub,
		ecdh:      k.ecdh,
		dh:        k.dh,
	}, nil
}

// Destroy releases the key. A second Destroy is InvalidParameter.
func (k *KeyPair) Destroy() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.destroyed {
		return status.Errorf(status.InvalidParameter, "%s key already destroyed", k.alg.Name)
	}
	// material may be shared with duplicates, so it is dropped, not wiped
	k.rsaPub, k.rsaPriv = nil, nil
	k.dsa = nil
	k.ecdsa, k.ecdsaD = nil, nil
	k.ecdhPub, k.ecdh = nil, nil
	k.dh = nil
	k.destroyed = true
	logrus.WithFields(logrus.Fields{
		"package":   "asymmetric",
		"function":  "Destroy",
		"algorithm": k.alg.Name,
	}).Debug("destroyed key pair")
	return nil
}

// ECDH returns the ECDH key halves for secret agreement. priv is nil for
// public-only keys.
func (k *KeyPair) ECDH() (priv *ecdh.PrivateKey, pub *ecdh.PublicKey, err error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.usable(); err != nil {
		return nil, nil, err
	}
	if k.alg.Kind != KindECDH {
		return nil, nil, status.Errorf(status.NotSupported, "%s is not an ECDH key", k.alg.Name)
	}
	return k.ecdh, k.ecdhPub, nil
}

// DH returns the Diffie-Hellman components and byte size for secret
// agreement. X is nil for public-only keys.
func (k *KeyPair) DH() (keyblob.DHKey, int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.usable(); err != nil {
		return keyblob.DHKey{}, 0, err
	}
	if k.alg.Kind != KindDH {
		return keyblob.DHKey{}, 0, status.Errorf(status.NotSupported, "%s is not a DH key", k.alg.Name)
	}
	return *k.dh, k.bits / 8, nil
}
