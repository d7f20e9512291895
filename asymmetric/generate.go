package asymmetric

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/status"
)

// dsaQBits is the subgroup size of every DSA key the provider handles.
const dsaQBits = 160

// SetDHParameters installs the group of an unfinalized DH key from a DH
// parameters blob. The parameter size must match the key length.
func (k *KeyPair) SetDHParameters(blob []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.pending(); err != nil {
		return err
	}
	if k.alg.Kind != KindDH {
		return status.Errorf(status.NotSupported, "%s takes no DH parameters", k.alg.Name)
	}
	p, g, size, err := keyblob.ParseDHParameters(blob)
	if err != nil {
		return err
	}
	if size*8 != k.bits {
		return status.Errorf(status.InvalidParameter, "DH parameters of %d bits for a %d-bit key", size*8, k.bits)
	}
	k.group = &dhGroup{p: p, g: g, size: size}
	return nil
}

// DHParameters returns the DH parameters blob of the key's group.
func (k *KeyPair) DHParameters() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.destroyed {
		return nil, status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	if k.alg.Kind != KindDH {
		return nil, status.Errorf(status.NotSupported, "%s has no DH parameters", k.alg.Name)
	}
	if k.dh != nil {
		return keyblob.EncodeDHParameters(k.dh.P, k.dh.G, k.bits/8), nil
	}
	group, err := k.dhGroup()
	if err != nil {
		return nil, err
	}
	return keyblob.EncodeDHParameters(group.p, group.g, group.size), nil
}

// dhGroup returns the explicit group or the well-known one for the size.
func (k *KeyPair) dhGroup() (*dhGroup, error) {
	if k.group != nil {
		return k.group, nil
	}
	group, ok := defaultGroup(k.bits)
	if !ok {
		return nil, status.Errorf(status.InvalidParameter, "no default DH group of %d bits, set DHParameters first", k.bits)
	}
	return group, nil
}

// generate fills in fresh key material. It runs under the write lock.
func (k *KeyPair) generate() error {
	switch k.alg.Kind {
	case KindRSA:
		priv, err := rsa.GenerateKey(rand.Reader, k.bits)
		if err != nil {
			return fmt.Errorf("generate RSA key: %w", err)
		}
		k.rsaPriv, k.rsaPub = priv, &priv.PublicKey
	case KindDSA:
		priv := new(dsa.PrivateKey)
		if err := generateDSAParameters(&priv.Parameters, k.bits); err != nil {
			return err
		}
		if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
			return fmt.Errorf("generate DSA key: %w", err)
		}
		k.dsa = priv
		k.seed = keyblob.UnknownSeed
	case KindECDSA:
		priv, err := ecdsa.GenerateKey(k.alg.Curve.Elliptic, rand.Reader)
		if err != nil {
			return fmt.Errorf("generate ECDSA key: %w", err)
		}
		k.ecdsaD, k.ecdsa = priv, &priv.PublicKey
	case KindECDH:
		priv, err := k.alg.Curve.ECDH.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate ECDH key: %w", err)
		}
		k.ecdh, k.ecdhPub = priv, priv.PublicKey()
	case KindDH:
		group, err := k.dhGroup()
		if err != nil {
			return err
		}
		x, err := randomExponent(group.p)
		if err != nil {
			return err
		}
		k.dh = &keyblob.DHKey{P: group.p, G: group.g, Y: new(big.Int).Exp(group.g, x, group.p), X: x}
		k.group = group
	default:
		return status.Errorf(status.NotSupported, "generate %s", k.alg.Name)
	}
	return nil
}

// randomExponent picks x uniformly with 1 < x < p-1.
func randomExponent(p *big.Int) (*big.Int, error) {
	limit := new(big.Int).Sub(p, big.NewInt(3))
	x, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("generate DH exponent: %w", err)
	}
	return x.Add(x, big.NewInt(2)), nil
}

// generateDSAParameters builds a group with a 160-bit q and a prime p of
// the requested size. crypto/dsa only covers 1024 bits among the sizes a
// DSA key may take, so smaller groups are searched for here.
func generateDSAParameters(params *dsa.Parameters, bits int) error {
	if bits == 1024 {
		if err := dsa.GenerateParameters(params, rand.Reader, dsa.L1024N160); err != nil {
			return fmt.Errorf("generate DSA parameters: %w", err)
		}
		return nil
	}

	q, err := rand.Prime(rand.Reader, dsaQBits)
	if err != nil {
		return fmt.Errorf("generate DSA subgroup: %w", err)
	}
	twoQ := new(big.Int).Lsh(q, 1)
	one := big.NewInt(1)
	buf := make([]byte, bits/8)

	var p *big.Int
	for attempt := 0; attempt < 64*bits; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate DSA prime: %w", err)
		}
		buf[0] |= 0x80
		candidate := new(big.Int).SetBytes(buf)
		// p = candidate - (candidate mod 2q) + 1, so q divides p-1
		rem := new(big.Int).Mod(candidate, twoQ)
		candidate.Sub(candidate, rem).Add(candidate, one)
		if candidate.BitLen() != bits || !candidate.ProbablyPrime(20) {
			continue
		}
		p = candidate
		break
	}
	if p == nil {
		return status.Errorf(status.InvalidParameter, "no %d-bit DSA prime found", bits)
	}

	e := new(big.Int).Div(new(big.Int).Sub(p, one), q)
	for h := big.NewInt(2); h.Cmp(p) < 0; h.Add(h, one) {
		g := new(big.Int).Exp(h, e, p)
		if g.Cmp(one) != 0 {
			params.P, params.Q, params.G = p, q, g
			return nil
		}
	}
	return status.Errorf(status.InvalidParameter, "no DSA generator found")
}
