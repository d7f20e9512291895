package asymmetric

import (
	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// Algorithm names accepted by Lookup.
const (
	RSA       = "RSA"
	DSA       = "DSA"
	ECDSAP256 = "ECDSA_P256"
	ECDSAP384 = "ECDSA_P384"
	ECDHP256  = "ECDH_P256"
	ECDHP384  = "ECDH_P384"
	DH        = "DH"
)

// Kind is the key family of an asymmetric algorithm.
type Kind int

// Key families.
const (
	KindRSA Kind = iota
	KindDSA
	KindECDSA
	KindECDH
	KindDH
)

// Supported padding scheme bits reported by the PaddingSchemes property.
const (
	SupportedPadPKCS1Enc = 0x00000002
	SupportedPadPKCS1Sig = 0x00000004
	SupportedPadOAEP     = 0x00000008
	SupportedPadPSS      = 0x00000010
)

// Algorithm describes one asymmetric algorithm.
type Algorithm struct {
	Name    string
	Kind    Kind
	KeyBits limits.Range
	// Curve is set for the elliptic-curve algorithms.
	Curve *keyblob.Curve
}

// FixedShape reports whether the key size is determined by the algorithm.
func (a *Algorithm) FixedShape() bool {
	return a.Curve != nil
}

// PaddingSchemes returns the supported padding bitmask, or zero when the
// algorithm takes no padding.
func (a *Algorithm) PaddingSchemes() int {
	if a.Kind != KindRSA {
		return 0
	}
	return SupportedPadPKCS1Enc | SupportedPadPKCS1Sig | SupportedPadOAEP | SupportedPadPSS
}

var algorithms = map[string]*Algorithm{
	RSA:       {Name: RSA, Kind: KindRSA, KeyBits: limits.Range{Min: 512, Max: 16384, Increment: 64}},
	DSA:       {Name: DSA, Kind: KindDSA, KeyBits: limits.Range{Min: 512, Max: 1024, Increment: 64}},
	ECDSAP256: {Name: ECDSAP256, Kind: KindECDSA, KeyBits: limits.Fixed(256), Curve: keyblob.P256},
	ECDSAP384: {Name: ECDSAP384, Kind: KindECDSA, KeyBits: limits.Fixed(384), Curve: keyblob.P384},
	ECDHP256:  {Name: ECDHP256, Kind: KindECDH, KeyBits: limits.Fixed(256), Curve: keyblob.P256},
	ECDHP384:  {Name: ECDHP384, Kind: KindECDH, KeyBits: limits.Fixed(384), Curve: keyblob.P384},
	DH:        {Name: DH, Kind: KindDH, KeyBits: limits.Range{Min: 512, Max: 4096, Increment: 64}},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (*Algorithm, error) {
	alg, ok := algorithms[name]
	if !ok {
		return nil, status.Errorf(status.NotFound, "asymmetric algorithm %q", name)
	}
	return alg, nil
}
