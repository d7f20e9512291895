package asymmetric

import (
	gocrypto "crypto"

	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/status"
)

// Padding selects the RSA padding scheme of a Sign, Verify, Encrypt or
// Decrypt call. It is one of *PKCS1Padding, *PSSPadding, *OAEPPadding or
// *NoPadding.
type Padding interface {
	padding()
}

// PKCS1Padding is PKCS #1 v1.5 padding. For signatures Hash names the
// digest algorithm and is required.
type PKCS1Padding struct {
	Hash string
}

// PSSPadding is RSASSA-PSS with the given digest and salt length.
type PSSPadding struct {
	Hash       string
	SaltLength int
}

// OAEPPadding is RSAES-OAEP with the given digest and optional label.
type OAEPPadding struct {
	Hash  string
	Label []byte
}

// NoPadding is raw RSA on modulus-sized blocks.
type NoPadding struct{}

func (*PKCS1Padding) padding() {}
func (*PSSPadding) padding()   {}
func (*OAEPPadding) padding()  {}
func (*NoPadding) padding()    {}

// signatureHash resolves a padding hash name to a digest usable by
// crypto/rsa.
func signatureHash(name string) (*digest.Algorithm, gocrypto.Hash, error) {
	alg, err := digest.Lookup(name)
	if err != nil {
		return nil, 0, status.Errorf(status.NotSupported, "padding hash %q", name)
	}
	switch alg.ID {
	case gocrypto.MD5, gocrypto.SHA1, gocrypto.SHA256, gocrypto.SHA384, gocrypto.SHA512:
		return alg, alg.ID, nil
	}
	return nil, 0, status.Errorf(status.NotSupported, "%s cannot be used for RSA padding", name)
}
