package cngcrypt

import (
	"testing"

	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgreementPair(t *testing.T, p *Provider, bits int) *KeyPair {
	t.Helper()
	key, err := p.GenerateKeyPair(bits)
	require.NoError(t, err)
	require.NoError(t, key.Finalize())
	t.Cleanup(func() { _ = key.Destroy() })
	return key
}

func TestSecretAgreementECDH(t *testing.T) {
	p := mustOpen(t, "ECDH_P256", 0)
	alice := newAgreementPair(t, p, 0)
	bob := newAgreementPair(t, p, 0)

	// bob only sees alice's public half
	size, err := alice.Export(keyblob.ECCPublicBlob, nil)
	require.NoError(t, err)
	blob := make([]byte, size)
	_, err = alice.Export(keyblob.ECCPublicBlob, blob)
	require.NoError(t, err)
	alicePub, err := p.ImportKeyPair(keyblob.ECCPublicBlob, blob)
	require.NoError(t, err)

	kdfs := []struct {
		kdf    string
		params *KDFParams
		size   int
	}{
		{KDFHash, &KDFParams{Hash: "SHA256", Prepend: []byte("pre")}, 32},
		{KDFHMAC, &KDFParams{Hash: "SHA384", HMACKey: []byte("k")}, 48},
		{KDFHKDF, &KDFParams{Hash: "SHA256", Salt: []byte("salt"), Info: []byte("ctx")}, 42},
		{KDFTruncate, nil, 32},
	}
	for _, tc := range kdfs {
		t.Run(tc.kdf, func(t *testing.T) {
			s1, err := SecretAgreement(alice, bob)
			require.NoError(t, err)
			defer s1.Destroy()
			s2, err := SecretAgreement(bob, alicePub)
			require.NoError(t, err)
			defer s2.Destroy()

			k1 := make([]byte, tc.size)
			k2 := make([]byte, tc.size)
			_, err = s1.DeriveKey(tc.kdf, tc.params, k1)
			require.NoError(t, err)
			_, err = s2.DeriveKey(tc.kdf, tc.params, k2)
			require.NoError(t, err)
			assert.Equal(t, k1, k2)
		})
	}

	_, err = SecretAgreement(alicePub, bob)
	assert.ErrorIs(t, err, status.InvalidHandle, "a public-only local key cannot agree")
}

func TestSecretAgreementErrors(t *testing.T) {
	p256 := newAgreementPair(t, mustOpen(t, "ECDH_P256", 0), 0)
	p384 := newAgreementPair(t, mustOpen(t, "ECDH_P384", 0), 0)

	_, err := SecretAgreement(p256, p384)
	assert.ErrorIs(t, err, status.InvalidParameter)
	_, err = SecretAgreement(nil, p256)
	assert.ErrorIs(t, err, status.InvalidHandle)

	s, err := SecretAgreement(p256, p256)
	require.NoError(t, err)
	_, err = s.DeriveKey("SP800_108", nil, make([]byte, 16))
	assert.ErrorIs(t, err, status.NotSupported)
	require.NoError(t, s.Destroy())
	assert.ErrorIs(t, s.Destroy(), status.InvalidHandle)

	var nilSecret *Secret
	_, err = nilSecret.DeriveKey(KDFHash, nil, nil)
	assert.ErrorIs(t, err, status.InvalidHandle)
}
