package cngcrypt

import (
	"crypto/sha256"
	"testing"

	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/props"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRSAKeyLength(t *testing.T) {
	opts := NewOptions()
	opts.DefaultRSABits = 1024
	require.NoError(t, Configure(opts))
	t.Cleanup(func() { _ = Configure(nil) })

	key, err := mustOpen(t, "RSA", 0).GenerateKeyPair(0)
	require.NoError(t, err)
	defer key.Destroy()

	bits, err := GetPropertyUint32(key, props.KeyLength)
	require.NoError(t, err)
	assert.Equal(t, 1024, bits)

	opts.DefaultRSABits = 100
	assert.ErrorIs(t, Configure(opts), status.InvalidParameter)
	assert.Equal(t, 1024, rsaDefaultBits(), "a rejected configuration must not apply")
}

func TestKeyPairKeyLength(t *testing.T) {
	rsaKey, err := mustOpen(t, "RSA", 0).GenerateKeyPair(512)
	require.NoError(t, err)
	defer rsaKey.Destroy()

	require.NoError(t, SetProperty(rsaKey, props.KeyLength, props.Uint32(1024)))
	bits, err := GetPropertyUint32(rsaKey, props.KeyLength)
	require.NoError(t, err)
	assert.Equal(t, 1024, bits)
	assert.ErrorIs(t, SetProperty(rsaKey, props.KeyLength, props.Uint32(1000)), status.InvalidParameter)

	require.NoError(t, rsaKey.Finalize())
	assert.ErrorIs(t, SetProperty(rsaKey, props.KeyLength, props.Uint32(2048)), status.NotSupported)
	_, err = GetProperty(rsaKey, props.DHParameters, nil)
	assert.ErrorIs(t, err, status.NotSupported)

	ecKey, err := mustOpen(t, "ECDSA_P256", 0).GenerateKeyPair(0)
	require.NoError(t, err)
	defer ecKey.Destroy()
	assert.ErrorIs(t, SetProperty(ecKey, props.KeyLength, props.Uint32(384)), status.NotSupported)
	curve, err := GetPropertyString(ecKey, props.ECCCurveName)
	require.NoError(t, err)
	assert.Equal(t, "nistP256", curve)
}

func TestKeyPairDHParameters(t *testing.T) {
	dh := mustOpen(t, "DH", 0)
	a, err := dh.GenerateKeyPair(768)
	require.NoError(t, err)
	defer a.Destroy()

	size, err := GetProperty(a, props.DHParameters, nil)
	require.NoError(t, err)
	params := make([]byte, size)
	_, err = GetProperty(a, props.DHParameters, params)
	require.NoError(t, err)

	b, err := dh.GenerateKeyPair(768)
	require.NoError(t, err)
	defer b.Destroy()
	require.NoError(t, SetProperty(b, props.DHParameters, params))
	require.NoError(t, b.Finalize())
	assert.ErrorIs(t, SetProperty(b, props.DHParameters, params), status.NotSupported)

	c, err := dh.GenerateKeyPair(1024)
	require.NoError(t, err)
	defer c.Destroy()
	assert.ErrorIs(t, SetProperty(c, props.DHParameters, params), status.InvalidParameter)
}

func TestKeyPairSignThroughProvider(t *testing.T) {
	p := mustOpen(t, "RSA", 0)
	key, err := p.GenerateKeyPair(1024)
	require.NoError(t, err)
	require.NoError(t, key.Finalize())
	defer key.Destroy()

	sum := sha256.Sum256([]byte("message"))
	pad := &PKCS1Padding{Hash: "SHA256"}
	n, err := key.Sign(pad, sum[:], nil)
	require.NoError(t, err)
	require.Equal(t, 128, n)
	sig := make([]byte, n)
	_, err = key.Sign(pad, sum[:], sig)
	require.NoError(t, err)

	size, err := key.Export(keyblob.RSAPublicBlob, nil)
	require.NoError(t, err)
	blob := make([]byte, size)
	_, err = key.Export(keyblob.RSAPublicBlob, blob)
	require.NoError(t, err)

	pub, err := p.ImportKeyPair(keyblob.RSAPublicBlob, blob)
	require.NoError(t, err)
	defer pub.Destroy()
	require.NoError(t, pub.Verify(pad, sum[:], sig))

	sig[0] ^= 0xff
	assert.ErrorIs(t, pub.Verify(pad, sum[:], sig), status.InvalidSignature)

	_, err = pub.Export(keyblob.RSAPrivateBlob, nil)
	assert.ErrorIs(t, err, status.InvalidParameter)

	ct := make([]byte, 128)
	_, err = pub.Encrypt(&OAEPPadding{Hash: "SHA256"}, []byte("secret"), ct)
	require.NoError(t, err)
	pt := make([]byte, 128)
	m, err := key.Decrypt(&OAEPPadding{Hash: "SHA256"}, ct, pt)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(pt[:m]))
}

func TestKeyPairLifecycleThroughProvider(t *testing.T) {
	_, err := mustOpen(t, "AES", 0).GenerateKeyPair(1024)
	assert.ErrorIs(t, err, status.InvalidHandle)

	key, err := mustOpen(t, "ECDSA_P384", 0).GenerateKeyPair(384)
	require.NoError(t, err)

	_, err = key.Sign(nil, make([]byte, 48), make([]byte, 96))
	assert.ErrorIs(t, err, status.InvalidHandle, "unfinalized keys cannot sign")
	require.NoError(t, key.Finalize())

	dup, err := key.Duplicate()
	require.NoError(t, err)
	require.NoError(t, key.Destroy())
	assert.ErrorIs(t, key.Destroy(), status.InvalidParameter)

	sig := make([]byte, 96)
	_, err = dup.Sign(nil, make([]byte, 48), sig)
	require.NoError(t, err)
	require.NoError(t, dup.Verify(nil, make([]byte, 48), sig))
	require.NoError(t, dup.Destroy())

	var nilKey *KeyPair
	assert.ErrorIs(t, nilKey.Destroy(), status.InvalidParameter)
	assert.ErrorIs(t, nilKey.Finalize(), status.InvalidHandle)
}
