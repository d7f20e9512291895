package agreement

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"testing"

	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T, name string, bits int) *asymmetric.KeyPair {
	t.Helper()
	alg, err := asymmetric.Lookup(name)
	require.NoError(t, err)
	k, err := asymmetric.Generate(alg, bits)
	require.NoError(t, err)
	require.NoError(t, k.Finalize())
	return k
}

// publicHalf re-imports the public half of k, the way a peer key arrives.
func publicHalf(t *testing.T, k *asymmetric.KeyPair) *asymmetric.KeyPair {
	t.Helper()
	size, err := k.Export(keyblob.PublicBlob, nil)
	require.NoError(t, err)
	blob := make([]byte, size)
	_, err = k.Export(keyblob.PublicBlob, blob)
	require.NoError(t, err)
	pub, err := asymmetric.Import(k.Algorithm(), keyblob.PublicBlob, blob)
	require.NoError(t, err)
	return pub
}

func rawSecret(t *testing.T, s *Secret) []byte {
	t.Helper()
	n, err := s.DeriveKey(KDFTruncate, nil, nil)
	require.NoError(t, err)
	out := make([]byte, n)
	_, err = s.DeriveKey(KDFTruncate, nil, out)
	require.NoError(t, err)
	return out
}

func TestAgreementSymmetry(t *testing.T) {
	cases := []struct {
		alg  string
		bits int
		size int
	}{
		{asymmetric.ECDHP256, 0, 32},
		{asymmetric.ECDHP384, 0, 48},
		{asymmetric.DH, 768, 96},
	}
	for _, tc := range cases {
		t.Run(tc.alg, func(t *testing.T) {
			a := newPair(t, tc.alg, tc.bits)
			b := newPair(t, tc.alg, tc.bits)

			ab, err := Agree(a, publicHalf(t, b))
			require.NoError(t, err)
			ba, err := Agree(b, publicHalf(t, a))
			require.NoError(t, err)

			za, zb := rawSecret(t, ab), rawSecret(t, ba)
			assert.Len(t, za, tc.size)
			assert.Equal(t, za, zb)

			size, err := ab.Size()
			require.NoError(t, err)
			assert.Equal(t, tc.size, size)
		})
	}
}

func TestAgreeErrors(t *testing.T) {
	a := newPair(t, asymmetric.ECDHP256, 0)
	other := newPair(t, asymmetric.ECDHP384, 0)
	signing := newPair(t, asymmetric.ECDSAP256, 0)

	_, err := Agree(nil, a)
	assert.ErrorIs(t, err, status.InvalidHandle)

	// a public-only local key cannot agree
	_, err = Agree(publicHalf(t, a), a)
	assert.ErrorIs(t, err, status.InvalidHandle)

	_, err = Agree(a, other)
	assert.ErrorIs(t, err, status.InvalidParameter)

	_, err = Agree(signing, signing)
	assert.ErrorIs(t, err, status.NotSupported)

	alg, _ := asymmetric.Lookup(asymmetric.ECDHP256)
	pending, err := asymmetric.Generate(alg, 0)
	require.NoError(t, err)
	_, err = Agree(pending, a)
	assert.ErrorIs(t, err, status.InvalidHandle)

	dead := newPair(t, asymmetric.ECDHP256, 0)
	require.NoError(t, dead.Destroy())
	_, err = Agree(dead, a)
	assert.ErrorIs(t, err, status.InvalidHandle)
}

func TestDeriveKeyHash(t *testing.T) {
	a := newPair(t, asymmetric.ECDHP256, 0)
	b := newPair(t, asymmetric.ECDHP256, 0)
	s, err := Agree(a, b)
	require.NoError(t, err)
	z := rawSecret(t, s)

	t.Run("default sha1", func(t *testing.T) {
		n, err := s.DeriveKey(KDFHash, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 20, n)

		out := make([]byte, n)
		_, err = s.DeriveKey(KDFHash, nil, out)
		require.NoError(t, err)
		want := sha1.Sum(z)
		assert.Equal(t, want[:], out)
	})

	t.Run("prepend append sha256", func(t *testing.T) {
		params := &KDFParams{Hash: "SHA256", Prepend: []byte("pre"), Append: []byte("post")}
		out := make([]byte, 32)
		_, err := s.DeriveKey(KDFHash, params, out)
		require.NoError(t, err)

		h := sha256.New()
		h.Write([]byte("pre"))
		h.Write(z)
		h.Write([]byte("post"))
		assert.Equal(t, h.Sum(nil), out)

		// reproducible
		again := make([]byte, 32)
		_, err = s.DeriveKey(KDFHash, params, again)
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})

	t.Run("truncated output", func(t *testing.T) {
		out := make([]byte, 8)
		n, err := s.DeriveKey(KDFHash, nil, out)
		require.NoError(t, err)
		assert.Equal(t, 8, n)
		want := sha1.Sum(z)
		assert.Equal(t, want[:8], out)
	})
}

func TestDeriveKeyHMAC(t *testing.T) {
	a := newPair(t, asymmetric.ECDHP256, 0)
	s, err := Agree(a, newPair(t, asymmetric.ECDHP256, 0))
	require.NoError(t, err)
	z := rawSecret(t, s)

	params := &KDFParams{Hash: "SHA256", HMACKey: []byte("mac key"), Prepend: []byte{1}}
	out := make([]byte, 32)
	_, err = s.DeriveKey(KDFHMAC, params, out)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("mac key"))
	mac.Write([]byte{1})
	mac.Write(z)
	assert.Equal(t, mac.Sum(nil), out)

	// without a key the shared value keys the MAC
	_, err = s.DeriveKey(KDFHMAC, &KDFParams{Hash: "SHA256"}, out)
	require.NoError(t, err)
	mac = hmac.New(sha256.New, z)
	mac.Write(z)
	assert.Equal(t, mac.Sum(nil), out)
}

func TestDeriveKeyHKDF(t *testing.T) {
	a := newPair(t, asymmetric.ECDHP256, 0)
	s, err := Agree(a, newPair(t, asymmetric.ECDHP256, 0))
	require.NoError(t, err)
	z := rawSecret(t, s)

	params := &KDFParams{Hash: "SHA256", Salt: []byte("salt"), Info: []byte("info")}
	out := make([]byte, 32)
	n, err := s.DeriveKey(KDFHKDF, params, out)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	// one block of RFC 5869 extract-then-expand
	extract := hmac.New(sha256.New, []byte("salt"))
	extract.Write(z)
	expand := hmac.New(sha256.New, extract.Sum(nil))
	expand.Write([]byte("info"))
	expand.Write([]byte{1})
	assert.Equal(t, expand.Sum(nil), out)

	_, err = s.DeriveKey(KDFHKDF, params, make([]byte, 255*32+1))
	assert.ErrorIs(t, err, status.InvalidParameter)
}

func TestDeriveKeyErrors(t *testing.T) {
	a := newPair(t, asymmetric.ECDHP256, 0)
	s, err := Agree(a, newPair(t, asymmetric.ECDHP256, 0))
	require.NoError(t, err)

	_, err = s.DeriveKey("SP800_108_CTR_HMAC", nil, nil)
	assert.ErrorIs(t, err, status.NotSupported)
	_, err = s.DeriveKey(KDFHash, &KDFParams{Hash: "TIGER"}, nil)
	assert.ErrorIs(t, err, status.NotSupported)

	short := make([]byte, 4)
	_, err = s.DeriveKey(KDFTruncate, nil, short)
	assert.ErrorIs(t, err, status.BufferTooSmall)
	assert.Equal(t, make([]byte, 4), short)

	require.NoError(t, s.Destroy())
	assert.ErrorIs(t, s.Destroy(), status.InvalidHandle)
	_, err = s.DeriveKey(KDFHash, nil, nil)
	assert.ErrorIs(t, err, status.InvalidHandle)
	_, err = s.Size()
	assert.ErrorIs(t, err, status.InvalidHandle)
}
