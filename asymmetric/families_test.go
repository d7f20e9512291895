package asymmetric

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/opd-ai/cngcrypt/keyblob"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportBlob(t *testing.T, k *KeyPair, blobType string) []byte {
	t.Helper()
	size, err := k.Export(blobType, nil)
	require.NoError(t, err)
	blob := make([]byte, size)
	n, err := k.Export(blobType, blob)
	require.NoError(t, err)
	require.Equal(t, size, n)
	return blob
}

func TestECDSASignVerify(t *testing.T) {
	cases := []struct {
		alg  string
		size int
	}{
		{ECDSAP256, 64},
		{ECDSAP384, 96},
	}
	for _, tc := range cases {
		t.Run(tc.alg, func(t *testing.T) {
			k := newFinalized(t, tc.alg, 0)
			digest := sha256.Sum256([]byte("hello"))

			n, err := k.Sign(nil, digest[:], nil)
			require.NoError(t, err)
			require.Equal(t, tc.size, n)

			sig := make([]byte, n)
			_, err = k.Sign(nil, digest[:], sig)
			require.NoError(t, err)
			require.NoError(t, k.Verify(nil, digest[:], sig))

			_, err = k.Sign(&PKCS1Padding{}, digest[:], sig)
			assert.ErrorIs(t, err, status.InvalidParameter)

			// a public-only import verifies the same signature
			alg, _ := Lookup(tc.alg)
			pub, err := Import(alg, keyblob.ECCPublicBlob, exportBlob(t, k, keyblob.ECCPublicBlob))
			require.NoError(t, err)
			require.NoError(t, pub.Verify(nil, digest[:], sig))
			_, err = pub.Sign(nil, digest[:], sig)
			assert.ErrorIs(t, err, status.InvalidParameter)

			sig[0] ^= 0x80
			assert.ErrorIs(t, pub.Verify(nil, digest[:], sig), status.InvalidSignature)
		})
	}
}

func TestECDSADigestChecks(t *testing.T) {
	k := newFinalized(t, ECDSAP256, 0)
	d1 := sha1.Sum([]byte("hello"))
	d256 := sha256.Sum256([]byte("hello"))

	t.Run("digest lengths", func(t *testing.T) {
		for _, n := range []int{20, 32, 48, 64} {
			sig := make([]byte, 64)
			_, err := k.Sign(nil, make([]byte, n), sig)
			require.NoError(t, err, "digest of %d bytes", n)
			require.NoError(t, k.Verify(nil, make([]byte, n), sig))
		}
		for _, n := range []int{1, 16, 17, 33} {
			_, err := k.Sign(nil, make([]byte, n), make([]byte, 64))
			assert.ErrorIs(t, err, status.InvalidParameter, "digest of %d bytes", n)
			assert.ErrorIs(t, k.Verify(nil, make([]byte, n), make([]byte, 64)), status.InvalidSignature)
		}
	})

	t.Run("pkcs1 hint", func(t *testing.T) {
		tests := []struct {
			name    string
			padding Padding
			digest  []byte
			wantErr status.Status
		}{
			{"matching sha256", &PKCS1Padding{Hash: "SHA256"}, d256[:], 0},
			{"matching sha1", &PKCS1Padding{Hash: "SHA1"}, d1[:], 0},
			{"mismatching hash", &PKCS1Padding{Hash: "SHA1"}, d256[:], status.InvalidParameter},
			{"unknown hash", &PKCS1Padding{Hash: "WHIRLPOOL"}, d256[:], status.InvalidParameter},
			{"pss hint", &PSSPadding{Hash: "SHA256", SaltLength: 32}, d256[:], status.InvalidParameter},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sig := make([]byte, 64)
				_, err := k.Sign(tt.padding, tt.digest, sig)
				if tt.wantErr != 0 {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				require.NoError(t, k.Verify(tt.padding, tt.digest, sig))
				require.NoError(t, k.Verify(nil, tt.digest, sig))
			})
		}
	})
}

func TestECCBlobRoundTrip(t *testing.T) {
	for _, name := range []string{ECDSAP256, ECDSAP384, ECDHP256, ECDHP384} {
		t.Run(name, func(t *testing.T) {
			k := newFinalized(t, name, 0)
			alg, _ := Lookup(name)

			blob := exportBlob(t, k, keyblob.ECCPrivateBlob)
			assert.Len(t, blob, 8+3*alg.Curve.Size)

			imported, err := Import(alg, keyblob.PrivateBlob, blob)
			require.NoError(t, err)
			assert.Equal(t, blob, exportBlob(t, imported, keyblob.ECCPrivateBlob))
			assert.Equal(t, exportBlob(t, k, keyblob.PublicBlob), exportBlob(t, imported, keyblob.ECCPublicBlob))
		})
	}
}

func TestECCImportWrongCurveFamily(t *testing.T) {
	signing := newFinalized(t, ECDSAP256, 0)
	blob := exportBlob(t, signing, keyblob.ECCPublicBlob)

	ecdhAlg, _ := Lookup(ECDHP256)
	_, err := Import(ecdhAlg, keyblob.ECCPublicBlob, blob)
	assert.ErrorIs(t, err, status.InvalidParameter)
}

func TestECDHAccessors(t *testing.T) {
	k := newFinalized(t, ECDHP256, 0)
	priv, pub, err := k.ECDH()
	require.NoError(t, err)
	require.NotNil(t, priv)
	assert.True(t, pub.Equal(priv.PublicKey()))

	_, err = k.Sign(nil, make([]byte, 32), nil)
	assert.ErrorIs(t, err, status.NotSupported)
	_, _, err = k.DH()
	assert.ErrorIs(t, err, status.NotSupported)
}

func TestDSA(t *testing.T) {
	k := newFinalized(t, DSA, 512)
	bits, _ := k.Bits()
	assert.Equal(t, 512, bits)
	assert.Equal(t, 160, k.dsa.Q.BitLen())
	assert.Equal(t, 512, k.dsa.P.BitLen())

	digest := sha1.Sum([]byte("dsa message"))
	sig := make([]byte, 40)
	n, err := k.Sign(nil, digest[:], sig)
	require.NoError(t, err)
	require.Equal(t, 40, n)
	require.NoError(t, k.Verify(nil, digest[:], sig))

	_, err = k.Sign(nil, digest[:10], sig)
	assert.ErrorIs(t, err, status.InvalidParameter)
	assert.ErrorIs(t, k.Verify(nil, digest[:], sig[:39]), status.InvalidSignature)

	alg, _ := Lookup(DSA)
	blobTypes := []string{keyblob.DSAPrivateBlob, keyblob.CAPIDSAPrivateBlob, keyblob.DSAPublicBlob, keyblob.CAPIDSAPublicBlob}
	for _, blobType := range blobTypes {
		t.Run(blobType, func(t *testing.T) {
			blob := exportBlob(t, k, blobType)
			imported, err := Import(alg, blobType, blob)
			require.NoError(t, err)
			assert.Equal(t, blob, exportBlob(t, imported, blobType))
			require.NoError(t, imported.Verify(nil, digest[:], sig))
		})
	}
}

func TestDHDefaultGroup(t *testing.T) {
	k := newFinalized(t, DH, 768)
	key, size, err := k.DH()
	require.NoError(t, err)
	assert.Equal(t, 96, size)
	assert.Equal(t, int64(2), key.G.Int64())
	assert.Equal(t, 0, new(big.Int).Exp(key.G, key.X, key.P).Cmp(key.Y))

	params, err := k.DHParameters()
	require.NoError(t, err)
	assert.Len(t, params, 12+2*96)

	alg, _ := Lookup(DH)
	blob := exportBlob(t, k, keyblob.DHPrivateBlob)
	imported, err := Import(alg, keyblob.DHPrivateBlob, blob)
	require.NoError(t, err)
	assert.Equal(t, blob, exportBlob(t, imported, keyblob.PrivateBlob))

	_, err = k.Sign(nil, make([]byte, 20), nil)
	assert.ErrorIs(t, err, status.NotSupported)
}

func TestDHExplicitParameters(t *testing.T) {
	alg, _ := Lookup(DH)
	k, err := Generate(alg, 640)
	require.NoError(t, err)

	// no well-known group of this size
	other, err := Generate(alg, 640)
	require.NoError(t, err)
	assert.ErrorIs(t, other.Finalize(), status.InvalidParameter)

	p, err := rand.Prime(rand.Reader, 640)
	require.NoError(t, err)
	params := keyblob.EncodeDHParameters(p, big.NewInt(5), 80)
	assert.ErrorIs(t, k.SetDHParameters(params[:20]), status.InvalidParameter)
	require.NoError(t, k.SetDHParameters(params))

	got, err := k.DHParameters()
	require.NoError(t, err)
	assert.Equal(t, params, got)

	require.NoError(t, k.Finalize())
	assert.ErrorIs(t, k.SetDHParameters(params), status.NotSupported)

	key, size, err := k.DH()
	require.NoError(t, err)
	assert.Equal(t, 80, size)
	assert.Equal(t, 0, key.P.Cmp(p))

	mismatched, err := Generate(alg, 768)
	require.NoError(t, err)
	assert.ErrorIs(t, mismatched.SetDHParameters(params), status.InvalidParameter)
}

func TestImportReplacesMaterial(t *testing.T) {
	k := newFinalized(t, ECDHP256, 0)
	alg, _ := Lookup(ECDHP256)

	pub, err := Import(alg, keyblob.PublicBlob, exportBlob(t, k, keyblob.PublicBlob))
	require.NoError(t, err)
	assert.False(t, pub.HasPrivate())

	// load onto a key that already holds a private half
	kind, err := alg.blobKind(keyblob.ECCPublicBlob)
	require.NoError(t, err)
	dup, err := k.Duplicate()
	require.NoError(t, err)
	require.NoError(t, dup.load(kind, exportBlob(t, k, keyblob.ECCPublicBlob)))
	assert.False(t, dup.hasPrivate())
}
