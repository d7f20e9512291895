package symmetric

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGCMKnownAnswers(t *testing.T) {
	k := newAESKey(t, make([]byte, 16), ModeGCM)

	t.Run("empty plaintext still tags", func(t *testing.T) {
		auth := &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 16)}
		n, err := k.Encrypt(nil, auth, nil, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, "58e2fccefa7e3061367f1d57a4e7455a", hex.EncodeToString(auth.Tag))

		n, err = k.Decrypt(nil, auth, nil, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("one zero block", func(t *testing.T) {
		auth := &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 16)}
		out := make([]byte, 16)
		_, err := k.Encrypt(make([]byte, 16), auth, nil, out, 0)
		require.NoError(t, err)
		assert.Equal(t, "0388dace60b6a392f328c2b971b2fe78", hex.EncodeToString(out))
		assert.Equal(t, "ab6e47d42cec13bdf53a67b21257bddf", hex.EncodeToString(auth.Tag))
	})
}

func TestGCMRoundTripAndTamper(t *testing.T) {
	k := newAESKey(t, bytes.Repeat([]byte{0x5a}, 32), ModeGCM)
	plain := []byte("authenticated payload of odd length")
	aad := []byte("header")

	seal := func(tagLen int) ([]byte, []byte) {
		auth := &AuthInfo{Nonce: bytes.Repeat([]byte{1}, 12), AuthData: aad, Tag: make([]byte, tagLen)}
		size, err := k.Encrypt(plain, auth, nil, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, tagLen), auth.Tag, "size query must not touch the tag")
		ct := make([]byte, size)
		_, err = k.Encrypt(plain, auth, nil, ct, 0)
		require.NoError(t, err)
		return ct, auth.Tag
	}

	for _, tagLen := range []int{12, 13, 16} {
		t.Run(fmt.Sprintf("tag%d", tagLen), func(t *testing.T) {
			ct, tag := seal(tagLen)
			ct2, tag2 := seal(tagLen)
			assert.Equal(t, ct, ct2, "deterministic for fixed inputs")
			assert.Equal(t, tag, tag2)

			out := make([]byte, len(ct))
			auth := &AuthInfo{Nonce: bytes.Repeat([]byte{1}, 12), AuthData: aad, Tag: tag}
			n, err := k.Decrypt(ct, auth, nil, out, 0)
			require.NoError(t, err)
			assert.Equal(t, plain, out[:n])

			bad := bytes.Clone(tag)
			bad[0] ^= 0x80
			untouched := bytes.Repeat([]byte{0xEE}, len(ct))
			auth.Tag = bad
			_, err = k.Decrypt(ct, auth, nil, untouched, 0)
			require.ErrorIs(t, err, status.AuthTagMismatch)
			assert.True(t, status.IsIntegrity(err))
			assert.Equal(t, bytes.Repeat([]byte{0xEE}, len(ct)), untouched)

			auth.Tag = tag
			auth.AuthData = []byte("other")
			_, err = k.Decrypt(ct, auth, nil, out, 0)
			assert.ErrorIs(t, err, status.AuthTagMismatch)
		})
	}
}

func TestGCMParameterErrors(t *testing.T) {
	k := newAESKey(t, make([]byte, 16), ModeGCM)
	in := make([]byte, 16)
	out := make([]byte, 16)

	tests := []struct {
		name  string
		auth  *AuthInfo
		iv    []byte
		flags Flags
	}{
		{"missing auth info", nil, nil, 0},
		{"tag too short", &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 11)}, nil, 0},
		{"tag too long", &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 17)}, nil, 0},
		{"odd nonce with short tag", &AuthInfo{Nonce: make([]byte, 16), Tag: make([]byte, 12)}, nil, 0},
		{"empty nonce", &AuthInfo{Tag: make([]byte, 16)}, nil, 0},
		{"padding", &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 16)}, nil, BlockPadding},
		{"iv", &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 16)}, make([]byte, 16), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Encrypt(in, tt.auth, tt.iv, out, tt.flags)
			assert.ErrorIs(t, err, status.InvalidParameter)
		})
	}

	// a 16-byte nonce is fine with a full tag
	auth := &AuthInfo{Nonce: make([]byte, 16), Tag: make([]byte, 16)}
	_, err := k.Encrypt(in, auth, nil, out, 0)
	assert.NoError(t, err)
}

func TestGCMConcurrentSharedKey(t *testing.T) {
	k := newAESKey(t, bytes.Repeat([]byte{0x24}, 16), ModeGCM)

	const workers = 16
	const rounds = 50
	type result struct{ ct, tag []byte }

	job := func(i int) ([]byte, []byte, []byte, []byte) {
		plain := bytes.Repeat([]byte{byte(i)}, 16+i)
		aad := []byte(fmt.Sprintf("aad-%d", i))
		nonce := make([]byte, 12)
		nonce[0] = byte(i)
		return plain, aad, nonce, make([]byte, 16)
	}

	want := make([]result, workers)
	for i := range want {
		plain, aad, nonce, tag := job(i)
		ct := make([]byte, len(plain))
		_, err := k.Encrypt(plain, &AuthInfo{Nonce: nonce, AuthData: aad, Tag: tag}, nil, ct, 0)
		require.NoError(t, err)
		want[i] = result{ct, tag}
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				plain, aad, nonce, tag := job(i)
				ct := make([]byte, len(plain))
				if _, err := k.Encrypt(plain, &AuthInfo{Nonce: nonce, AuthData: aad, Tag: tag}, nil, ct, 0); err != nil {
					return err
				}
				if !bytes.Equal(ct, want[i].ct) || !bytes.Equal(tag, want[i].tag) {
					return fmt.Errorf("worker %d round %d: output differs from single-threaded result", i, r)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func BenchmarkGCMEncrypt(b *testing.B) {
	k := newAESKey(b, make([]byte, 32), ModeGCM)
	plain := make([]byte, 4096)
	out := make([]byte, len(plain))
	auth := &AuthInfo{Nonce: make([]byte, 12), Tag: make([]byte, 16)}
	b.SetBytes(int64(len(plain)))
	for i := 0; i < b.N; i++ {
		if _, err := k.Encrypt(plain, auth, nil, out, 0); err != nil {
			b.Fatal(err)
		}
	}
}
