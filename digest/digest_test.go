package digest

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestKnownDigests(t *testing.T) {
	tests := []struct {
		alg  string
		data string
		want string
	}{
		{MD2, "", "8350e5a3e24c153df2275c9f80692773"},
		{MD2, "abc", "da853b0d3f88d99b30283a69e6ded6bb"},
		{MD2, "message digest", "ab4f496bfb2a530b219ff33031fe06b0"},
		{MD4, "abc", "a448017aaf21d8525fc10ae87aa6729d"},
		{MD5, "abc", "900150983cd24fb0d6963f7d28e17f72"},
		{SHA1, "abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{SHA256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.alg+"/"+tt.data, func(t *testing.T) {
			alg, err := Lookup(tt.alg)
			require.NoError(t, err)

			s := NewState(alg, nil, false, false)
			require.NoError(t, s.Write([]byte(tt.data)))
			out := make([]byte, alg.Size)
			n, err := s.Finish(out)
			require.NoError(t, err)
			assert.Equal(t, alg.Size, n)
			assert.Equal(t, tt.want, hex.EncodeToString(out))
		})
	}
}

func TestMD2Streaming(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 13)
	want := newMD2()
	want.Write(data)

	got := newMD2()
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		got.Write(data[i:end])
	}
	if !bytes.Equal(got.Sum(nil), want.Sum(nil)) {
		t.Error("chunked MD2 differs from single write")
	}
	// Sum must not disturb the running state
	if !bytes.Equal(got.Sum(nil), want.Sum(nil)) {
		t.Error("second Sum differs")
	}
}

func TestAlgorithmTable(t *testing.T) {
	sizes := map[string][3]int{
		MD2:    {16, 16, 270},
		MD4:    {16, 64, 270},
		MD5:    {16, 64, 274},
		SHA1:   {20, 64, 278},
		SHA256: {32, 64, 286},
		SHA384: {48, 128, 382},
		SHA512: {64, 128, 382},
	}
	require.Len(t, Names(), len(sizes))
	for name, want := range sizes {
		alg, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, want, [3]int{alg.Size, alg.BlockSize, alg.ObjectSize}, name)
		assert.Equal(t, alg.Size, alg.New().Size(), name)
	}

	_, err := Lookup("SHA3")
	assert.ErrorIs(t, err, status.NotFound)
}

func TestHMAC(t *testing.T) {
	md5, _ := Lookup(MD5)
	s := NewState(md5, []byte("key"), true, false)
	require.NoError(t, s.Write([]byte("The quick brown fox jumps over the lazy dog")))
	out := make([]byte, 16)
	_, err := s.Finish(out)
	require.NoError(t, err)
	assert.Equal(t, "80070713463e7749b90c2dc24911e275", hex.EncodeToString(out))

	// empty key still yields a full-length MAC
	sha256, _ := Lookup(SHA256)
	s = NewState(sha256, nil, true, false)
	require.NoError(t, s.Write([]byte("abc")))
	out = make([]byte, 32)
	_, err = s.Finish(out)
	require.NoError(t, err)
	assert.Equal(t, "fd7adb152c05ef80dccf50a1fa4c05d5a3ec6da95575fc312ae7c5d091836351", hex.EncodeToString(out))
}

func TestFinishBufferRules(t *testing.T) {
	sha1, _ := Lookup(SHA1)
	s := NewState(sha1, nil, false, false)

	n, err := s.Finish(nil)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	short := bytes.Repeat([]byte{0xAA}, 19)
	_, err = s.Finish(short)
	require.ErrorIs(t, err, status.BufferTooSmall)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 19), short)

	_, err = s.Finish(make([]byte, 21))
	require.ErrorIs(t, err, status.InvalidParameter)

	_, err = s.Finish(make([]byte, 20))
	require.NoError(t, err)

	// non-reusable state is terminal after a successful Finish
	assert.ErrorIs(t, s.Write([]byte("x")), status.InvalidHandle)
	_, err = s.Finish(make([]byte, 20))
	assert.ErrorIs(t, err, status.InvalidHandle)
}

func TestReusableReset(t *testing.T) {
	for _, keyed := range []bool{false, true} {
		sha256, _ := Lookup(SHA256)
		s := NewState(sha256, []byte("k"), keyed, true)

		first := make([]byte, 32)
		require.NoError(t, s.Write([]byte("first round")))
		_, err := s.Finish(first)
		require.NoError(t, err)

		second := make([]byte, 32)
		require.NoError(t, s.Write([]byte("second")))
		require.NoError(t, s.Write(nil))
		_, err = s.Finish(second)
		require.NoError(t, err)

		fresh := NewState(sha256, []byte("k"), keyed, false)
		require.NoError(t, fresh.Write([]byte("second")))
		want := make([]byte, 32)
		_, err = fresh.Finish(want)
		require.NoError(t, err)

		assert.Equal(t, want, second, "keyed=%v", keyed)
		assert.NotEqual(t, first, second)
	}
}

func TestWipe(t *testing.T) {
	sha1, _ := Lookup(SHA1)
	s := NewState(sha1, []byte("secret"), true, true)
	s.Wipe()
	assert.ErrorIs(t, s.Write([]byte("a")), status.InvalidHandle)
}

func TestPBKDF2Vectors(t *testing.T) {
	sha1, _ := Lookup(SHA1)
	tests := []struct {
		password   string
		salt       string
		iterations uint64
		want       string
	}{
		{"password", "salt", 1, "0c60c80f961f0e71f3a9b524af6012062fe037a6"},
		{"password", "salt", 2, "ea6c014dc72d6f8ccd1ed92ace1d41f0d8de8957"},
		{"password", "salt", 4096, "4b007901b765489abead49d926f721d065a429c1"},
		{"password", "salt", 1000000, "364dd6bc200ec7d197f1b85f4a61769010717124"},
		{"passwordPASSWORDpassword", "saltSALTsaltSALTsaltSALTsaltSALTsalt", 4096, "3d2eec4fe41c849b80c8d83662c0e44a8b291a964cf2f07038"},
		{"pass\x00word", "sa\x00lt", 4096, "56fa6aa75548099dcc37d7f03425e0c3"},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if tt.iterations > 100000 && testing.Short() {
				t.Skip("skipping slow PBKDF2 vector in short mode")
			}
			want := mustHex(t, tt.want)
			got, err := PBKDF2(sha1, []byte(tt.password), []byte(tt.salt), tt.iterations, len(want))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := PBKDF2(sha1, []byte("p"), []byte("s"), 0, 20)
	assert.ErrorIs(t, err, status.InvalidParameter)
	_, err = PBKDF2(sha1, []byte("p"), []byte("s"), 1, 0)
	assert.ErrorIs(t, err, status.InvalidParameter)
}

func TestCapiExpand(t *testing.T) {
	sha1, _ := Lookup(SHA1)
	sum := sha1.Sum([]byte("abc"))

	short, err := CapiExpand(sha1, sum, 16)
	require.NoError(t, err)
	assert.Equal(t, sum[:16], short)

	long, err := CapiExpand(sha1, sum, 32)
	require.NoError(t, err)
	assert.Equal(t, "d6149aa6dc73c57f300e5e86175c3c3e731024ad6dcd8a68ad523cb0de34b320", hex.EncodeToString(long))

	_, err = CapiExpand(sha1, sum, 41)
	assert.ErrorIs(t, err, status.InvalidParameter)
}

func BenchmarkSHA256State(b *testing.B) {
	sha256, _ := Lookup(SHA256)
	data := make([]byte, 1024)
	out := make([]byte, 32)
	s := NewState(sha256, nil, false, true)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		s.Write(data)
		s.Finish(out)
	}
}
