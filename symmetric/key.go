package symmetric

import (
	"crypto/cipher"
	"crypto/rc4"
	"sync"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/sirupsen/logrus"
)

// Flags modify a single Encrypt or Decrypt call.
type Flags uint32

// BlockPadding requests PKCS#7 padding of the final block.
const BlockPadding Flags = 0x00000001

// AuthInfo carries the GCM parameters of one call. Tag is written by
// Encrypt and read by Decrypt; its length selects the tag size.
type AuthInfo struct {
	Nonce    []byte
	AuthData []byte
	Tag      []byte
}

// Key is a symmetric key. The key material and cipher.Block are immutable
// after creation; the chaining mode and message block length are guarded
// by mu and snapshotted at the start of every call, so a Key may be used
// from several goroutines at once.
type Key struct {
	alg    *Algorithm
	secret []byte
	block  cipher.Block

	mu          sync.RWMutex
	mode        Mode
	msgBlockLen int
	destroyed   bool
}

// NewKey creates a key from secret. Secrets longer than the algorithm
// maximum are truncated; shorter or misaligned secrets are rejected.
func NewKey(alg *Algorithm, secret []byte, mode Mode) (*Key, error) {
	logger := crypto.NewPackageLogger("symmetric", "NewKey").WithAlgorithm(alg.Name)

	fitted, err := limits.FitSecret(secret, alg.KeyBits)
	if err != nil {
		logger.WithError(err, "fit_secret").Debug("rejected key secret")
		return nil, err
	}
	if mode != ModeNone && !alg.Supports(mode) {
		return nil, status.Errorf(status.NotSupported, "%s does not support %s", alg.Name, mode)
	}
	if alg.Stream() {
		mode = ModeNone
	}

	k := &Key{
		alg:         alg,
		secret:      crypto.CloneBytes(fitted),
		mode:        mode,
		msgBlockLen: alg.BlockSize,
	}
	if !alg.Stream() {
		k.block, err = alg.newBlock(k.secret)
		if err != nil {
			crypto.ZeroBytes(k.secret)
			return nil, status.Errorf(status.InvalidParameter, "%s key schedule: %v", alg.Name, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"key_bits": len(k.secret) * 8,
		"mode":     mode.String(),
	}).Debug("created symmetric key")
	return k, nil
}

// Algorithm returns the key's cipher descriptor.
func (k *Key) Algorithm() *Algorithm {
	return k.alg
}

func (k *Key) live() error {
	if k.destroyed {
		return status.Errorf(status.InvalidHandle, "%s key destroyed", k.alg.Name)
	}
	return nil
}

// KeyBits returns the effective key length in bits.
func (k *Key) KeyBits() (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return 0, err
	}
	return len(k.secret) * 8, nil
}

// Secret returns a copy of the key material for export.
func (k *Key) Secret() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return nil, err
	}
	return crypto.CloneBytes(k.secret), nil
}

// Mode returns the current chaining mode.
func (k *Key) Mode() (Mode, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return ModeNone, err
	}
	return k.mode, nil
}

// SetMode switches the chaining mode of the key.
func (k *Key) SetMode(m Mode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.live(); err != nil {
		return err
	}
	if k.alg.Stream() || !k.alg.Supports(m) {
		return status.Errorf(status.NotSupported, "%s does not support %s", k.alg.Name, m)
	}
	k.mode = m
	return nil
}

// MessageBlockLength returns the CFB feedback unit. It is only meaningful
// in CFB mode.
func (k *Key) MessageBlockLength() (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return 0, err
	}
	if k.mode != ModeCFB {
		return 0, status.Errorf(status.NotSupported, "message block length outside CFB mode")
	}
	return k.msgBlockLen, nil
}

// SetMessageBlockLength sets the CFB feedback unit to 1 or the block size.
func (k *Key) SetMessageBlockLength(n int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.live(); err != nil {
		return err
	}
	if k.mode != ModeCFB {
		return status.Errorf(status.NotSupported, "message block length outside CFB mode")
	}
	if n != 1 && n != k.alg.BlockSize {
		return status.Errorf(status.InvalidParameter, "message block length %d", n)
	}
	k.msgBlockLen = n
	return nil
}

// Duplicate returns an independent key with the same material and
// settings.
func (k *Key) Duplicate() (*Key, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return nil, err
	}

	dup := &Key{
		alg:         k.alg,
		secret:      crypto.CloneBytes(k.secret),
		mode:        k.mode,
		msgBlockLen: k.msgBlockLen,
	}
	if !k.alg.Stream() {
		var err error
		if dup.block, err = k.alg.newBlock(dup.secret); err != nil {
			return nil, status.Errorf(status.InvalidParameter, "%s key schedule: %v", k.alg.Name, err)
		}
	}
	return dup, nil
}

// Destroy wipes the key material. A second Destroy is InvalidParameter.
func (k *Key) Destroy() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.destroyed {
		return status.Errorf(status.InvalidParameter, "%s key already destroyed", k.alg.Name)
	}
	crypto.ZeroBytes(k.secret)
	k.destroyed = true
	return nil
}

// callState is the per-call snapshot of a key.
type callState struct {
	mode        Mode
	msgBlockLen int
	stream      cipher.Stream
}

func (k *Key) snapshot() (callState, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if err := k.live(); err != nil {
		return callState{}, err
	}
	cs := callState{mode: k.mode, msgBlockLen: k.msgBlockLen}
	if k.alg.Stream() {
		c, err := rc4.NewCipher(k.secret)
		if err != nil {
			return callState{}, status.Errorf(status.InvalidParameter, "rc4: %v", err)
		}
		cs.stream = c
	}
	return cs, nil
}

// Encrypt encrypts in into out and returns the ciphertext length.
//
// An empty out is a size query when the result would be non-empty; it
// performs no work and leaves iv and auth untouched. For CBC and CFB, iv
// holds the initial vector on entry and the final feedback block on
// return; a nil iv means a zero vector for this call only.
func (k *Key) Encrypt(in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	cs, err := k.snapshot()
	if err != nil {
		return 0, err
	}
	switch {
	case cs.stream != nil:
		return k.xorStream(cs.stream, in, auth, iv, out, flags)
	case cs.mode == ModeGCM:
		return k.sealGCM(in, auth, iv, out, flags)
	default:
		return k.encryptBlocks(cs, in, auth, iv, out, flags)
	}
}

// Decrypt reverses Encrypt. With BlockPadding a size query reports the
// ciphertext length, which bounds the plaintext; the real call returns
// the exact length.
func (k *Key) Decrypt(in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	cs, err := k.snapshot()
	if err != nil {
		return 0, err
	}
	switch {
	case cs.stream != nil:
		return k.xorStream(cs.stream, in, auth, iv, out, flags)
	case cs.mode == ModeGCM:
		return k.openGCM(in, auth, iv, out, flags)
	default:
		return k.decryptBlocks(cs, in, auth, iv, out, flags)
	}
}

func (k *Key) xorStream(s cipher.Stream, in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	if iv != nil || auth != nil || flags&BlockPadding != 0 {
		return 0, status.Errorf(status.InvalidParameter, "%s takes no IV, auth info or padding", k.alg.Name)
	}
	need := len(in)
	query, err := limits.Negotiate(out, need)
	if err != nil || query {
		return need, err
	}
	s.XORKeyStream(out[:need], in)
	return need, nil
}

func (k *Key) checkBlockArgs(cs callState, auth *AuthInfo, iv []byte) error {
	if auth != nil {
		return status.Errorf(status.InvalidParameter, "auth info outside GCM mode")
	}
	if cs.mode == ModeECB {
		if iv != nil {
			return status.Errorf(status.InvalidParameter, "ECB takes no IV")
		}
		return nil
	}
	if iv != nil && len(iv) != k.alg.BlockSize {
		return status.Errorf(status.InvalidParameter, "IV must be %d bytes, got %d", k.alg.BlockSize, len(iv))
	}
	return nil
}

// unit returns the input granularity for unpadded calls.
func (k *Key) unit(cs callState) int {
	if cs.mode == ModeCFB {
		return cs.msgBlockLen
	}
	return k.alg.BlockSize
}

func (k *Key) initialVector(iv []byte) []byte {
	v := make([]byte, k.alg.BlockSize)
	copy(v, iv)
	return v
}

func (k *Key) encryptBlocks(cs callState, in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	if err := k.checkBlockArgs(cs, auth, iv); err != nil {
		return 0, err
	}
	bs := k.alg.BlockSize
	need := len(in)
	if flags&BlockPadding != 0 {
		need = limits.PaddedLength(len(in), bs)
	} else if u := k.unit(cs); !limits.Aligned(len(in), u) {
		return 0, status.BadSize(u)
	}
	if need == 0 {
		return 0, nil
	}
	query, err := limits.Negotiate(out, need)
	if err != nil || query {
		return need, err
	}

	var buf []byte
	if flags&BlockPadding != 0 {
		buf = pad(in, bs)
	} else {
		buf = crypto.CloneBytes(in)
	}

	switch cs.mode {
	case ModeECB:
		for i := 0; i < len(buf); i += bs {
			k.block.Encrypt(buf[i:i+bs], buf[i:i+bs])
		}
	case ModeCBC:
		cipher.NewCBCEncrypter(k.block, k.initialVector(iv)).CryptBlocks(buf, buf)
		if iv != nil {
			copy(iv, buf[len(buf)-bs:])
		}
	case ModeCFB:
		s := newCFB8(k.block, k.initialVector(iv), false)
		s.XORKeyStream(buf, buf)
		if iv != nil {
			copy(iv, s.register())
		}
	default:
		return 0, status.Errorf(status.NotSupported, "chaining mode %s", cs.mode)
	}

	copy(out, buf)
	return need, nil
}

func (k *Key) decryptBlocks(cs callState, in []byte, auth *AuthInfo, iv, out []byte, flags Flags) (int, error) {
	if err := k.checkBlockArgs(cs, auth, iv); err != nil {
		return 0, err
	}
	bs := k.alg.BlockSize
	padded := flags&BlockPadding != 0
	u := k.unit(cs)
	if padded {
		u = bs
	}
	if !limits.Aligned(len(in), u) || (padded && len(in) == 0) {
		return 0, status.BadSize(u)
	}
	if len(in) == 0 {
		return 0, nil
	}
	if len(out) == 0 {
		return len(in), nil
	}
	if !padded && len(out) < len(in) {
		return len(in), status.TooSmall(len(in))
	}

	buf := crypto.CloneBytes(in)
	defer crypto.ZeroBytes(buf)
	var next []byte

	switch cs.mode {
	case ModeECB:
		for i := 0; i < len(buf); i += bs {
			k.block.Decrypt(buf[i:i+bs], buf[i:i+bs])
		}
	case ModeCBC:
		cipher.NewCBCDecrypter(k.block, k.initialVector(iv)).CryptBlocks(buf, buf)
		next = in[len(in)-bs:]
	case ModeCFB:
		s := newCFB8(k.block, k.initialVector(iv), true)
		s.XORKeyStream(buf, buf)
		next = s.register()
	default:
		return 0, status.Errorf(status.NotSupported, "chaining mode %s", cs.mode)
	}

	n := len(buf)
	if padded {
		var err error
		if n, err = unpad(buf, bs); err != nil {
			return 0, err
		}
	}
	if len(out) < n {
		return n, status.TooSmall(n)
	}
	if iv != nil && next != nil {
		copy(iv, next)
	}
	copy(out, buf[:n])
	return n, nil
}
