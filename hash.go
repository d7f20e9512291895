package cngcrypt

import (
	"sync"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// HashFlags modify CreateHash.
type HashFlags uint32

// HashReusable makes Finish rewind the hash object instead of ending it.
const HashReusable HashFlags = 0x00000020

// HashObject is a streaming hash or HMAC computation.
type HashObject struct {
	state *digest.State

	mu        sync.Mutex
	destroyed bool
}

// CreateHash starts a hash object. scratch is either nil or a caller
// buffer of exactly the provider's ObjectLength; the library keeps its
// state internally either way. secret keys the object on HMAC providers
// and is ignored otherwise.
func (p *Provider) CreateHash(scratch, secret []byte, flags HashFlags) (*HashObject, error) {
	if err := p.open(FamilyHash); err != nil {
		return nil, err
	}
	if flags&^HashReusable != 0 {
		return nil, status.Errorf(status.InvalidParameter, "unknown hash flags 0x%x", uint32(flags))
	}
	if scratch != nil {
		switch {
		case len(scratch) < p.hash.ObjectSize:
			return nil, status.TooSmall(p.hash.ObjectSize)
		case len(scratch) > p.hash.ObjectSize:
			return nil, status.Errorf(status.InvalidParameter, "%s object is %d bytes, buffer has %d", p.name, p.hash.ObjectSize, len(scratch))
		}
	}

	keyed := p.flags&OpenHMAC != 0
	reusable := flags&HashReusable != 0 || p.flags&OpenReusable != 0
	h := &HashObject{state: digest.NewState(p.hash, secret, keyed, reusable)}

	crypto.NewPackageLogger("cngcrypt", "CreateHash").
		WithAlgorithm(p.name).
		WithField("hmac", keyed).
		WithField("reusable", reusable).
		Debug("created hash object")
	return h, nil
}

func (h *HashObject) live() error {
	if h == nil || h.state == nil {
		return status.Errorf(status.InvalidHandle, "nil hash object")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return status.Errorf(status.InvalidHandle, "hash object destroyed")
	}
	return nil
}

// Feed appends data to the computation. Zero-length data is accepted.
func (h *HashObject) Feed(data []byte) error {
	if err := h.live(); err != nil {
		return err
	}
	return h.state.Write(data)
}

// Finish writes the digest into out, which must be exactly the digest
// length, and returns that length. An empty out only reports it.
func (h *HashObject) Finish(out []byte) (int, error) {
	if err := h.live(); err != nil {
		return 0, err
	}
	return h.state.Finish(out)
}

// DeriveKeyCapi finishes the hash and fills out with key material derived
// the way CryptDeriveKey does. out may be up to twice the digest length.
func (h *HashObject) DeriveKeyCapi(out []byte) error {
	if err := h.live(); err != nil {
		return err
	}
	alg := h.state.Algorithm()
	if len(out) == 0 || len(out) > 2*alg.Size {
		return status.Errorf(status.InvalidParameter, "cannot derive %d bytes from %s", len(out), alg.Name)
	}
	sum := make([]byte, alg.Size)
	if _, err := h.state.Finish(sum); err != nil {
		return err
	}
	key, err := digest.CapiExpand(alg, sum, len(out))
	defer crypto.WipeAll(sum, key)
	if err != nil {
		return err
	}
	copy(out, key)
	return nil
}

// Destroy releases the hash object. Destroying a nil or already destroyed
// object is InvalidParameter.
func (h *HashObject) Destroy() error {
	if h == nil || h.state == nil {
		return status.Errorf(status.InvalidParameter, "nil hash object")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return status.Errorf(status.InvalidParameter, "hash object already destroyed")
	}
	h.state.Wipe()
	h.destroyed = true
	return nil
}

// Hash computes the digest (or HMAC on HMAC providers) of data in one
// call. An empty out only reports the digest length.
func Hash(p *Provider, secret, data, out []byte) (int, error) {
	if err := p.open(FamilyHash); err != nil {
		return 0, err
	}
	size := p.hash.Size
	query, err := limits.Negotiate(out, size)
	if err != nil || query {
		return size, err
	}
	state := digest.NewState(p.hash, secret, p.flags&OpenHMAC != 0, false)
	defer state.Wipe()
	if err := state.Write(data); err != nil {
		return 0, err
	}
	return state.Finish(out)
}

// DeriveKeyPBKDF2 fills out with PBKDF2 output. prf must be an HMAC hash
// provider.
func DeriveKeyPBKDF2(prf *Provider, password, salt []byte, iterations uint64, out []byte) error {
	if err := prf.open(FamilyHash); err != nil {
		return err
	}
	if prf.flags&OpenHMAC == 0 {
		return status.Errorf(status.InvalidParameter, "PBKDF2 needs an HMAC provider, %s is a plain hash", prf.name)
	}
	key, err := digest.PBKDF2(prf.hash, password, salt, iterations, len(out))
	if err != nil {
		return err
	}
	copy(out, key)
	crypto.ZeroBytes(key)
	return nil
}
