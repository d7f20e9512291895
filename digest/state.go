package digest

import (
	"crypto/hmac"
	"hash"
	"sync"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// State is a streaming hash or HMAC computation.
//
// Finish either rewinds the state to its initial (keyed) form when the
// state is reusable, or makes it terminal. A terminal state refuses
// further Write and Finish calls with InvalidHandle.
type State struct {
	mu       sync.Mutex
	alg      *Algorithm
	h        hash.Hash
	key      []byte
	keyed    bool
	reusable bool
	terminal bool
}

// NewState starts a hash computation. When keyed is set the state computes
// HMAC under key; an empty key is valid.
func NewState(alg *Algorithm, key []byte, keyed, reusable bool) *State {
	s := &State{
		alg:      alg,
		keyed:    keyed,
		reusable: reusable,
	}
	if keyed {
		s.key = crypto.CloneBytes(key)
		if s.key == nil {
			s.key = []byte{}
		}
		s.h = hmac.New(alg.New, s.key)
	} else {
		s.h = alg.New()
	}
	return s
}

// Algorithm returns the descriptor the state was created for.
func (s *State) Algorithm() *Algorithm {
	return s.alg
}

// Keyed reports whether the state computes an HMAC.
func (s *State) Keyed() bool {
	return s.keyed
}

// Write appends data. A zero-length write is a no-op.
func (s *State) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return status.Errorf(status.InvalidHandle, "%s hash already finished", s.alg.Name)
	}
	if len(data) > 0 {
		s.h.Write(data)
	}
	return nil
}

// Finish writes the digest into out and returns the digest length. An
// empty out only reports the length. out must be exactly the digest size:
// a shorter buffer is BufferTooSmall and a longer one InvalidParameter.
func (s *State) Finish(out []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return 0, status.Errorf(status.InvalidHandle, "%s hash already finished", s.alg.Name)
	}
	size := s.alg.Size
	query, err := limits.Negotiate(out, size)
	if err != nil || query {
		return size, err
	}
	if len(out) > size {
		return size, status.Errorf(status.InvalidParameter, "%s digest is %d bytes, buffer has %d", s.alg.Name, size, len(out))
	}

	s.h.Sum(out[:0])
	if s.reusable {
		s.h.Reset()
	} else {
		s.terminal = true
	}
	return size, nil
}

// Wipe releases the HMAC key. The state is terminal afterwards.
func (s *State) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	crypto.ZeroBytes(s.key)
	s.key = nil
	s.h.Reset()
	s.terminal = true
}
