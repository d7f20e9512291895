package cngcrypt

import (
	"sync"

	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/digest"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/opd-ai/cngcrypt/symmetric"
)

// RNG is the name of the random number generator provider.
const RNG = "RNG"

// OpenFlags modify Open and Pseudo.
type OpenFlags uint32

const (
	// OpenHMAC makes every hash object of a hash provider an HMAC.
	OpenHMAC OpenFlags = 0x00000008
	// OpenReusable makes every hash object of a hash provider reusable.
	OpenReusable OpenFlags = 0x00000020

	hashOnlyFlags = OpenHMAC | OpenReusable
)

// Family is the class of algorithm a provider serves.
type Family int

const (
	FamilyHash Family = iota
	FamilyCipher
	FamilyAsymmetric
	FamilyRNG
)

func (f Family) String() string {
	switch f {
	case FamilyHash:
		return "hash"
	case FamilyCipher:
		return "cipher"
	case FamilyAsymmetric:
		return "asymmetric"
	case FamilyRNG:
		return "rng"
	}
	return "unknown"
}

// Provider is an open algorithm provider. A provider returned by Pseudo is
// shared process-wide and cannot be closed or modified.
type Provider struct {
	name   string
	family Family
	flags  OpenFlags
	pseudo bool

	hash   *digest.Algorithm
	cipher *symmetric.Algorithm
	asym   *asymmetric.Algorithm

	mu     sync.RWMutex
	mode   symmetric.Mode
	closed bool
}

// Open returns a new provider for the named algorithm.
func Open(name string, flags OpenFlags) (*Provider, error) {
	logger := crypto.NewPackageLogger("cngcrypt", "Open").WithAlgorithm(name)

	p, err := newProvider(name, flags)
	if err != nil {
		logger.WithError(err, "lookup").Debug("open refused")
		return nil, err
	}
	logger.WithField("family", p.family.String()).WithField("flags", uint32(flags)).Debug("opened provider")
	return p, nil
}

func newProvider(name string, flags OpenFlags) (*Provider, error) {
	if flags&^hashOnlyFlags != 0 {
		return nil, status.Errorf(status.InvalidParameter, "unknown open flags 0x%x", uint32(flags&^hashOnlyFlags))
	}
	p := &Provider{name: name, flags: flags}

	if alg, err := digest.Lookup(name); err == nil {
		p.family, p.hash = FamilyHash, alg
		return p, nil
	}
	if flags&hashOnlyFlags != 0 {
		// HMAC and reusable providers only exist for hash algorithms
		return nil, status.Errorf(status.NotFound, "%s provider with hash flags 0x%x", name, uint32(flags))
	}
	if alg, err := symmetric.Lookup(name); err == nil {
		p.family, p.cipher, p.mode = FamilyCipher, alg, alg.DefaultMode
		return p, nil
	}
	if alg, err := asymmetric.Lookup(name); err == nil {
		p.family, p.asym = FamilyAsymmetric, alg
		return p, nil
	}
	if name == RNG {
		p.family = FamilyRNG
		return p, nil
	}
	return nil, status.Errorf(status.NotFound, "algorithm %q", name)
}

type pseudoKey struct {
	name  string
	flags OpenFlags
}

type pseudoEntry struct {
	once sync.Once
	p    *Provider
	err  error
}

var (
	pseudoMu sync.Mutex
	pseudos  = make(map[pseudoKey]*pseudoEntry)
)

// Pseudo returns the process-wide provider for name and flags, creating it
// on first use. Its properties are read-only and Close refuses it.
func Pseudo(name string, flags OpenFlags) (*Provider, error) {
	key := pseudoKey{name: name, flags: flags}
	pseudoMu.Lock()
	e, ok := pseudos[key]
	if !ok {
		e = &pseudoEntry{}
		pseudos[key] = e
	}
	pseudoMu.Unlock()

	e.once.Do(func() {
		e.p, e.err = newProvider(name, flags)
		if e.p != nil {
			e.p.pseudo = true
		}
	})
	return e.p, e.err
}

// Name returns the algorithm name of the provider.
func (p *Provider) Name() string {
	return p.name
}

// Family returns the class of algorithm the provider serves.
func (p *Provider) Family() Family {
	return p.family
}

// Close releases the provider. Objects created from it stay usable.
func (p *Provider) Close() error {
	if p == nil {
		return status.Errorf(status.InvalidHandle, "nil provider")
	}
	if p.pseudo {
		return status.Errorf(status.InvalidHandle, "%s pseudo-provider cannot be closed", p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return status.Errorf(status.InvalidHandle, "%s provider already closed", p.name)
	}
	p.closed = true
	crypto.NewPackageLogger("cngcrypt", "Close").WithAlgorithm(p.name).Debug("closed provider")
	return nil
}

// open checks that p is a live provider of the given family.
func (p *Provider) open(family Family) error {
	if p == nil {
		return status.Errorf(status.InvalidHandle, "nil provider")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return status.Errorf(status.InvalidHandle, "%s provider closed", p.name)
	}
	if p.family != family {
		return status.Errorf(status.InvalidHandle, "%s is a %s provider, not %s", p.name, p.family, family)
	}
	return nil
}

func (p *Provider) chainingMode() symmetric.Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

func (p *Provider) setChainingMode(m symmetric.Mode) error {
	if !p.cipher.Supports(m) {
		return status.Errorf(status.NotSupported, "%s does not support %s", p.name, m)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = m
	return nil
}
