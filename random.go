package cngcrypt

import (
	"crypto/rand"

	"github.com/opd-ai/cngcrypt/status"
)

// GenRandom fills out with random bytes. A nil provider selects the
// system-preferred generator; otherwise p must be an RNG provider.
func GenRandom(p *Provider, out []byte) error {
	if p != nil {
		if err := p.open(FamilyRNG); err != nil {
			return err
		}
	}
	if _, err := rand.Read(out); err != nil {
		return status.Errorf(status.InvalidParameter, "read random bytes: %v", err)
	}
	return nil
}
