package agreement

import (
	"math/big"
	"sync"

	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/sirupsen/logrus"
)

// Secret is an agreed shared value.
type Secret struct {
	alg string

	mu        sync.Mutex
	z         []byte
	destroyed bool
}

// Agree computes the shared secret of local's private key and peer's
// public key. Both keys must be finalized key pairs of the same
// agreement algorithm.
func Agree(local, peer *asymmetric.KeyPair) (*Secret, error) {
	if local == nil || peer == nil {
		return nil, status.Errorf(status.InvalidHandle, "nil key pair")
	}
	alg := local.Algorithm()
	logger := crypto.NewPackageLogger("agreement", "Agree").WithAlgorithm(alg.Name)

	if peer.Algorithm() != alg {
		return nil, status.Errorf(status.InvalidParameter, "peer key is %s, local key is %s", peer.Algorithm().Name, alg.Name)
	}

	var (
		z   []byte
		err error
	)
	switch alg.Kind {
	case asymmetric.KindECDH:
		z, err = agreeECDH(local, peer)
	case asymmetric.KindDH:
		z, err = agreeDH(local, peer)
	default:
		return nil, status.Errorf(status.NotSupported, "%s cannot agree on secrets", alg.Name)
	}
	if err != nil {
		logger.WithError(err, "agree").Debug("secret agreement failed")
		return nil, err
	}

	logger.WithField("secret_size", len(z)).Debug("agreed shared secret")
	return &Secret{alg: alg.Name, z: z}, nil
}

func agreeECDH(local, peer *asymmetric.KeyPair) ([]byte, error) {
	priv, _, err := local.ECDH()
	if err != nil {
		return nil, err
	}
	if priv == nil {
		return nil, status.Errorf(status.InvalidHandle, "local key has no private half")
	}
	_, pub, err := peer.ECDH()
	if err != nil {
		return nil, err
	}
	z, err := priv.ECDH(pub)
	if err != nil {
		return nil, status.Errorf(status.InvalidParameter, "ECDH: %v", err)
	}
	return z, nil
}

func agreeDH(local, peer *asymmetric.KeyPair) ([]byte, error) {
	mine, size, err := local.DH()
	if err != nil {
		return nil, err
	}
	if mine.X == nil {
		return nil, status.Errorf(status.InvalidHandle, "local key has no private half")
	}
	theirs, _, err := peer.DH()
	if err != nil {
		return nil, err
	}
	if theirs.P.Cmp(mine.P) != 0 || theirs.G.Cmp(mine.G) != 0 {
		return nil, status.Errorf(status.InvalidParameter, "keys belong to different DH groups")
	}

	z := new(big.Int).Exp(theirs.Y, mine.X, mine.P)
	defer crypto.WipeBigInt(z)
	if z.Cmp(big.NewInt(1)) <= 0 {
		return nil, status.Errorf(status.InvalidParameter, "degenerate DH shared value")
	}
	return z.FillBytes(make([]byte, size)), nil
}

// Size returns the length of the shared value.
func (s *Secret) Size() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return 0, status.Errorf(status.InvalidHandle, "secret destroyed")
	}
	return len(s.z), nil
}

// Destroy wipes the shared value. A second Destroy is InvalidHandle.
func (s *Secret) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return status.Errorf(status.InvalidHandle, "secret already destroyed")
	}
	crypto.ZeroBytes(s.z)
	s.z = nil
	s.destroyed = true
	logrus.WithFields(logrus.Fields{
		"package":   "agreement",
		"function":  "Destroy",
		"algorithm": s.alg,
	}).Debug("destroyed secret")
	return nil
}
