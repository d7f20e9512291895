package digest

import (
	gocrypto "crypto"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"

	"github.com/opd-ai/cngcrypt/status"
	"golang.org/x/crypto/md4"
)

// Algorithm names accepted by Lookup.
const (
	MD2    = "MD2"
	MD4    = "MD4"
	MD5    = "MD5"
	SHA1   = "SHA1"
	SHA256 = "SHA256"
	SHA384 = "SHA384"
	SHA512 = "SHA512"
)

// Algorithm describes one hash family.
type Algorithm struct {
	Name string
	// Size is the digest length in bytes.
	Size int
	// BlockSize is the compression block length in bytes.
	BlockSize int
	// ObjectSize is the scratch size a caller-supplied hash object buffer
	// must provide.
	ObjectSize int
	// ID maps the algorithm onto the standard library hash identifiers
	// used by signature padding. It is zero for MD2.
	ID  gocrypto.Hash
	New func() hash.Hash
}

var algorithms = map[string]*Algorithm{
	MD2:    {Name: MD2, Size: 16, BlockSize: 16, ObjectSize: 270, New: newMD2},
	MD4:    {Name: MD4, Size: 16, BlockSize: 64, ObjectSize: 270, ID: gocrypto.MD4, New: md4.New},
	MD5:    {Name: MD5, Size: 16, BlockSize: 64, ObjectSize: 274, ID: gocrypto.MD5, New: md5.New},
	SHA1:   {Name: SHA1, Size: 20, BlockSize: 64, ObjectSize: 278, ID: gocrypto.SHA1, New: sha1.New},
	SHA256: {Name: SHA256, Size: 32, BlockSize: 64, ObjectSize: 286, ID: gocrypto.SHA256, New: sha256.New},
	SHA384: {Name: SHA384, Size: 48, BlockSize: 128, ObjectSize: 382, ID: gocrypto.SHA384, New: sha512.New384},
	SHA512: {Name: SHA512, Size: 64, BlockSize: 128, ObjectSize: 382, ID: gocrypto.SHA512, New: sha512.New},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (*Algorithm, error) {
	alg, ok := algorithms[name]
	if !ok {
		return nil, status.Errorf(status.NotFound, "hash algorithm %q", name)
	}
	return alg, nil
}

// Names lists every supported hash algorithm in lexical order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum hashes data in one call.
func (a *Algorithm) Sum(data ...[]byte) []byte {
	h := a.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
