// Package digest implements the hash engine: the table of supported hash
// algorithms, streaming hash and HMAC state, and the hash-based key
// derivations (PBKDF2 and the CryptDeriveKey expansion).
//
// MD4 comes from golang.org/x/crypto/md4 and MD2 is implemented here
// following RFC 1319. The remaining algorithms use the standard library.
package digest
