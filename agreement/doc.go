// Package agreement computes Diffie-Hellman and ECDH shared secrets and
// turns them into key material.
//
// Agree combines a local key pair holding a private half with a peer's
// public key of the same algorithm. The resulting Secret keeps the shared
// value in big-endian form, padded to the field size, and never exposes
// it directly: callers obtain bytes through DeriveKey with one of the
// TRUNCATE, HASH, HMAC or HKDF key derivation functions.
package agreement
