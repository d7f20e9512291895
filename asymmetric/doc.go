// Package asymmetric implements the key-pair engine for RSA, DSA, ECDSA,
// ECDH and finite-field Diffie-Hellman.
//
// A generated KeyPair starts unfinalized: its length and, for DH, its
// group may still change. Finalize creates the key material exactly once;
// every other operation on an unfinalized key is InvalidHandle. Imported
// key pairs are finalized from the start, and each import replaces every
// component rather than merging into an existing key.
//
// Sign and Verify take a precomputed digest. RSA keys select PKCS #1 v1.5
// or PSS through a Padding value; DSA and ECDSA signatures are the
// fixed-width concatenation r||s. Encrypt and Decrypt are RSA only and
// support raw, PKCS #1 v1.5 and OAEP padding.
//
// DH keys use the RFC 2409 and RFC 3526 MODP groups for 768, 1024, 1536,
// 2048, 3072 and 4096 bits. Other sizes need explicit parameters through
// SetDHParameters before Finalize.
package asymmetric
