// Package cngcrypt is a cryptographic primitives provider modelled on the
// Windows CNG programming interface.
//
// Callers open an algorithm provider by name and create objects from it:
// hash objects from hash providers, symmetric keys from cipher providers
// and key pairs from asymmetric providers. Every object reports its
// metadata through GetProperty, and every call that produces bytes accepts
// an empty output buffer to learn the required size first.
//
// # Getting Started
//
//	p, err := cngcrypt.Open("SHA256", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	n, err := cngcrypt.Hash(p, nil, []byte("abc"), nil) // n == 32
//	digest := make([]byte, n)
//	_, err = cngcrypt.Hash(p, nil, []byte("abc"), digest)
//
// # Providers
//
// Open returns a private provider; Pseudo returns a shared, read-only
// provider that is created on first use and never closed. OpenHMAC turns
// a hash provider into an HMAC provider, and OpenReusable makes its hash
// objects rewind after Finish.
//
// Supported algorithms:
//
//   - hashes: MD2, MD4, MD5, SHA1, SHA256, SHA384, SHA512
//   - ciphers: AES (ECB, CBC, CFB, GCM), 3DES and 3DES_112 (ECB, CBC, CFB), RC4
//   - asymmetric: RSA, DSA, ECDSA_P256, ECDSA_P384, ECDH_P256, ECDH_P384, DH
//   - RNG
//
// # Symmetric Encryption
//
//	aes, _ := cngcrypt.Open("AES", 0)
//	_ = cngcrypt.SetPropertyString(aes, props.ChainingMode, "ChainingModeGCM")
//	key, _ := aes.GenerateSymmetricKey(secret)
//	defer key.Destroy()
//
//	auth := &cngcrypt.AuthInfo{Nonce: nonce, Tag: make([]byte, 16)}
//	ct := make([]byte, len(plaintext))
//	_, err := key.Encrypt(plaintext, auth, nil, ct, 0)
//
// # Key Pairs
//
// GenerateKeyPair returns an unfinalized key pair whose KeyLength (and, for
// DH, DHParameters) may still be set. Finalize creates the key material.
// ImportKeyPair accepts the BCrypt and legacy CryptoAPI blob formats listed
// in the keyblob package.
//
// # Errors
//
// Every failure is a status code from the status package, usable with
// errors.Is. A short output buffer yields status.BufferTooSmall and
// status.RequiredSize reports the size that would have succeeded.
//
// # Logging
//
// The package logs through logrus. Configure sets the level, formatter and
// output process-wide together with the default RSA key size.
package cngcrypt
