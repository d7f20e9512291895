// Package crypto holds the small helpers every cngcrypt package shares.
//
// # Logging
//
// [NewPackageLogger] builds a logrus entry tagged with the emitting
// package and function. Handles add the algorithm they belong to:
//
//	logger := crypto.NewPackageLogger("symmetric", "Encrypt").WithAlgorithm("AES")
//	logger.WithError(err, "seal").Debug("encrypt failed")
//
// Secret buffers are only ever logged through [SizeFields]. Public values
// such as tags or digests may use [SecureFieldHash], which records a short
// hex prefix.
//
// # Secure Memory Handling
//
// Key material is wiped when a handle is destroyed and intermediate
// buffers are wiped before they are released:
//
//	defer crypto.ZeroBytes(secret)
//	crypto.WipeBigInt(priv.D)
//
// [SecureWipe] goes through crypto/subtle so the compiler cannot elide the
// overwrite.
//
// # Blob Size Fields
//
// Key blobs declare their field sizes in 32-bit headers read from
// untrusted input. [SafeUint32ToInt] and [SumLengths] convert and total
// those sizes without wrapping.
package crypto
