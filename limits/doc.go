// Package limits provides centralized length ranges, secret fitting and
// buffer-size negotiation for the cngcrypt provider. Every engine validates
// through this package so that the same input is accepted or rejected the
// same way no matter which call path reaches it.
//
// # Length Ranges
//
// Algorithms publish the key and tag lengths they accept as a [Range] of
// minimum, maximum and increment. Key ranges are expressed in bits, tag
// ranges in bytes, matching the KeyLengths and AuthTagLength properties:
//
//	aesBits := limits.Range{Min: 128, Max: 256, Increment: 64}
//	aesBits.Contains(192) // true
//	aesBits.Contains(160) // false
//
// # Secret Fitting
//
// [FitSecret] applies the symmetric key rule: an empty or off-increment
// secret is rejected with InvalidParameter, while a secret longer than the
// maximum is silently truncated to the maximum.
//
// # Buffer Negotiation
//
// Every call that produces output follows one idiom:
//
//	n, err := key.Encrypt(plaintext, nil, iv, nil, flags) // size query
//	out := make([]byte, n)
//	n, err = key.Encrypt(plaintext, nil, iv, out, flags)  // real call
//
// [Negotiate] treats an empty output as a query, reports BufferTooSmall with
// the exact required size for a short buffer and never writes into a buffer
// it rejects.
package limits
