// Package keyblob encodes and decodes the binary key blob formats:
// symmetric key-data and opaque blobs, the BCrypt RSA, ECC, DH and DSA
// blobs, and the legacy CryptoAPI RSA and DSS blobs.
//
// Header fields are little-endian. Components of the BCrypt blobs are
// big-endian and padded to their declared width; CryptoAPI components are
// little-endian.
//
// Parsers separate two failure classes. A blob whose magic is wrong,
// whose header is truncated or whose declared sizes run past the buffer is
// InvalidParameter. A well-formed blob whose contents cannot describe a
// valid key (an oversized exponent, a point off the curve, a modulus that
// disagrees with its bit length) is BadData.
package keyblob
