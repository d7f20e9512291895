// Package symmetric implements the block cipher engine: AES, two- and
// three-key 3DES and RC4 keys with ECB, CBC, CFB (8-bit feedback) and GCM
// chaining, PKCS#7 block padding and the size-query protocol shared by
// every provider call.
//
// A Key never stores per-call cipher state. IVs, CFB registers, GCM
// instances and RC4 keystreams are built at the start of each call, so one
// Key may encrypt from many goroutines at the same time.
package symmetric
