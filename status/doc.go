// Package status defines the result codes shared by every cngcrypt package.
//
// Codes follow the NTSTATUS values used by the Windows CNG API so that a
// caller bridging to native code can pass them through unchanged. Each code
// is an error value in its own right:
//
//	if errors.Is(err, status.BufferTooSmall) {
//	    need, _ := status.RequiredSize(err)
//	    buf = make([]byte, need)
//	}
//
// # Error Taxonomy
//
//   - Programmer errors: InvalidHandle, InvalidParameter, NotFound, AccessDenied
//   - Capacity errors: BufferTooSmall and InvalidBufferSize, always carrying the
//     exact required size in a [SizeError]
//   - Data-integrity errors: AuthTagMismatch, InvalidSignature, BadData
//   - Capability errors: NotSupported
//
// Context is attached with [Errorf]; the wrapped code stays reachable through
// errors.Is and [Of].
package status
