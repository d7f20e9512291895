// Package props implements the generic property protocol shared by every
// cngcrypt handle.
//
// A handle exposes its metadata through a [Table] of getters and setters
// keyed by [Name]. The table enforces the lookup rules in one place:
//
//   - an unknown property name is InvalidParameter
//   - a known name with no getter on this object is NotSupported
//   - an empty output buffer is a size query
//   - a short output buffer is BufferTooSmall and is left untouched
//   - any mutation of a frozen (pseudo-handle) table is AccessDenied
//
// Values use the CNG encodings: lengths are little-endian uint32, length
// ranges are min/max/increment triplets and strings are NUL-terminated
// UTF-16LE.
package props
