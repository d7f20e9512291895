package status

import (
	"errors"
	"fmt"
)

// Status is an NTSTATUS-compatible result code. Every non-success Status
// value is usable directly as an error and as an errors.Is target.
type Status uint32

// Result codes returned by the provider. Values match the NTSTATUS codes
// used by CNG so callers bridging to native code can pass them through.
const (
	Success           Status = 0x00000000
	InvalidHandle     Status = 0xC0000008
	InvalidParameter  Status = 0xC000000D
	AccessDenied      Status = 0xC0000022
	BufferTooSmall    Status = 0xC0000023
	NotSupported      Status = 0xC00000BB
	InvalidBufferSize Status = 0xC0000206
	NotFound          Status = 0xC0000225
	InvalidSignature  Status = 0xC000A000
	AuthTagMismatch   Status = 0xC000A002
	BadData           Status = 0x80090005
)

var names = map[Status]string{
	Success:           "success",
	InvalidHandle:     "invalid handle",
	InvalidParameter:  "invalid parameter",
	AccessDenied:      "access denied",
	BufferTooSmall:    "buffer too small",
	NotSupported:      "not supported",
	InvalidBufferSize: "invalid buffer size",
	NotFound:          "not found",
	InvalidSignature:  "invalid signature",
	AuthTagMismatch:   "authentication tag mismatch",
	BadData:           "bad data",
}

// Error implements the error interface.
func (s Status) Error() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("status 0x%08X", uint32(s))
}

// String returns the symbolic name together with the numeric code.
func (s Status) String() string {
	return fmt.Sprintf("%s (0x%08X)", s.Error(), uint32(s))
}

// Error is a Status annotated with context about the failing call.
type Error struct {
	Status Status
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Status.Error()
	}
	return e.Status.Error() + ": " + e.Msg
}

// Unwrap exposes the underlying Status to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Status
}

// Errorf builds a context-carrying error for the given status.
func Errorf(s Status, format string, args ...interface{}) error {
	return &Error{Status: s, Msg: fmt.Sprintf(format, args...)}
}

// SizeError reports a capacity failure together with the exact number of
// bytes the caller has to supply.
type SizeError struct {
	Status   Status
	Required int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: %d bytes required", e.Status.Error(), e.Required)
}

// Unwrap exposes the underlying Status to errors.Is and errors.As.
func (e *SizeError) Unwrap() error {
	return e.Status
}

// TooSmall returns a BufferTooSmall error reporting the required size.
func TooSmall(required int) error {
	return &SizeError{Status: BufferTooSmall, Required: required}
}

// BadSize returns an InvalidBufferSize error reporting the size the input
// would have to be aligned to.
func BadSize(required int) error {
	return &SizeError{Status: InvalidBufferSize, Required: required}
}

// Of extracts the Status carried by err. A nil error maps to Success and
// an error without a Status maps to InvalidParameter.
func Of(err error) Status {
	if err == nil {
		return Success
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return InvalidParameter
}

// RequiredSize returns the size carried by a SizeError anywhere in err's
// chain.
func RequiredSize(err error) (int, bool) {
	var se *SizeError
	if errors.As(err, &se) {
		return se.Required, true
	}
	return 0, false
}

// IsIntegrity reports whether err is a data-integrity failure: the call was
// well formed but the cryptographic result did not check out.
func IsIntegrity(err error) bool {
	switch Of(err) {
	case AuthTagMismatch, InvalidSignature, BadData:
		return true
	}
	return false
}
