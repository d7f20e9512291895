package props

import (
	"bytes"

	"github.com/opd-ai/cngcrypt/status"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// String encodes a string property as NUL-terminated UTF-16LE, the wire
// form CNG uses for algorithm names and chaining modes.
func String(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// the encoder replaces invalid UTF-8, it does not fail on it
		return []byte{0, 0}
	}
	return append(b, 0, 0)
}

// ParseString decodes a UTF-16LE property value. A trailing NUL is optional.
func ParseString(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", status.Errorf(status.InvalidParameter, "odd-length UTF-16 value")
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", status.Errorf(status.InvalidParameter, "decode UTF-16 value: %v", err)
	}
	return string(bytes.TrimRight(s, "\x00")), nil
}
