package symmetric

import "github.com/opd-ai/cngcrypt/status"

// Mode is a block cipher chaining mode.
type Mode int

// Chaining modes. ModeNone is the mode of stream ciphers.
const (
	ModeNone Mode = iota
	ModeECB
	ModeCBC
	ModeCFB
	ModeGCM
)

var modeNames = map[Mode]string{
	ModeNone: "ChainingModeN/A",
	ModeECB:  "ChainingModeECB",
	ModeCBC:  "ChainingModeCBC",
	ModeCFB:  "ChainingModeCFB",
	ModeGCM:  "ChainingModeGCM",
}

// String returns the CNG chaining mode string.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "ChainingModeUnknown"
}

// ParseMode maps a CNG chaining mode string to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if m != ModeNone && name == s {
			return m, nil
		}
	}
	return ModeNone, status.Errorf(status.NotSupported, "chaining mode %q", s)
}
