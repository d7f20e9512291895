package props

import (
	"encoding/binary"

	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/status"
)

// Name identifies a property. Names match the CNG property strings.
type Name string

// Property names understood by the provider.
const (
	ObjectLength       Name = "ObjectLength"
	HashDigestLength   Name = "HashDigestLength"
	HashBlockLength    Name = "HashBlockLength"
	BlockLength        Name = "BlockLength"
	ChainingMode       Name = "ChainingMode"
	KeyLengths         Name = "KeyLengths"
	AuthTagLength      Name = "AuthTagLength"
	AlgorithmName      Name = "AlgorithmName"
	KeyLength          Name = "KeyLength"
	KeyStrength        Name = "KeyStrength"
	MessageBlockLength Name = "MessageBlockLength"
	DHParameters       Name = "DHParameters"
	ECCCurveName       Name = "ECCCurveName"
	PaddingSchemes     Name = "PaddingSchemes"
)

var known = map[Name]struct{}{
	ObjectLength:       {},
	HashDigestLength:   {},
	HashBlockLength:    {},
	BlockLength:        {},
	ChainingMode:       {},
	KeyLengths:         {},
	AuthTagLength:      {},
	AlgorithmName:      {},
	KeyLength:          {},
	KeyStrength:        {},
	MessageBlockLength: {},
	DHParameters:       {},
	ECCCurveName:       {},
	PaddingSchemes:     {},
}

// Known reports whether name is a property the provider understands for at
// least one object class.
func Known(name Name) bool {
	_, ok := known[name]
	return ok
}

// Getter produces the encoded value of a property.
type Getter func() ([]byte, error)

// Setter consumes an encoded property value.
type Setter func(value []byte) error

// Table is the property surface of one handle. Properties without a getter
// are not meaningful for the object; properties without a setter are
// read-only.
type Table struct {
	getters  map[Name]Getter
	setters  map[Name]Setter
	readOnly bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		getters: make(map[Name]Getter),
		setters: make(map[Name]Setter),
	}
}

// Get registers a getter and returns the table for chaining.
func (t *Table) Get(name Name, g Getter) *Table {
	t.getters[name] = g
	return t
}

// Set registers a setter and returns the table for chaining.
func (t *Table) Set(name Name, s Setter) *Table {
	t.setters[name] = s
	return t
}

// Value registers a constant value.
func (t *Table) Value(name Name, v []byte) *Table {
	return t.Get(name, func() ([]byte, error) { return v, nil })
}

// Freeze marks the table as belonging to a process-wide pseudo-handle:
// every mutation is refused with AccessDenied.
func (t *Table) Freeze() *Table {
	t.readOnly = true
	return t
}

// Read negotiates the value of name into out and returns the size of the
// value.
func (t *Table) Read(name Name, out []byte) (int, error) {
	if !Known(name) {
		return 0, status.Errorf(status.InvalidParameter, "unknown property %q", name)
	}
	g, ok := t.getters[name]
	if !ok {
		return 0, status.Errorf(status.NotSupported, "property %q", name)
	}
	v, err := g()
	if err != nil {
		return 0, err
	}
	return limits.CopyOut(out, v)
}

// Write applies value to name.
func (t *Table) Write(name Name, value []byte) error {
	if !Known(name) {
		return status.Errorf(status.InvalidParameter, "unknown property %q", name)
	}
	if t.readOnly {
		return status.Errorf(status.AccessDenied, "property %q on a pseudo-handle", name)
	}
	s, ok := t.setters[name]
	if !ok {
		return status.Errorf(status.NotSupported, "property %q is not settable", name)
	}
	return s(value)
}

// Uint32 encodes a length or count property.
func Uint32(v int) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// ParseUint32 decodes a 4-byte little-endian property value.
func ParseUint32(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, status.Errorf(status.InvalidParameter, "expected 4-byte value, got %d", len(b))
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

// Lengths encodes a range as the min/max/increment triplet used by the
// KeyLengths and AuthTagLength properties.
func Lengths(r limits.Range) []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:], uint32(r.Min))
	binary.LittleEndian.PutUint32(b[4:], uint32(r.Max))
	binary.LittleEndian.PutUint32(b[8:], uint32(r.Increment))
	return b
}

// ParseLengths decodes a min/max/increment triplet.
func ParseLengths(b []byte) (limits.Range, error) {
	if len(b) != 12 {
		return limits.Range{}, status.Errorf(status.InvalidParameter, "expected 12-byte length triplet, got %d", len(b))
	}
	return limits.Range{
		Min:       int(binary.LittleEndian.Uint32(b[0:])),
		Max:       int(binary.LittleEndian.Uint32(b[4:])),
		Increment: int(binary.LittleEndian.Uint32(b[8:])),
	}, nil
}
