package keyblob

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/status"
)

// Blob type names, as accepted by import and export.
const (
	KeyDataBlob        = "KeyDataBlob"
	OpaqueKeyBlob      = "OpaqueKeyBlob"
	PublicBlob         = "PUBLICBLOB"
	PrivateBlob        = "PRIVATEBLOB"
	RSAPublicBlob      = "RSAPUBLICBLOB"
	RSAPrivateBlob     = "RSAPRIVATEBLOB"
	RSAFullPrivateBlob = "RSAFULLPRIVATEBLOB"
	ECCPublicBlob      = "ECCPUBLICBLOB"
	ECCPrivateBlob     = "ECCPRIVATEBLOB"
	DHPublicBlob       = "DHPUBLICBLOB"
	DHPrivateBlob      = "DHPRIVATEBLOB"
	DSAPublicBlob      = "DSAPUBLICBLOB"
	DSAPrivateBlob     = "DSAPRIVATEBLOB"
	CAPIPublicBlob     = "CAPIPUBLICBLOB"
	CAPIPrivateBlob    = "CAPIPRIVATEBLOB"
	CAPIDSAPublicBlob  = "CAPIDSAPUBLICBLOB"
	CAPIDSAPrivateBlob = "CAPIDSAPRIVATEBLOB"
)

// Magic identifies the layout of a blob.
type Magic uint32

// Blob magics.
const (
	KeyDataMagic        Magic = 0x4d42444b // KDBM
	OpaqueMagic         Magic = 0x4b51504f // OPQK
	RSAPublicMagic      Magic = 0x31415352 // RSA1
	RSAPrivateMagic     Magic = 0x32415352 // RSA2
	RSAFullPrivateMagic Magic = 0x33415352 // RSA3
	ECDHPublicP256      Magic = 0x314B4345 // ECK1
	ECDHPrivateP256     Magic = 0x324B4345 // ECK2
	ECDHPublicP384      Magic = 0x334B4345 // ECK3
	ECDHPrivateP384     Magic = 0x344B4345 // ECK4
	ECDSAPublicP256     Magic = 0x31534345 // ECS1
	ECDSAPrivateP256    Magic = 0x32534345 // ECS2
	ECDSAPublicP384     Magic = 0x33534345 // ECS3
	ECDSAPrivateP384    Magic = 0x34534345 // ECS4
	DHPublicMagic       Magic = 0x42504844 // DHPB
	DHPrivateMagic      Magic = 0x56504844 // DHPV
	DHParametersMagic   Magic = 0x4d504844 // DHPM
	DSAPublicMagic      Magic = 0x42505344 // DSPB
	DSAPrivateMagic     Magic = 0x56505344 // DSPV
	DSS1Magic           Magic = 0x31535344 // DSS1
	DSS2Magic           Magic = 0x32535344 // DSS2
)

// readHeader decodes the fixed header h from the front of blob and returns
// the remaining bytes.
func readHeader(blob []byte, h interface{}) ([]byte, error) {
	size := binary.Size(h)
	if len(blob) < size {
		return nil, status.Errorf(status.InvalidParameter, "blob of %d bytes is shorter than its %d-byte header", len(blob), size)
	}
	if err := binary.Read(bytes.NewReader(blob[:size]), binary.LittleEndian, h); err != nil {
		return nil, status.Errorf(status.InvalidParameter, "decode header: %v", err)
	}
	return blob[size:], nil
}

// writer accumulates a blob.
type writer struct {
	bytes.Buffer
}

func (w *writer) header(h interface{}) {
	// writes into a bytes.Buffer only fail on unsized types
	_ = binary.Write(&w.Buffer, binary.LittleEndian, h)
}

// fixed appends v big-endian, left-padded to n bytes.
func (w *writer) fixed(v *big.Int, n int) {
	w.Write(v.FillBytes(make([]byte, n)))
}

// reversed appends v little-endian, right-padded to n bytes.
func (w *writer) reversed(v *big.Int, n int) {
	w.Write(reverse(v.FillBytes(make([]byte, n))))
}

// reader walks the variable part of a blob.
type reader struct {
	buf []byte
}

// need checks up front that the declared field lengths fit the buffer.
func (r *reader) need(lengths ...uint32) error {
	total, err := crypto.SumLengths(lengths...)
	if err != nil {
		return status.Errorf(status.InvalidParameter, "%v", err)
	}
	if total > len(r.buf) {
		return status.Errorf(status.InvalidParameter, "declared sizes need %d bytes, blob has %d", total, len(r.buf))
	}
	return nil
}

func (r *reader) next(n uint32) []byte {
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

// int reads a big-endian unsigned integer.
func (r *reader) int(n uint32) *big.Int {
	return new(big.Int).SetBytes(r.next(n))
}

// intLE reads a little-endian unsigned integer.
func (r *reader) intLE(n uint32) *big.Int {
	return new(big.Int).SetBytes(reverse(crypto.CloneBytes(r.next(n))))
}

func reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// byteLen returns the width needed to hold v, but at least min.
func byteLen(v *big.Int, min int) int {
	if n := (v.BitLen() + 7) / 8; n > min {
		return n
	}
	return min
}

func badData(format string, args ...interface{}) error {
	return status.Errorf(status.BadData, format, args...)
}

func wrongMagic(got, want Magic) error {
	return status.Errorf(status.InvalidParameter, "blob magic 0x%08x, expected 0x%08x", uint32(got), uint32(want))
}
