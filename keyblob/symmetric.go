package keyblob

import (
	"github.com/opd-ai/cngcrypt/crypto"
	"github.com/opd-ai/cngcrypt/status"
)

const (
	keyDataVersion = 1
	opaqueVersion  = 1
)

type keyDataHeader struct {
	Magic      Magic
	Version    uint32
	KeyDataLen uint32
}

// EncodeKeyData wraps a raw symmetric secret in a KDBM blob.
func EncodeKeyData(secret []byte) []byte {
	var w writer
	w.header(keyDataHeader{Magic: KeyDataMagic, Version: keyDataVersion, KeyDataLen: uint32(len(secret))})
	w.Write(secret)
	return w.Bytes()
}

// ParseKeyData returns a copy of the secret held in a KDBM blob.
func ParseKeyData(blob []byte) ([]byte, error) {
	var h keyDataHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return nil, err
	}
	if h.Magic != KeyDataMagic {
		return nil, wrongMagic(h.Magic, KeyDataMagic)
	}
	if h.Version != keyDataVersion {
		return nil, status.Errorf(status.InvalidParameter, "key data blob version %d", h.Version)
	}
	r := reader{buf: rest}
	if err := r.need(h.KeyDataLen); err != nil {
		return nil, err
	}
	return crypto.CloneBytes(r.next(h.KeyDataLen)), nil
}

// OpaqueKey is the provider-internal serialization of a symmetric key,
// including its chaining settings. It only round-trips through this
// package.
type OpaqueKey struct {
	Algorithm          string
	Mode               string
	MessageBlockLength int
	Secret             []byte
}

type opaqueHeader struct {
	Magic              Magic
	Version            uint32
	AlgorithmLen       uint32
	ModeLen            uint32
	MessageBlockLength uint32
	SecretLen          uint32
}

// EncodeOpaque serializes k.
func EncodeOpaque(k OpaqueKey) []byte {
	var w writer
	w.header(opaqueHeader{
		Magic:              OpaqueMagic,
		Version:            opaqueVersion,
		AlgorithmLen:       uint32(len(k.Algorithm)),
		ModeLen:            uint32(len(k.Mode)),
		MessageBlockLength: uint32(k.MessageBlockLength),
		SecretLen:          uint32(len(k.Secret)),
	})
	w.WriteString(k.Algorithm)
	w.WriteString(k.Mode)
	w.Write(k.Secret)
	return w.Bytes()
}

// ParseOpaque decodes a blob produced by EncodeOpaque.
func ParseOpaque(blob []byte) (OpaqueKey, error) {
	var h opaqueHeader
	rest, err := readHeader(blob, &h)
	if err != nil {
		return OpaqueKey{}, err
	}
	if h.Magic != OpaqueMagic {
		return OpaqueKey{}, wrongMagic(h.Magic, OpaqueMagic)
	}
	if h.Version != opaqueVersion {
		return OpaqueKey{}, status.Errorf(status.InvalidParameter, "opaque blob version %d", h.Version)
	}
	r := reader{buf: rest}
	if err := r.need(h.AlgorithmLen, h.ModeLen, h.SecretLen); err != nil {
		return OpaqueKey{}, err
	}
	mbl, err := crypto.SafeUint32ToInt(h.MessageBlockLength)
	if err != nil {
		return OpaqueKey{}, badData("%v", err)
	}
	return OpaqueKey{
		Algorithm:          string(r.next(h.AlgorithmLen)),
		Mode:               string(r.next(h.ModeLen)),
		MessageBlockLength: mbl,
		Secret:             crypto.CloneBytes(r.next(h.SecretLen)),
	}, nil
}
