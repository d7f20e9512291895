package cngcrypt

import (
	"github.com/opd-ai/cngcrypt/asymmetric"
	"github.com/opd-ai/cngcrypt/limits"
	"github.com/opd-ai/cngcrypt/props"
	"github.com/opd-ai/cngcrypt/status"
	"github.com/opd-ai/cngcrypt/symmetric"
)

// Object is a handle with properties: *Provider, *HashObject,
// *SymmetricKey or *KeyPair.
type Object interface {
	properties() (*props.Table, error)
}

// GetProperty reads property name of obj into out and returns the value
// size. An empty out only reports the size; a short out is BufferTooSmall
// and is left untouched.
func GetProperty(obj Object, name props.Name, out []byte) (int, error) {
	if obj == nil {
		return 0, status.Errorf(status.InvalidHandle, "nil object")
	}
	t, err := obj.properties()
	if err != nil {
		return 0, err
	}
	return t.Read(name, out)
}

// SetProperty writes property name of obj.
func SetProperty(obj Object, name props.Name, value []byte) error {
	if obj == nil {
		return status.Errorf(status.InvalidHandle, "nil object")
	}
	t, err := obj.properties()
	if err != nil {
		return err
	}
	return t.Write(name, value)
}

// GetPropertyUint32 reads a length or count property.
func GetPropertyUint32(obj Object, name props.Name) (int, error) {
	var buf [4]byte
	n, err := GetProperty(obj, name, buf[:])
	if err != nil {
		return 0, err
	}
	return props.ParseUint32(buf[:n])
}

// GetPropertyString reads a string property.
func GetPropertyString(obj Object, name props.Name) (string, error) {
	size, err := GetProperty(obj, name, nil)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := GetProperty(obj, name, buf); err != nil {
		return "", err
	}
	return props.ParseString(buf)
}

// SetPropertyString writes a string property.
func SetPropertyString(obj Object, name props.Name, value string) error {
	return SetProperty(obj, name, props.String(value))
}

func (p *Provider) properties() (*props.Table, error) {
	if p == nil {
		return nil, status.Errorf(status.InvalidHandle, "nil provider")
	}
	if err := p.open(p.family); err != nil {
		return nil, err
	}

	t := props.NewTable().Value(props.AlgorithmName, props.String(p.name))
	switch p.family {
	case FamilyHash:
		t.Value(props.ObjectLength, props.Uint32(p.hash.ObjectSize)).
			Value(props.HashDigestLength, props.Uint32(p.hash.Size)).
			Value(props.HashBlockLength, props.Uint32(p.hash.BlockSize))
	case FamilyCipher:
		alg := p.cipher
		t.Value(props.ObjectLength, props.Uint32(symmetric.ObjectSize)).
			Value(props.BlockLength, props.Uint32(alg.BlockSize)).
			Value(props.KeyLengths, props.Lengths(alg.KeyBits))
		if !alg.Stream() {
			mode := p.chainingMode()
			t.Value(props.ChainingMode, props.String(mode.String())).
				Set(props.ChainingMode, func(v []byte) error {
					m, err := parseModeValue(v)
					if err != nil {
						return err
					}
					return p.setChainingMode(m)
				})
			if mode == symmetric.ModeGCM {
				t.Value(props.AuthTagLength, props.Lengths(limits.AuthTagRange))
			}
		}
	case FamilyAsymmetric:
		t.Value(props.KeyLengths, props.Lengths(p.asym.KeyBits))
		asymmetricProperties(t, p.asym)
	}
	if p.pseudo {
		t.Freeze()
	}
	return t, nil
}

// asymmetricProperties registers the properties shared by asymmetric
// providers and their key pairs.
func asymmetricProperties(t *props.Table, alg *asymmetric.Algorithm) {
	if alg.Curve != nil {
		t.Value(props.ECCCurveName, props.String(alg.Curve.Name))
	}
	if schemes := alg.PaddingSchemes(); schemes != 0 {
		t.Value(props.PaddingSchemes, props.Uint32(schemes))
	}
}

func parseModeValue(v []byte) (symmetric.Mode, error) {
	s, err := props.ParseString(v)
	if err != nil {
		return symmetric.ModeNone, err
	}
	return symmetric.ParseMode(s)
}

func (h *HashObject) properties() (*props.Table, error) {
	if err := h.live(); err != nil {
		return nil, err
	}
	alg := h.state.Algorithm()
	return props.NewTable().
		Value(props.AlgorithmName, props.String(alg.Name)).
		Value(props.ObjectLength, props.Uint32(alg.ObjectSize)).
		Value(props.HashDigestLength, props.Uint32(alg.Size)).
		Value(props.HashBlockLength, props.Uint32(alg.BlockSize)), nil
}

func (k *SymmetricKey) properties() (*props.Table, error) {
	if k == nil || k.key == nil {
		return nil, status.Errorf(status.InvalidHandle, "nil key")
	}
	bits, err := k.key.KeyBits()
	if err != nil {
		return nil, err
	}
	alg := k.key.Algorithm()

	t := props.NewTable().
		Value(props.AlgorithmName, props.String(alg.Name)).
		Value(props.ObjectLength, props.Uint32(symmetric.ObjectSize)).
		Value(props.BlockLength, props.Uint32(alg.BlockSize)).
		Value(props.KeyLengths, props.Lengths(alg.KeyBits)).
		Value(props.KeyLength, props.Uint32(bits)).
		Value(props.KeyStrength, props.Uint32(bits))
	if alg.Stream() {
		return t, nil
	}

	mode, err := k.key.Mode()
	if err != nil {
		return nil, err
	}
	t.Value(props.ChainingMode, props.String(mode.String())).
		Set(props.ChainingMode, func(v []byte) error {
			m, err := parseModeValue(v)
			if err != nil {
				return err
			}
			return k.key.SetMode(m)
		}).
		Get(props.MessageBlockLength, func() ([]byte, error) {
			n, err := k.key.MessageBlockLength()
			if err != nil {
				return nil, err
			}
			return props.Uint32(n), nil
		}).
		Set(props.MessageBlockLength, func(v []byte) error {
			n, err := props.ParseUint32(v)
			if err != nil {
				return err
			}
			return k.key.SetMessageBlockLength(n)
		})
	if mode == symmetric.ModeGCM {
		t.Value(props.AuthTagLength, props.Lengths(limits.AuthTagRange))
	}
	return t, nil
}

func (k *KeyPair) properties() (*props.Table, error) {
	if k == nil || k.pair == nil {
		return nil, status.Errorf(status.InvalidHandle, "nil key pair")
	}
	pair := k.pair
	bits, err := pair.Bits()
	if err != nil {
		return nil, err
	}
	alg := pair.Algorithm()

	t := props.NewTable().
		Value(props.AlgorithmName, props.String(alg.Name)).
		Value(props.KeyStrength, props.Uint32(bits)).
		Get(props.KeyLength, func() ([]byte, error) {
			n, err := pair.Bits()
			if err != nil {
				return nil, err
			}
			return props.Uint32(n), nil
		}).
		Set(props.KeyLength, func(v []byte) error {
			n, err := props.ParseUint32(v)
			if err != nil {
				return err
			}
			return pair.SetBits(n)
		})
	asymmetricProperties(t, alg)
	if alg.Kind == asymmetric.KindDH {
		t.Get(props.DHParameters, pair.DHParameters).
			Set(props.DHParameters, pair.SetDHParameters)
	}
	return t, nil
}
