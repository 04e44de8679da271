package serializer

import (
	"fmt"
	"io"
	"math"
	"reflect"
)

// --------------------------------------------------------------------------
// Bool
// --------------------------------------------------------------------------

// boolSerializerImpl encodes bools as a single byte, 0x00 or 0x01.
type boolSerializerImpl struct{}

func (boolSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	b := byte(0)
	if v.Bool() {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func (boolSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	buf, err := readBytes(r, 1, "bool")
	if err != nil {
		return reflect.Value{}, err
	}

	// Any non-zero byte decodes to true
	out := reflect.New(t).Elem()
	out.SetBool(buf[0] != 0)
	return out, nil
}

// --------------------------------------------------------------------------
// Integers
// --------------------------------------------------------------------------

// intSerializerImpl encodes signed integers as big-endian two's complement
// of the given byte width. The plain int kind maps to 4 bytes and is range
// checked, so values beyond 32 bits fail instead of being truncated.
type intSerializerImpl struct {
	width int
}

func (s intSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	n := v.Int()
	if err := checkIntRange(n, s.width); err != nil {
		return err
	}

	buf := make([]byte, s.width)
	putFixed(buf, uint64(n))
	_, err := w.Write(buf)
	return err
}

func (s intSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	buf, err := readBytes(r, s.width, "integer")
	if err != nil {
		return reflect.Value{}, err
	}

	n := signExtend(fixed(buf), s.width)
	out := reflect.New(t).Elem()
	if out.OverflowInt(n) {
		return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrValueOutOfRange, n, t)
	}
	out.SetInt(n)
	return out, nil
}

// uintSerializerImpl encodes unsigned integers as big-endian values of the
// given byte width. The plain uint kind maps to 4 bytes and is range
// checked.
type uintSerializerImpl struct {
	width int
}

func (s uintSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	n := v.Uint()
	if err := checkUintRange(n, s.width); err != nil {
		return err
	}

	buf := make([]byte, s.width)
	putFixed(buf, n)
	_, err := w.Write(buf)
	return err
}

func (s uintSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	buf, err := readBytes(r, s.width, "unsigned integer")
	if err != nil {
		return reflect.Value{}, err
	}

	n := fixed(buf)
	out := reflect.New(t).Elem()
	if out.OverflowUint(n) {
		return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrValueOutOfRange, n, t)
	}
	out.SetUint(n)
	return out, nil
}

// --------------------------------------------------------------------------
// Floats
// --------------------------------------------------------------------------

// floatSerializerImpl encodes floats as big-endian IEEE-754 of 4 or 8
// bytes.
type floatSerializerImpl struct {
	width int
}

func (s floatSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	var bits uint64
	if s.width == 4 {
		bits = uint64(math.Float32bits(float32(v.Float())))
	} else {
		bits = math.Float64bits(v.Float())
	}

	buf := make([]byte, s.width)
	putFixed(buf, bits)
	_, err := w.Write(buf)
	return err
}

func (s floatSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	buf, err := readBytes(r, s.width, "float")
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	if s.width == 4 {
		out.SetFloat(float64(math.Float32frombits(uint32(fixed(buf)))))
	} else {
		out.SetFloat(math.Float64frombits(fixed(buf)))
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Strings and Bytes
// --------------------------------------------------------------------------

// stringSerializerImpl encodes strings as a uint32 length prefix followed
// by the raw UTF-8 bytes.
type stringSerializerImpl struct{}

func (stringSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	s := v.String()
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func (stringSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	n, err := readUint32(r, "string length")
	if err != nil {
		return reflect.Value{}, err
	}
	buf, err := readBytes(r, int(n), "string data")
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	out.SetString(string(buf))
	return out, nil
}

// bytesSerializerImpl is the exact-type codec for []byte: a uint32 length
// prefix followed by the raw bytes, instead of tagging every element like
// the generic slice codec would.
type bytesSerializerImpl struct{}

func (bytesSerializerImpl) Serialize(_ *Loader, w io.Writer, v reflect.Value) error {
	b := v.Bytes()
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func (bytesSerializerImpl) Deserialize(_ *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	n, err := readUint32(r, "bytes length")
	if err != nil {
		return reflect.Value{}, err
	}
	buf, err := readBytes(r, int(n), "bytes data")
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	out.SetBytes(buf)
	return out, nil
}
