package serializer

import (
	"fmt"
	"io"
	"reflect"
)

// The container codecs share one wire shape: a uint32 count followed by the
// entries, each prefixed with the uint16 type tag of its runtime type. The
// tags are what make heterogeneous containers ([]any, map[string]any)
// self-describing. Map and set iteration follows Go map order, so the byte
// output for multi-entry containers is not canonical - round-trip equality
// is the contract.

// --------------------------------------------------------------------------
// Slices and Arrays
// --------------------------------------------------------------------------

// listSerializerImpl encodes slices and arrays: the element count followed
// by tagged elements in positional order.
type listSerializerImpl struct{}

func (listSerializerImpl) Serialize(ld *Loader, w io.Writer, v reflect.Value) error {
	n := v.Len()
	if err := writeUint32(w, uint32(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := ld.writeTagged(w, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (listSerializerImpl) Deserialize(ld *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	n, err := readUint32(r, "element count")
	if err != nil {
		return reflect.Value{}, err
	}

	var out reflect.Value
	if t.Kind() == reflect.Array {
		if int(n) != t.Len() {
			return reflect.Value{}, fmt.Errorf("%w: array of length %d cannot hold %d elements",
				ErrMalformedStream, t.Len(), n)
		}
		out = reflect.New(t).Elem()
	} else {
		out = reflect.MakeSlice(t, int(n), int(n))
	}

	elem := t.Elem()
	for i := 0; i < int(n); i++ {
		decoded, err := ld.readTagged(r, "element tag")
		if err != nil {
			return reflect.Value{}, err
		}
		fitted, err := fitValue(decoded, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(fitted)
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Sets
// --------------------------------------------------------------------------

// setSerializerImpl encodes map[T]struct{} as the member count followed by
// tagged members.
type setSerializerImpl struct{}

func (setSerializerImpl) Serialize(ld *Loader, w io.Writer, v reflect.Value) error {
	if err := writeUint32(w, uint32(v.Len())); err != nil {
		return err
	}
	iter := v.MapRange()
	for iter.Next() {
		if err := ld.writeTagged(w, iter.Key()); err != nil {
			return err
		}
	}
	return nil
}

func (setSerializerImpl) Deserialize(ld *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	n, err := readUint32(r, "member count")
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeMapWithSize(t, int(n))
	unit := reflect.ValueOf(struct{}{})
	key := t.Key()
	for i := 0; i < int(n); i++ {
		decoded, err := ld.readTagged(r, "member tag")
		if err != nil {
			return reflect.Value{}, err
		}
		fitted, err := fitValue(decoded, key)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(fitted, unit)
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Maps
// --------------------------------------------------------------------------

// mappingSerializerImpl encodes maps as the entry count followed by tagged
// key/value pairs.
type mappingSerializerImpl struct{}

func (mappingSerializerImpl) Serialize(ld *Loader, w io.Writer, v reflect.Value) error {
	if err := writeUint32(w, uint32(v.Len())); err != nil {
		return err
	}
	iter := v.MapRange()
	for iter.Next() {
		if err := ld.writeTagged(w, iter.Key()); err != nil {
			return err
		}
		if err := ld.writeTagged(w, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (mappingSerializerImpl) Deserialize(ld *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	n, err := readUint32(r, "entry count")
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeMapWithSize(t, int(n))
	for i := 0; i < int(n); i++ {
		decodedKey, err := ld.readTagged(r, "key tag")
		if err != nil {
			return reflect.Value{}, err
		}
		key, err := fitValue(decodedKey, t.Key())
		if err != nil {
			return reflect.Value{}, err
		}

		decodedValue, err := ld.readTagged(r, "value tag")
		if err != nil {
			return reflect.Value{}, err
		}
		value, err := fitValue(decodedValue, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetMapIndex(key, value)
	}
	return out, nil
}

// fitValue adapts a decoded value to the declared destination type,
// re-wrapping pointers since pointer types are transparent on the wire.
func fitValue(decoded reflect.Value, dst reflect.Type) (reflect.Value, error) {
	if decoded.Type() == dst || decoded.Type().AssignableTo(dst) {
		return decoded, nil
	}
	if dst.Kind() == reflect.Pointer {
		if inner, err := fitValue(decoded, dst.Elem()); err == nil {
			p := reflect.New(dst.Elem())
			p.Elem().Set(inner)
			return p, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %s cannot hold a decoded %s",
		ErrMalformedStream, dst, decoded.Type())
}
