package serializer

import (
	"io"
	"reflect"
)

// ISerializer is the codec capability for one family of types: it turns
// values into bytes and bytes back into values. Implementations receive the
// loader to recurse into nested values and, on the decode side, the target
// type to produce.
//
// Implementations must be stateless - the same instance is shared across
// goroutines once registration is complete.
type ISerializer interface {
	// Serialize writes v's wire representation to w. v is already
	// indirected: never a pointer, never an interface.
	Serialize(ld *Loader, w io.Writer, v reflect.Value) error

	// Deserialize reads one value of type t from r.
	Deserialize(ld *Loader, r io.Reader, t reflect.Type) (reflect.Value, error)
}
