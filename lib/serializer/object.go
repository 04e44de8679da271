package serializer

import (
	"fmt"
	"io"
	"reflect"

	"github.com/ValentinKolb/birch/lib/schema"
)

// structSerializerImpl is the default schema-driven codec for registered
// struct types. Every serializable field is written as its uint32 wire
// alias followed by the bare field value, in declaration order. Decoding is
// framed by the schema's field count: fields may arrive in any order, a
// repeated alias overwrites the earlier value, and bytes after the last
// field are left untouched for the caller.
type structSerializerImpl struct{}

func (structSerializerImpl) Serialize(ld *Loader, w io.Writer, v reflect.Value) error {
	def, err := ld.schemas.Get(v.Type())
	if err != nil {
		return err
	}

	for _, f := range def.Fields() {
		alias, _ := def.Alias(f.Name)
		if err := writeUint32(w, uint32(alias)); err != nil {
			return err
		}
		if err := ld.serializeValue(w, v.Field(f.Index)); err != nil {
			return fmt.Errorf("field %s.%s: %w", def.Type(), f.Name, err)
		}
	}
	return nil
}

func (structSerializerImpl) Deserialize(ld *Loader, r io.Reader, t reflect.Type) (reflect.Value, error) {
	def, err := ld.schemas.Get(t)
	if err != nil {
		return reflect.Value{}, err
	}

	out := def.NewInstance()
	for i := 0; i < len(def.Fields()); i++ {
		rawAlias, err := readUint32(r, "field alias")
		if err != nil {
			return reflect.Value{}, err
		}

		f, ok := def.FieldByAlias(schema.FieldAlias(rawAlias))
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: unknown field alias %d for %s",
				ErrMalformedStream, rawAlias, t)
		}

		fv, err := ld.deserializeValue(r, f.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s.%s: %w", t, f.Name, err)
		}
		out.Field(f.Index).Set(fv)
	}
	return out, nil
}
