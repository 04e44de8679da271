package serializer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/ValentinKolb/birch/lib/schema"
	"github.com/puzpuzpuz/xsync/v3"
)

// fileBufferSize is the buffer size for Read and Write.
const fileBufferSize = 64 * 1024

// LoaderOptions configures a Loader. The zero value (and nil) selects a
// fresh private schema registry and no metrics.
type LoaderOptions struct {
	// Schemas is the schema registry to encode against. Nil creates a fresh
	// empty registry. Pass a shared registry to keep several loaders wire
	// compatible.
	Schemas *schema.Registry

	// CollectMetrics enables the birch_serialize_* and birch_deserialize_*
	// operation counters.
	CollectMetrics bool
}

// Loader is the dispatch engine tying the registries together: it resolves
// a codec for every value it meets and drives the recursive encoding and
// decoding of object graphs. See the package documentation for the
// resolution order and the wire format.
type Loader struct {
	schemas *schema.Registry

	serializers map[reflect.Type]ISerializer // exact-type codecs, highest precedence
	kinds       map[reflect.Kind]ISerializer // built-in codecs by kind

	resolved *xsync.MapOf[reflect.Type, ISerializer] // resolution cache

	metrics *loaderMetrics // nil unless CollectMetrics was set
}

// NewLoader creates a ready-to-use Loader. Passing nil options is fine.
func NewLoader(opts *LoaderOptions) *Loader {
	if opts == nil {
		opts = &LoaderOptions{}
	}

	schemas := opts.Schemas
	if schemas == nil {
		schemas = schema.NewRegistry()
	}

	ld := &Loader{
		schemas: schemas,
		serializers: map[reflect.Type]ISerializer{
			reflect.TypeOf([]byte(nil)): bytesSerializerImpl{},
		},
		kinds:    builtinKinds(),
		resolved: xsync.NewMapOf[reflect.Type, ISerializer](),
	}
	if opts.CollectMetrics {
		ld.metrics = newLoaderMetrics()
	}
	return ld
}

// builtinKinds wires the built-in codecs for every supported kind. Named
// types keep their kind, so a `type Level uint8` encodes exactly like
// uint8. Maps are resolved separately since sets and mappings share a kind.
func builtinKinds() map[reflect.Kind]ISerializer {
	return map[reflect.Kind]ISerializer{
		reflect.Bool:    boolSerializerImpl{},
		reflect.Int:     intSerializerImpl{width: 4},
		reflect.Int8:    intSerializerImpl{width: 1},
		reflect.Int16:   intSerializerImpl{width: 2},
		reflect.Int32:   intSerializerImpl{width: 4},
		reflect.Int64:   intSerializerImpl{width: 8},
		reflect.Uint:    uintSerializerImpl{width: 4},
		reflect.Uint8:   uintSerializerImpl{width: 1},
		reflect.Uint16:  uintSerializerImpl{width: 2},
		reflect.Uint32:  uintSerializerImpl{width: 4},
		reflect.Uint64:  uintSerializerImpl{width: 8},
		reflect.Float32: floatSerializerImpl{width: 4},
		reflect.Float64: floatSerializerImpl{width: 8},
		reflect.String:  stringSerializerImpl{},
		reflect.Slice:   listSerializerImpl{},
		reflect.Array:   listSerializerImpl{},
	}
}

// unitType marks map[T]struct{} as a set.
var unitType = reflect.TypeOf(struct{}{})

// --------------------------------------------------------------------------
// Registration
// --------------------------------------------------------------------------

// Schemas returns the loader's schema registry, for registering types and
// inspecting assigned aliases and tags.
func (ld *Loader) Schemas() *schema.Registry {
	return ld.schemas
}

// Register installs a bespoke codec for sample's type (a value, a pointer
// or a reflect.Type - pointers are unwrapped). The codec takes precedence
// over the built-ins and over the schema-driven codec; the last
// registration for a type wins.
func (ld *Loader) Register(sample any, s ISerializer) error {
	if sample == nil {
		return fmt.Errorf("cannot register a serializer for nil")
	}
	if s == nil {
		return fmt.Errorf("cannot register a nil serializer")
	}

	t, ok := sample.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(sample)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	ld.serializers[t] = s
	ld.resolved.Store(t, s)
	return nil
}

// --------------------------------------------------------------------------
// Serialization
// --------------------------------------------------------------------------

// Serialize encodes v into its untagged wire representation.
func (ld *Loader) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := ld.SerializeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeTo streams v's untagged wire representation into w.
func (ld *Loader) SerializeTo(w io.Writer, v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil has no runtime type", ErrUnregisteredType)
	}

	cw := &countingWriter{w: w}
	err := ld.serializeValue(cw, reflect.ValueOf(v))
	ld.metrics.serializeDone(cw.n, err)
	return err
}

// SerializeTagged encodes v with a leading uint16 type tag, producing a
// self-describing stream DeserializeTagged can decode without knowing the
// type upfront. Only the top level is tagged, nested values stay bare.
func (ld *Loader) SerializeTagged(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := ld.SerializeTaggedTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeTaggedTo streams v's tagged wire representation into w.
func (ld *Loader) SerializeTaggedTo(w io.Writer, v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil has no runtime type", ErrUnregisteredType)
	}

	cw := &countingWriter{w: w}
	err := ld.writeTagged(cw, reflect.ValueOf(v))
	ld.metrics.serializeDone(cw.n, err)
	return err
}

// --------------------------------------------------------------------------
// Deserialization
// --------------------------------------------------------------------------

// Deserialize decodes data into target, which must be a non-nil pointer to
// the expected type. Trailing bytes after the decoded value are ignored.
func (ld *Loader) Deserialize(data []byte, target any) error {
	return ld.DeserializeFrom(bytes.NewReader(data), target)
}

// DeserializeFrom decodes one value from r into target. The reader is left
// positioned right after the decoded value.
func (ld *Loader) DeserializeFrom(r io.Reader, target any) error {
	err := ld.deserializeInto(r, target)
	ld.metrics.deserializeDone(err)
	return err
}

// DeserializeTagged decodes a tagged stream produced by SerializeTagged,
// resolving the payload type from the tag prefix.
func (ld *Loader) DeserializeTagged(data []byte) (any, error) {
	return ld.DeserializeTaggedFrom(bytes.NewReader(data))
}

// DeserializeTaggedFrom decodes one tagged value from r.
func (ld *Loader) DeserializeTaggedFrom(r io.Reader) (any, error) {
	v, err := ld.readTagged(r, "stream tag")
	ld.metrics.deserializeDone(err)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// --------------------------------------------------------------------------
// File I/O
// --------------------------------------------------------------------------

// Write serializes v into the file at path, replacing any existing file.
// I/O failures are reported as ErrFileAccess, distinct from encoding
// failures.
func (ld *Loader) Write(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}

	bw := bufio.NewWriterSize(f, fileBufferSize)
	if err := ld.SerializeTo(bw, v); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}

// Read deserializes the file at path into target. I/O failures opening the
// file are reported as ErrFileAccess; decode failures keep their own
// errors.
func (ld *Loader) Read(path string, target any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer f.Close()

	return ld.DeserializeFrom(bufio.NewReaderSize(f, fileBufferSize), target)
}

// --------------------------------------------------------------------------
// Dispatch
// --------------------------------------------------------------------------

// serializeValue encodes one value: indirect to the concrete value, resolve
// its codec, delegate.
func (ld *Loader) serializeValue(w io.Writer, v reflect.Value) error {
	v, err := indirect(v)
	if err != nil {
		return err
	}

	s, err := ld.resolve(v.Type())
	if err != nil {
		return err
	}
	return s.Serialize(ld, w, v)
}

// deserializeValue decodes one value of type t. Pointer types are decoded
// as their element type and re-wrapped, mirroring the transparent encoding
// of pointers.
func (ld *Loader) deserializeValue(r io.Reader, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		inner, err := ld.deserializeValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	s, err := ld.resolve(t)
	if err != nil {
		return reflect.Value{}, err
	}
	return s.Deserialize(ld, r, t)
}

// writeTagged writes v's type tag followed by v's encoding. Used for the
// top level of tagged streams and for every container entry.
func (ld *Loader) writeTagged(w io.Writer, v reflect.Value) error {
	v, err := indirect(v)
	if err != nil {
		return err
	}

	// Resolve before tagging so unserializable values fail without
	// consuming a tag
	s, err := ld.resolve(v.Type())
	if err != nil {
		return err
	}

	tag := ld.schemas.TagOf(v.Type())
	if err := writeUint16(w, uint16(tag)); err != nil {
		return err
	}
	return s.Serialize(ld, w, v)
}

// readTagged reads a type tag and decodes the following value as the
// tagged type.
func (ld *Loader) readTagged(r io.Reader, what string) (reflect.Value, error) {
	rawTag, err := readUint16(r, what)
	if err != nil {
		return reflect.Value{}, err
	}

	t, ok := ld.schemas.TypeOf(schema.TypeTag(rawTag))
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %d", ErrUnknownTypeTag, rawTag)
	}
	return ld.deserializeValue(r, t)
}

// resolve returns the codec for t, caching the result. Registered struct
// types resolve to the schema-driven codec; the cache entry stays valid
// across re-registration since the codec reads the definition live.
func (ld *Loader) resolve(t reflect.Type) (ISerializer, error) {
	if s, ok := ld.resolved.Load(t); ok {
		return s, nil
	}

	s, err := ld.resolveSlow(t)
	if err != nil {
		return nil, err
	}
	ld.resolved.Store(t, s)
	return s, nil
}

func (ld *Loader) resolveSlow(t reflect.Type) (ISerializer, error) {
	if s, ok := ld.serializers[t]; ok {
		return s, nil
	}

	switch t.Kind() {
	case reflect.Map:
		if t.Elem() == unitType {
			return setSerializerImpl{}, nil
		}
		return mappingSerializerImpl{}, nil
	case reflect.Struct:
		if ld.schemas.Contains(t) {
			return structSerializerImpl{}, nil
		}
	default:
		if s, ok := ld.kinds[t.Kind()]; ok {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, t)
}

// deserializeInto validates the target and writes the decoded value through
// the pointer.
func (ld *Loader) deserializeInto(r io.Reader, target any) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidTarget)
	}

	dst := reflect.ValueOf(target)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("%w: need a non-nil pointer, got %T", ErrInvalidTarget, target)
	}

	v, err := ld.deserializeValue(r, dst.Type().Elem())
	if err != nil {
		return err
	}
	dst.Elem().Set(v)
	return nil
}

// indirect unwraps interfaces and pointers down to the concrete value.
func indirect(v reflect.Value) (reflect.Value, error) {
	for {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: nil interface value", ErrNilValue)
			}
			v = v.Elem()
		case reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrNilValue, v.Type())
			}
			v = v.Elem()
		default:
			return v, nil
		}
	}
}

// countingWriter tracks written bytes for the metrics counters.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
