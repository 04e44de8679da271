// Package serializer implements the schema-driven binary serialization
// engine: a set of built-in codecs for primitives and containers, a
// schema-driven codec for registered struct types, and the Loader that ties
// them together by resolving the right codec for every value in an object
// graph.
//
// Key Components:
//
//   - Loader: the dispatch engine and public entry point. It owns a schema
//     registry (shared or private), the serializer registry and a resolution
//     cache. Serialize/Deserialize work against a known type,
//     SerializeTagged/DeserializeTagged produce and consume self-describing
//     streams carrying a type tag prefix, and Read/Write wrap the same
//     operations around buffered file I/O.
//
//   - ISerializer: the codec capability. Built-in implementations cover
//     bool, all fixed-width integer and float kinds, strings, []byte,
//     slices, arrays, sets (map[T]struct{}) and maps. A bespoke codec
//     registered via Register takes precedence over the built-ins for its
//     exact type.
//
//   - structSerializerImpl: the default codec for registered struct types.
//     It writes alias+value pairs in field declaration order and decodes
//     framed by the schema's field count, so wire field order is free and
//     trailing bytes are left for the caller.
//
// Codec resolution for a value of type t, in order:
//
//  1. a codec registered for exactly t
//  2. the built-in codec for t's kind (named types keep their kind, so a
//     `type Level uint8` encodes exactly like uint8)
//  3. the schema-driven struct codec, if t has a class definition
//  4. otherwise the value is unserializable (ErrUnregisteredType)
//
// Wire format (big-endian throughout):
//
//   - bool: one byte, 0x00 or 0x01
//   - int/uint: 4 bytes, range checked; sized variants at their natural width
//   - float32/float64: IEEE-754, 4/8 bytes
//   - string, []byte: uint32 length prefix + raw bytes
//   - slices, arrays, sets, maps: uint32 count, then per entry a uint16 type
//     tag in front of every element (and every map key and value). The tags
//     make heterogeneous containers ([]any, map[string]any) self-describing.
//   - registered structs: per field a uint32 alias followed by the bare
//     field value, in declaration order
//
// Pointers are transparent on the wire: a *User encodes exactly like the
// User it points to and nil pointers are unserializable (ErrNilValue).
// Tagged mode prefixes the top level value with its uint16 type tag; nested
// values are never tagged since their types are known from the schema.
//
// Cyclic object graphs are not supported - encoding one recurses until the
// stack runs out, exactly like encoding/gob. Decoded lengths are trusted,
// so streams from untrusted peers should be size-limited by the caller.
//
// Thread Safety:
//
// Registration (schemas, tags, bespoke codecs) must complete before the
// loader is shared. Afterwards concurrent Serialize/Deserialize calls are
// safe: the resolution cache is a concurrent map and all codecs are
// stateless. Note that encoding a container element whose type was never
// seen before assigns a new type tag, which counts as registration - encode
// every element type once upfront (or register its schema) when sharing a
// loader across goroutines.
package serializer
