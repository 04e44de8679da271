// Package schema maintains the registered knowledge the serialization engine
// needs about user types: which fields of a struct are serializable, in which
// order, under which compact wire aliases, and which global type tag
// identifies the type in self-describing streams.
//
// Key Components:
//
//   - Registry: the central schema store. It owns one ClassDefinition per
//     registered struct type plus the shared type tag registry. Types are
//     registered reflectively via Register (all exported fields, refined by
//     `birch:"..."` struct tags) or manually via RegisterFields (explicit
//     field selection and aliases). Both paths produce identical
//     ClassDefinition structures. Registering a type again replaces its
//     previous definition; its type tag is kept.
//
//   - ClassDefinition: the schema of one struct type - the serializable
//     fields in declaration order and a per-class alias registry mapping
//     field names to wire tokens. Aliases start at 1 within every class;
//     explicit aliases (struct tag or FieldSpec) are claimed first and
//     automatic ones fill in around them.
//
//   - Type Tags: a registry-wide mapping between types and uint16 wire
//     tokens, used as the stream prefix in tagged mode and in front of every
//     container element. Tags are assigned on first use in registration
//     order, may be pinned via PutTag, and can be reassigned in bulk via
//     RebuildTags after changing the generation strategy.
//
// Nested struct types reachable through registered fields (directly or via
// pointers, slices, arrays and maps) are registered automatically, so
// registering the root type of an object graph is enough.
//
// A type whose exported field set is empty (time.Time, for example)
// registers fine but serializes to nothing - such types need a bespoke
// serializer installed on the loader instead.
//
// Determinism: two registries fed the same registrations in the same order
// assign identical aliases and tags. This is what makes separately built
// encoder and decoder processes wire compatible without exchanging schemas.
//
// Thread Safety:
//
// The registry is not safe for concurrent mutation. Register everything
// during startup, then share it read-only across goroutines.
package schema
