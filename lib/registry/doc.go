// Package registry provides a bidirectional mapping between keys and compact
// identifiers, the building block underneath field aliases and type tags.
//
// The package contains:
//   - Registry: a generic bijective key/identifier store with lazy identifier
//     generation and explicit overrides
//   - Generator: the pluggable strategy that produces an identifier the first
//     time an unknown key is looked up
//   - Counter: the default Generator, handing out sequential identifiers
//
// A Registry keeps both lookup directions consistent at all times
// (KeyOf(Get(k)) == k), remembers the order in which keys were first seen,
// and distinguishes generated bindings from explicit ones: Rebuild discards
// everything the generator produced while bindings made via Put survive.
// This makes identifier assignment deterministic - two registries fed the
// same keys in the same order with the same generator hand out the same
// identifiers.
//
// Thread Safety:
//
// A Registry is not safe for concurrent mutation. Callers are expected to
// complete all registration before sharing the registry across goroutines;
// afterwards, concurrent read access (Lookup, KeyOf, Keys) is safe as long
// as no Get of an unseen key can occur.
package registry
