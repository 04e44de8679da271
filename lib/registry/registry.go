package registry

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by Put when the requested identifier is already
// bound to a different key.
var ErrConflict = errors.New("identifier conflict")

// --------------------------------------------------------------------------
// Identifier Generation
// --------------------------------------------------------------------------

// Generator produces the identifier for a key on its first lookup.
//
// A Generator must advance on every call (counter style): when a produced
// identifier collides with one claimed by an explicit Put, the registry
// invokes the generator again until an unbound identifier comes out.
type Generator[K comparable, V comparable] func(key K) V

// Integer constrains the identifier types a Counter can produce.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Counter returns a Generator handing out sequential identifiers starting at
// first. This is the default generation strategy for field aliases and type
// tags.
func Counter[K comparable, V Integer](first V) Generator[K, V] {
	next := first
	return func(K) V {
		v := next
		next++
		return v
	}
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry is a bijective mapping between keys and compact identifiers.
// Identifiers are created lazily by the generator on first access or bound
// explicitly via Put. Both directions stay consistent: rebinding a key
// releases its previous identifier.
type Registry[K comparable, V comparable] struct {
	forward   map[K]V           // key -> identifier
	backward  map[V]K           // identifier -> key
	overrides map[K]struct{}    // keys bound via Put, immune to Rebuild
	order     []K               // keys in first-seen order
	generator Generator[K, V]
}

// New creates an empty registry using gen for identifier generation.
func New[K comparable, V comparable](gen Generator[K, V]) *Registry[K, V] {
	return &Registry[K, V]{
		forward:   make(map[K]V),
		backward:  make(map[V]K),
		overrides: make(map[K]struct{}),
		generator: gen,
	}
}

// Get returns the identifier for key, generating and caching one on first
// access.
func (r *Registry[K, V]) Get(key K) V {
	if v, ok := r.forward[key]; ok {
		return v
	}

	// Skip identifiers already claimed by an explicit Put
	v := r.generator(key)
	for {
		if _, taken := r.backward[v]; !taken {
			break
		}
		v = r.generator(key)
	}

	r.bind(key, v)
	return v
}

// Lookup returns the identifier for key without generating one.
func (r *Registry[K, V]) Lookup(key K) (V, bool) {
	v, ok := r.forward[key]
	return v, ok
}

// KeyOf returns the key bound to value (the reverse lookup direction).
func (r *Registry[K, V]) KeyOf(value V) (K, bool) {
	k, ok := r.backward[value]
	return k, ok
}

// Put binds key to value explicitly. The binding survives Rebuild.
// Rebinding an already bound key releases its previous identifier; claiming
// an identifier that belongs to a different key fails with ErrConflict.
func (r *Registry[K, V]) Put(key K, value V) error {
	if prev, ok := r.backward[value]; ok && prev != key {
		return fmt.Errorf("%w: %v is already bound to %v", ErrConflict, value, prev)
	}

	if old, ok := r.forward[key]; ok && old != value {
		delete(r.backward, old)
	}

	r.bind(key, value)
	r.overrides[key] = struct{}{}
	return nil
}

// SetGenerator replaces the generator for future bindings. Cached
// identifiers are not touched - call Rebuild to discard them.
func (r *Registry[K, V]) SetGenerator(gen Generator[K, V]) {
	r.generator = gen
}

// Rebuild drops every generated binding from both directions. Bindings made
// via Put survive. The next Get for a dropped key invokes the (possibly
// replaced) generator again.
func (r *Registry[K, V]) Rebuild() {
	kept := r.order[:0]
	for _, k := range r.order {
		if _, ok := r.overrides[k]; ok {
			kept = append(kept, k)
			continue
		}
		if v, bound := r.forward[k]; bound {
			delete(r.forward, k)
			delete(r.backward, v)
		}
	}
	r.order = kept
}

// Contains reports whether key currently has an identifier.
func (r *Registry[K, V]) Contains(key K) bool {
	_, ok := r.forward[key]
	return ok
}

// Len returns the number of bound keys.
func (r *Registry[K, V]) Len() int {
	return len(r.forward)
}

// Keys returns all bound keys in first-seen order.
func (r *Registry[K, V]) Keys() []K {
	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// bind writes both map directions and records first-seen order.
func (r *Registry[K, V]) bind(key K, value V) {
	if _, seen := r.forward[key]; !seen {
		r.order = append(r.order, key)
	}
	r.forward[key] = value
	r.backward[value] = key
}
