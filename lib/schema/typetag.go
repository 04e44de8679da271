package schema

import (
	"fmt"
	"reflect"

	"github.com/ValentinKolb/birch/lib/registry"
)

// TypeTag is the compact wire token identifying a type. It is written as the
// stream prefix in tagged mode and in front of every container element.
type TypeTag uint16

// TagOf returns the type tag for t, assigning the next free tag on first
// use. Tags are shared across the whole registry (not per class) and are
// deterministic under identical registration order.
func (r *Registry) TagOf(t reflect.Type) TypeTag {
	return r.tags.Get(t)
}

// LookupTag returns the tag for t without assigning one.
func (r *Registry) LookupTag(t reflect.Type) (TypeTag, bool) {
	return r.tags.Lookup(t)
}

// TypeOf resolves a wire tag back to its type.
func (r *Registry) TypeOf(tag TypeTag) (reflect.Type, bool) {
	return r.tags.KeyOf(tag)
}

// PutTag binds tag to t explicitly. The binding survives RebuildTags.
// Claiming a tag that belongs to a different type fails with
// ErrTypeTagConflict.
func (r *Registry) PutTag(t reflect.Type, tag TypeTag) error {
	if err := r.tags.Put(t, tag); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTypeTagConflict, t, err)
	}
	return nil
}

// SetTagGenerator replaces the tag generation strategy. Existing tags are
// unaffected until RebuildTags is called.
func (r *Registry) SetTagGenerator(gen registry.Generator[reflect.Type, TypeTag]) {
	r.tags.SetGenerator(gen)
}

// RebuildTags reassigns all generated tags using the current generator.
// Bindings made via PutTag survive. Types are reassigned in first-seen
// order, so the outcome is deterministic.
func (r *Registry) RebuildTags() {
	snapshot := r.tags.Keys()
	r.tags.Rebuild()
	for _, t := range snapshot {
		r.tags.Get(t)
	}
}
