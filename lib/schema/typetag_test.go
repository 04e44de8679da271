package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/birch/lib/registry"
)

type alpha struct{ A int }
type beta struct{ B int }

// TestTagRegistrationOrder tests that registration order pins the tags
func TestTagRegistrationOrder(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register(alpha{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := r.Register(beta{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if tag := r.TagOf(reflect.TypeOf(alpha{})); tag != 1 {
		t.Errorf("First registered type should have tag 1, got %d", tag)
	}
	if tag := r.TagOf(reflect.TypeOf(beta{})); tag != 2 {
		t.Errorf("Second registered type should have tag 2, got %d", tag)
	}
}

// TestTagOfAutoCreates tests lazy tag assignment for arbitrary types
func TestTagOfAutoCreates(t *testing.T) {
	r := NewRegistry()

	// Primitives never get a class definition but still get tags
	st := reflect.TypeOf("")
	it := reflect.TypeOf(0)

	if tag := r.TagOf(st); tag != 1 {
		t.Errorf("First tagged type should have tag 1, got %d", tag)
	}
	if tag := r.TagOf(it); tag != 2 {
		t.Errorf("Second tagged type should have tag 2, got %d", tag)
	}
	if tag := r.TagOf(st); tag != 1 {
		t.Errorf("Repeated TagOf should return the cached tag 1, got %d", tag)
	}
}

// TestLookupTag tests that LookupTag never assigns
func TestLookupTag(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.LookupTag(reflect.TypeOf("")); ok {
		t.Error("LookupTag of an unseen type should return false")
	}

	// The lookup above must not have consumed a tag
	if tag := r.TagOf(reflect.TypeOf(0)); tag != 1 {
		t.Errorf("First assigned tag should still be 1, got %d", tag)
	}

	tag, ok := r.LookupTag(reflect.TypeOf(0))
	if !ok || tag != 1 {
		t.Errorf("LookupTag should return (1, true), got (%d, %v)", tag, ok)
	}
}

// TestTypeOf tests resolving tags back to types
func TestTypeOf(t *testing.T) {
	r := NewRegistry()
	at := reflect.TypeOf(alpha{})
	tag := r.TagOf(at)

	got, ok := r.TypeOf(tag)
	if !ok || got != at {
		t.Errorf("TypeOf(%d) should return alpha, got %s (found: %v)", tag, got, ok)
	}

	if _, ok := r.TypeOf(999); ok {
		t.Error("Unknown tag should not resolve to a type")
	}
}

// TestPutTagConflict tests explicit tag bindings and conflicts
func TestPutTagConflict(t *testing.T) {
	r := NewRegistry()
	at := reflect.TypeOf(alpha{})
	bt := reflect.TypeOf(beta{})

	if err := r.PutTag(at, 7); err != nil {
		t.Fatalf("PutTag should succeed, got %v", err)
	}
	if tag := r.TagOf(at); tag != 7 {
		t.Errorf("TagOf should return the explicit tag 7, got %d", tag)
	}

	err := r.PutTag(bt, 7)
	if err == nil {
		t.Fatal("PutTag of a taken tag should fail")
	}
	if !errors.Is(err, ErrTypeTagConflict) {
		t.Errorf("Error should wrap ErrTypeTagConflict, got %v", err)
	}
	if !errors.Is(err, registry.ErrConflict) {
		t.Errorf("Error should also wrap the underlying registry.ErrConflict, got %v", err)
	}
}

// TestRebuildTags tests deterministic tag reassignment under a new generator
func TestRebuildTags(t *testing.T) {
	r := NewRegistry()
	at := reflect.TypeOf(alpha{})
	bt := reflect.TypeOf(beta{})
	st := reflect.TypeOf("")

	r.TagOf(at) // 1
	r.TagOf(bt) // 2
	if err := r.PutTag(st, 100); err != nil {
		t.Fatalf("PutTag should succeed, got %v", err)
	}

	r.SetTagGenerator(registry.Counter[reflect.Type, TypeTag](10))
	r.RebuildTags()

	// Generated tags are reassigned in first-seen order, the explicit one survives
	if tag := r.TagOf(at); tag != 10 {
		t.Errorf("alpha should be reassigned tag 10, got %d", tag)
	}
	if tag := r.TagOf(bt); tag != 11 {
		t.Errorf("beta should be reassigned tag 11, got %d", tag)
	}
	if tag := r.TagOf(st); tag != 100 {
		t.Errorf("Explicit tag 100 should survive the rebuild, got %d", tag)
	}
}
