package schema

import (
	"errors"
	"reflect"
	"testing"
)

// test types covering the registration paths

type address struct {
	Street string
	City   string
}

type user struct {
	Name string
	Age  int
	note string // unexported, must be ignored
	Home address
}

type record struct {
	First  string `birch:"alias=5"`
	Second string
	Third  string `birch:"-"`
	Fourth string
}

// TestRegisterBasic tests reflective registration of exported fields
func TestRegisterBasic(t *testing.T) {
	r := NewRegistry()

	def, err := r.Register(user{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if def.Type() != reflect.TypeOf(user{}) {
		t.Errorf("Definition type should be user, got %s", def.Type())
	}

	fields := def.Fields()
	wantNames := []string{"Name", "Age", "Home"}
	wantIndices := []int{0, 1, 3}

	if len(fields) != len(wantNames) {
		t.Fatalf("Definition should have %d fields, got %d", len(wantNames), len(fields))
	}
	for i, f := range fields {
		if f.Name != wantNames[i] {
			t.Errorf("Field %d should be %s, got %s", i, wantNames[i], f.Name)
		}
		if f.Index != wantIndices[i] {
			t.Errorf("Field %s should have struct index %d, got %d", f.Name, wantIndices[i], f.Index)
		}
		if alias, ok := def.Alias(f.Name); !ok || alias != FieldAlias(i+1) {
			t.Errorf("Field %s should have alias %d, got %d (found: %v)", f.Name, i+1, alias, ok)
		}
	}
}

// TestRegisterTagDirectives tests alias overrides and field exclusion via struct tags
func TestRegisterTagDirectives(t *testing.T) {
	r := NewRegistry()

	def, err := r.Register(record{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Third is excluded
	if _, ok := def.Field("Third"); ok {
		t.Error("Field Third should be excluded from the definition")
	}

	// Explicit alias is claimed first, automatic ones fill in around it
	wantAliases := map[string]FieldAlias{"First": 5, "Second": 1, "Fourth": 2}
	for name, want := range wantAliases {
		got, ok := def.Alias(name)
		if !ok || got != want {
			t.Errorf("Field %s should have alias %d, got %d (found: %v)", name, want, got, ok)
		}
	}
}

// TestRegisterAliasConflict tests that duplicate explicit aliases fail
func TestRegisterAliasConflict(t *testing.T) {
	type clash struct {
		A string `birch:"alias=3"`
		B string `birch:"alias=3"`
	}

	r := NewRegistry()
	_, err := r.Register(clash{})
	if err == nil {
		t.Fatal("Register should fail for duplicate aliases")
	}
	if !errors.Is(err, ErrFieldAliasConflict) {
		t.Errorf("Error should wrap ErrFieldAliasConflict, got %v", err)
	}
}

// TestRegisterInvalidTag tests that malformed struct tags fail
func TestRegisterInvalidTag(t *testing.T) {
	type badDirective struct {
		A string `birch:"rename=a"`
	}
	type badAlias struct {
		A string `birch:"alias=zero"`
	}

	r := NewRegistry()
	for name, sample := range map[string]any{"unknown directive": badDirective{}, "non-numeric alias": badAlias{}} {
		if _, err := r.Register(sample); !errors.Is(err, ErrInvalidTag) {
			t.Errorf("Register with %s should wrap ErrInvalidTag, got %v", name, err)
		}
	}
}

// TestRegisterNotStruct tests rejection of non-struct samples
func TestRegisterNotStruct(t *testing.T) {
	r := NewRegistry()

	for name, sample := range map[string]any{"int": 42, "nil": nil, "slice": []string{}} {
		if _, err := r.Register(sample); !errors.Is(err, ErrNotStruct) {
			t.Errorf("Register(%s) should wrap ErrNotStruct, got %v", name, err)
		}
	}
}

// TestRegisterInterfaceField tests that interface fields are rejected while
// interface container elements are allowed
func TestRegisterInterfaceField(t *testing.T) {
	type withIface struct {
		V any
	}
	type withAnyElems struct {
		Items  []any
		Lookup map[string]any
	}

	r := NewRegistry()

	if _, err := r.Register(withIface{}); !errors.Is(err, ErrUnsupportedField) {
		t.Errorf("Interface field should wrap ErrUnsupportedField, got %v", err)
	}
	if _, err := r.Register(withAnyElems{}); err != nil {
		t.Errorf("Interface container elements should register fine, got %v", err)
	}
}

// TestRegisterNestedDiscovery tests automatic registration of reachable struct types
func TestRegisterNestedDiscovery(t *testing.T) {
	type innerA struct{ V int }
	type innerB struct{ V int }
	type innerC struct{ V int }
	type innerD struct{ V int }
	type outer struct {
		Direct  innerA
		Ptr     *innerB
		Slice   []innerC
		Mapping map[string]innerD
	}

	r := NewRegistry()
	if _, err := r.Register(outer{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, inner := range []any{innerA{}, innerB{}, innerC{}, innerD{}} {
		it := reflect.TypeOf(inner)
		if !r.Contains(it) {
			t.Errorf("Nested type %s should be registered automatically", it)
		}
	}
}

// TestRegisterCyclicType tests that self-referential types terminate
func TestRegisterCyclicType(t *testing.T) {
	type node struct {
		Value int
		Next  *node
	}

	r := NewRegistry()
	def, err := r.Register(node{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(def.Fields()) != 2 {
		t.Errorf("Definition should have 2 fields, got %d", len(def.Fields()))
	}
	if !r.Contains(reflect.TypeOf(node{})) {
		t.Error("Cyclic type should be registered")
	}
}

// TestRegisterReplaces tests that re-registration replaces the definition but keeps the tag
func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	ut := reflect.TypeOf(user{})

	if _, err := r.Register(user{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tagBefore := r.TagOf(ut)
	typesBefore := len(r.Types())

	// Re-register with a restricted field set
	if _, err := r.RegisterFields(user{}, FieldSpec{Name: "Name"}); err != nil {
		t.Fatalf("RegisterFields failed: %v", err)
	}

	def, err := r.Get(ut)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(def.Fields()) != 1 || def.Fields()[0].Name != "Name" {
		t.Errorf("Replacement definition should have the single field Name, got %v", def.Fields())
	}

	if tagAfter := r.TagOf(ut); tagAfter != tagBefore {
		t.Errorf("Type tag should survive re-registration, got %d instead of %d", tagAfter, tagBefore)
	}
	if typesAfter := len(r.Types()); typesAfter != typesBefore {
		t.Errorf("Re-registration should not duplicate the type list (%d became %d)", typesBefore, typesAfter)
	}
}

// TestRegisterFields tests the manual registration path
func TestRegisterFields(t *testing.T) {
	r := NewRegistry()

	def, err := r.RegisterFields(user{},
		FieldSpec{Name: "Age", Alias: 9},
		FieldSpec{Name: "Name"},
	)
	if err != nil {
		t.Fatalf("RegisterFields failed: %v", err)
	}

	if len(def.Fields()) != 2 {
		t.Fatalf("Definition should have 2 fields, got %d", len(def.Fields()))
	}
	// FieldSpec order is field order on this path
	if def.Fields()[0].Name != "Age" || def.Fields()[1].Name != "Name" {
		t.Errorf("Fields should follow FieldSpec order, got %v", def.Fields())
	}

	if alias, _ := def.Alias("Age"); alias != 9 {
		t.Errorf("Age should have the explicit alias 9, got %d", alias)
	}
	if alias, _ := def.Alias("Name"); alias != 1 {
		t.Errorf("Name should have the automatic alias 1, got %d", alias)
	}
}

// TestRegisterFieldsErrors tests the failure modes of the manual path
func TestRegisterFieldsErrors(t *testing.T) {
	r := NewRegistry()

	if _, err := r.RegisterFields(user{}, FieldSpec{Name: "Missing"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Unknown field should wrap ErrUnknownField, got %v", err)
	}
	if _, err := r.RegisterFields(user{}, FieldSpec{Name: "note"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Unexported field should wrap ErrUnknownField, got %v", err)
	}
	if _, err := r.RegisterFields(user{}, FieldSpec{Name: "Name"}, FieldSpec{Name: "Name"}); !errors.Is(err, ErrFieldAliasConflict) {
		t.Errorf("Duplicate field selection should wrap ErrFieldAliasConflict, got %v", err)
	}
}

// TestRegisterSampleForms tests that values, pointers and reflect.Types all register
func TestRegisterSampleForms(t *testing.T) {
	samples := map[string]any{
		"value":        user{},
		"pointer":      &user{},
		"reflect.Type": reflect.TypeOf(user{}),
	}

	for name, sample := range samples {
		t.Run(name, func(t *testing.T) {
			r := NewRegistry()
			def, err := r.Register(sample)
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if def.Type() != reflect.TypeOf(user{}) {
				t.Errorf("Definition type should be user, got %s", def.Type())
			}
		})
	}
}

// TestGetUnregistered tests the schema lookup failure mode
func TestGetUnregistered(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get(reflect.TypeOf(user{}))
	if err == nil {
		t.Fatal("Get of an unregistered type should fail")
	}
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("Error should wrap ErrSchemaNotFound, got %v", err)
	}
}

// TestFieldByAlias tests resolving wire aliases back to fields
func TestFieldByAlias(t *testing.T) {
	r := NewRegistry()
	def, err := r.Register(user{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	f, ok := def.FieldByAlias(1)
	if !ok || f.Name != "Name" {
		t.Errorf("Alias 1 should resolve to field Name, got %v (found: %v)", f.Name, ok)
	}

	if _, ok := def.FieldByAlias(99); ok {
		t.Error("Unknown alias should not resolve to a field")
	}
}

// TestDeterministicRegistration tests that identical registration order yields
// identical aliases and tags across independent registries
func TestDeterministicRegistration(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()

	for _, r := range []*Registry{r1, r2} {
		if _, err := r.Register(user{}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := r.Register(record{}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	def1, _ := r1.Get(reflect.TypeOf(user{}))
	def2, _ := r2.Get(reflect.TypeOf(user{}))
	for _, f := range def1.Fields() {
		a1, _ := def1.Alias(f.Name)
		a2, _ := def2.Alias(f.Name)
		if a1 != a2 {
			t.Errorf("Alias for %s should match across registries, got %d and %d", f.Name, a1, a2)
		}
	}

	for _, typ := range r1.Types() {
		if r1.TagOf(typ) != r2.TagOf(typ) {
			t.Errorf("Tag for %s should match across registries", typ)
		}
	}
}
