package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ValentinKolb/birch/lib/registry"
)

// tagKey is the struct tag inspected during reflective registration.
const tagKey = "birch"

// Registry owns all class definitions plus the shared type tag registry.
// See the package documentation for registration semantics and thread
// safety.
type Registry struct {
	classes map[reflect.Type]*ClassDefinition
	order   []reflect.Type // types in registration order
	tags    *registry.Registry[reflect.Type, TypeTag]
}

// NewRegistry creates an empty schema registry. Type tags are assigned
// sequentially starting at 1.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[reflect.Type]*ClassDefinition),
		tags:    registry.New(registry.Counter[reflect.Type, TypeTag](1)),
	}
}

// --------------------------------------------------------------------------
// Registration
// --------------------------------------------------------------------------

// Register inspects sample's struct type and registers a class definition
// for it: all exported fields in declaration order become serializable
// fields. Struct tags refine the mapping:
//
//	type User struct {
//		Name  string `birch:"alias=5"` // explicit wire alias
//		Cache string `birch:"-"`      // excluded from serialization
//	}
//
// Unexported fields are ignored. Struct types reachable through the fields
// are registered automatically if absent. Registering an already registered
// type replaces its previous definition (its type tag is kept).
//
// sample may be a value, a pointer, or a reflect.Type.
func (r *Registry) Register(sample any) (*ClassDefinition, error) {
	t, err := structTypeOf(sample)
	if err != nil {
		return nil, err
	}
	return r.register(t, nil, false)
}

// RegisterFields registers sample's struct type with an explicit field
// selection: only the named fields become serializable, with the given
// aliases (zero alias = automatic assignment). Struct tags are ignored on
// this path.
func (r *Registry) RegisterFields(sample any, specs ...FieldSpec) (*ClassDefinition, error) {
	t, err := structTypeOf(sample)
	if err != nil {
		return nil, err
	}
	return r.register(t, specs, true)
}

// Get returns the class definition for t.
func (r *Registry) Get(t reflect.Type) (*ClassDefinition, error) {
	def, ok := r.classes[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, t)
	}
	return def, nil
}

// Contains reports whether t has a class definition.
func (r *Registry) Contains(t reflect.Type) bool {
	_, ok := r.classes[t]
	return ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []reflect.Type {
	ts := make([]reflect.Type, len(r.order))
	copy(ts, r.order)
	return ts
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// register builds and stores the definition for t, then walks its field
// types to pick up nested structs. Storing t before the walk keeps cyclic
// types (a struct referencing itself) from recursing forever.
func (r *Registry) register(t reflect.Type, specs []FieldSpec, manual bool) (*ClassDefinition, error) {
	var (
		def *ClassDefinition
		err error
	)
	if manual {
		def, err = buildFromSpecs(t, specs)
	} else {
		def, err = buildFromTags(t)
	}
	if err != nil {
		return nil, err
	}

	// Assigning the tag here pins it to registration order
	r.tags.Get(t)

	if _, seen := r.classes[t]; !seen {
		r.order = append(r.order, t)
	}
	r.classes[t] = def

	for _, f := range def.fields {
		if err := r.discover(f.Type); err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, f.Name, err)
		}
	}

	return def, nil
}

// discover registers every struct type reachable through ft's structure
// (pointers, slices, arrays, map keys and values).
func (r *Registry) discover(ft reflect.Type) error {
	switch ft.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return r.discover(ft.Elem())
	case reflect.Map:
		if err := r.discover(ft.Key()); err != nil {
			return err
		}
		return r.discover(ft.Elem())
	case reflect.Struct:
		if r.Contains(ft) {
			return nil
		}
		_, err := r.register(ft, nil, false)
		return err
	default:
		return nil
	}
}

// buildFromTags assembles a definition from all exported fields, honoring
// birch struct tags. Explicit aliases are claimed first so the automatic
// counter flows around them.
func buildFromTags(t reflect.Type) (*ClassDefinition, error) {
	aliases := registry.New(registry.Counter[string, FieldAlias](1))

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}

		alias, skip, err := parseTag(sf.Tag.Get(tagKey))
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}
		if skip {
			continue
		}

		if err := checkFieldType(sf.Type); err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}

		fields = append(fields, Field{Name: sf.Name, Type: sf.Type, Index: i})

		if alias != 0 {
			if err := aliases.Put(sf.Name, alias); err != nil {
				return nil, fmt.Errorf("%w: field %s.%s: %w", ErrFieldAliasConflict, t, sf.Name, err)
			}
		}
	}

	assignAutoAliases(aliases, fields)
	return newClassDefinition(t, fields, aliases), nil
}

// buildFromSpecs assembles a definition from an explicit field selection.
func buildFromSpecs(t reflect.Type, specs []FieldSpec) (*ClassDefinition, error) {
	aliases := registry.New(registry.Counter[string, FieldAlias](1))

	fields := make([]Field, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: field %s.%s is listed twice", ErrFieldAliasConflict, t, spec.Name)
		}
		seen[spec.Name] = struct{}{}

		sf, ok := t.FieldByName(spec.Name)
		if !ok || sf.PkgPath != "" {
			return nil, fmt.Errorf("%w: %s has no exported field %q", ErrUnknownField, t, spec.Name)
		}
		if len(sf.Index) != 1 {
			return nil, fmt.Errorf("%w: %q is promoted from an embedded struct, register the embedded type instead",
				ErrUnknownField, spec.Name)
		}
		if err := checkFieldType(sf.Type); err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, spec.Name, err)
		}

		fields = append(fields, Field{Name: sf.Name, Type: sf.Type, Index: sf.Index[0]})

		if spec.Alias != 0 {
			if err := aliases.Put(sf.Name, spec.Alias); err != nil {
				return nil, fmt.Errorf("%w: field %s.%s: %w", ErrFieldAliasConflict, t, spec.Name, err)
			}
		}
	}

	assignAutoAliases(aliases, fields)
	return newClassDefinition(t, fields, aliases), nil
}

// assignAutoAliases hands out automatic aliases in declaration order to all
// fields without an explicit one.
func assignAutoAliases(aliases *registry.Registry[string, FieldAlias], fields []Field) {
	for _, f := range fields {
		aliases.Get(f.Name)
	}
}

// parseTag parses a birch struct tag. Supported directives: "-" (exclude the
// field) and "alias=N" (explicit wire alias, N > 0).
func parseTag(raw string) (FieldAlias, bool, error) {
	if raw == "" {
		return 0, false, nil
	}
	if raw == "-" {
		return 0, true, nil
	}

	var alias FieldAlias
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		value, found := strings.CutPrefix(part, "alias=")
		if !found {
			return 0, false, fmt.Errorf("%w: unknown directive %q", ErrInvalidTag, part)
		}

		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return 0, false, fmt.Errorf("%w: alias must be a positive integer, got %q", ErrInvalidTag, value)
		}
		alias = FieldAlias(n)
	}
	return alias, false, nil
}

// checkFieldType rejects field types that can never be represented on the
// wire. Interface fields are rejected because field values are encoded
// without type tags - interface elements inside containers are fine since
// container entries always carry one.
func checkFieldType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Interface:
		return fmt.Errorf("%w: interface fields cannot be decoded without a declared type", ErrUnsupportedField)
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s", ErrUnsupportedField, t.Kind())
	case reflect.Pointer:
		return checkFieldType(t.Elem())
	}
	return nil
}

// structTypeOf extracts the struct type from a registration sample, which
// may be a value, a pointer (any depth), or a reflect.Type.
func structTypeOf(sample any) (reflect.Type, error) {
	if sample == nil {
		return nil, fmt.Errorf("%w: nil sample", ErrNotStruct)
	}

	t, ok := sample.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(sample)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	return t, nil
}
