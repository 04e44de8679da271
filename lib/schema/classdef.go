package schema

import (
	"reflect"

	"github.com/ValentinKolb/birch/lib/registry"
)

// FieldAlias is the compact wire token written in place of a field name.
// Aliases are assigned per class definition, starting at 1.
type FieldAlias uint32

// Field describes one serializable field of a registered type.
type Field struct {
	Name  string       // Go field name
	Type  reflect.Type // declared field type
	Index int          // field index within the struct
}

// FieldSpec selects a field for manual registration via RegisterFields.
// A zero Alias selects automatic assignment.
type FieldSpec struct {
	Name  string
	Alias FieldAlias
}

// ClassDefinition is the registered schema of one struct type: its
// serializable fields in declaration order plus the alias registry mapping
// field names to wire tokens.
type ClassDefinition struct {
	typ     reflect.Type
	fields  []Field
	byName  map[string]int // field name -> index into fields
	aliases *registry.Registry[string, FieldAlias]
}

// newClassDefinition wires up the field index. The alias registry must
// already contain an alias for every field.
func newClassDefinition(t reflect.Type, fields []Field, aliases *registry.Registry[string, FieldAlias]) *ClassDefinition {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		byName[f.Name] = i
	}
	return &ClassDefinition{typ: t, fields: fields, byName: byName, aliases: aliases}
}

// Type returns the described struct type.
func (c *ClassDefinition) Type() reflect.Type {
	return c.typ
}

// Fields returns the serializable fields in declaration order. The returned
// slice is shared - callers must not modify it.
func (c *ClassDefinition) Fields() []Field {
	return c.fields
}

// Field returns the field with the given name.
func (c *ClassDefinition) Field(name string) (Field, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// Alias returns the wire alias of the named field.
func (c *ClassDefinition) Alias(name string) (FieldAlias, bool) {
	return c.aliases.Lookup(name)
}

// FieldByAlias resolves a wire alias back to its field.
func (c *ClassDefinition) FieldByAlias(alias FieldAlias) (Field, bool) {
	name, ok := c.aliases.KeyOf(alias)
	if !ok {
		return Field{}, false
	}
	return c.Field(name)
}

// NewInstance returns an addressable zero value of the described type, ready
// for field assignment during decoding.
func (c *ClassDefinition) NewInstance() reflect.Value {
	return reflect.New(c.typ).Elem()
}
