package schema

import "errors"

// ErrNotStruct is returned when a registration sample is not a struct type.
var ErrNotStruct = errors.New("not a struct type")

// ErrSchemaNotFound is returned when no class definition exists for a type.
var ErrSchemaNotFound = errors.New("schema not found")

// ErrFieldAliasConflict is returned when two fields of one class claim the
// same wire alias.
var ErrFieldAliasConflict = errors.New("field alias conflict")

// ErrTypeTagConflict is returned when a type tag is already bound to a
// different type.
var ErrTypeTagConflict = errors.New("type tag conflict")

// ErrUnsupportedField is returned for field types that cannot be represented
// on the wire.
var ErrUnsupportedField = errors.New("unsupported field type")

// ErrUnknownField is returned when a FieldSpec names a field the struct
// does not have.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidTag is returned when a birch struct tag cannot be parsed.
var ErrInvalidTag = errors.New("invalid birch tag")
