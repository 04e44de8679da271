package serializer

import "errors"

// ErrUnregisteredType is returned when no codec can be resolved for a type.
var ErrUnregisteredType = errors.New("unregistered type")

// ErrUnknownTypeTag is returned when a stream carries a type tag with no
// registered type.
var ErrUnknownTypeTag = errors.New("unknown type tag")

// ErrMalformedStream is returned when a stream ends early or carries tokens
// that do not match the schema.
var ErrMalformedStream = errors.New("malformed stream")

// ErrValueOutOfRange is returned when a value does not fit its fixed-width
// wire encoding.
var ErrValueOutOfRange = errors.New("value out of range")

// ErrNilValue is returned when a nil pointer or nil interface is encountered
// during serialization.
var ErrNilValue = errors.New("nil value")

// ErrInvalidTarget is returned when a deserialization target is not a
// non-nil pointer.
var ErrInvalidTarget = errors.New("invalid deserialization target")

// ErrFileAccess is returned when reading or writing a serialized file fails
// at the I/O level (as opposed to a decode failure).
var ErrFileAccess = errors.New("file access failed")
