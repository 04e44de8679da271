package serializer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Low-level helpers for the fixed-width wire tokens. Everything on the wire
// is big-endian.

// writeUint16 writes a 2-byte token (type tags).
func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// writeUint32 writes a 4-byte token (lengths, counts, field aliases).
func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// readUint16 reads a 2-byte token.
func readUint16(r io.Reader, what string) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: data too short for %s", ErrMalformedStream, what)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// readUint32 reads a 4-byte token.
func readUint32(r io.Reader, what string) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: data too short for %s", ErrMalformedStream, what)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// readBytes reads exactly n bytes.
func readBytes(r io.Reader, n int, what string) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: data too short for %s", ErrMalformedStream, what)
	}
	return buf, nil
}

// putFixed writes the low len(buf) bytes of bits in big-endian order.
func putFixed(buf []byte, bits uint64) {
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = byte(bits)
		bits >>= 8
	}
}

// fixed reads a big-endian unsigned integer of len(buf) bytes.
func fixed(buf []byte) uint64 {
	var bits uint64
	for _, b := range buf {
		bits = bits<<8 | uint64(b)
	}
	return bits
}

// signExtend interprets the low 8*width bits as two's complement.
func signExtend(bits uint64, width int) int64 {
	shift := uint(64 - 8*width)
	return int64(bits<<shift) >> shift
}

// checkIntRange verifies n fits into width bytes of two's complement.
func checkIntRange(n int64, width int) error {
	if width == 8 {
		return nil
	}
	shift := uint(8*width - 1)
	min, max := -(int64(1) << shift), int64(1)<<shift - 1
	if n < min || n > max {
		return fmt.Errorf("%w: %d does not fit into %d bytes", ErrValueOutOfRange, n, width)
	}
	return nil
}

// checkUintRange verifies n fits into width bytes.
func checkUintRange(n uint64, width int) error {
	if width == 8 {
		return nil
	}
	max := uint64(1)<<(8*width) - 1
	if n > max {
		return fmt.Errorf("%w: %d does not fit into %d bytes", ErrValueOutOfRange, n, width)
	}
	return nil
}
