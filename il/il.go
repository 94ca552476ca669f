// Package il holds the boundary types of the intermediate language that the
// abstract-interpretation core consumes: variable identifiers, immediate
// constants, and the byte-order selector. The instruction set and control-flow
// graph of the IL live outside this module.
package il

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxBits is the widest supported operand.
const MaxBits = 64

var (
	ErrWidthMismatch = errors.New("il: constant width mismatch")
	ErrInvalidWidth  = errors.New("il: invalid constant width")
	ErrDivideByZero  = errors.New("il: divide by zero")
)

// Endian selects the byte order used to lay out multi-byte values in an
// abstract address space.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// String returns the string representation of the byte order.
func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("Endian<%d>", int(e))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Endian) MarshalText() ([]byte, error) {
	switch e {
	case LittleEndian, BigEndian:
		return []byte(e.String()), nil
	default:
		return nil, fmt.Errorf("il: cannot marshal unknown byte order: %d", int(e))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Endian) UnmarshalText(data []byte) error {
	switch string(data) {
	case "little":
		*e = LittleEndian
	case "big":
		*e = BigEndian
	default:
		return fmt.Errorf("il: unknown byte order: %q", data)
	}
	return nil
}

// Scalar identifies an IL variable. Scalars are value types and are used
// directly as map keys.
type Scalar struct {
	Name string
	Bits uint
}

// NewScalar returns a new Scalar.
func NewScalar(name string, bits uint) Scalar {
	return Scalar{Name: name, Bits: bits}
}

// String returns the string representation of the scalar.
func (s Scalar) String() string {
	return fmt.Sprintf("%s:%d", s.Name, s.Bits)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scalar) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scalar) UnmarshalText(data []byte) error {
	i := strings.LastIndexByte(string(data), ':')
	if i < 0 {
		return fmt.Errorf("il: invalid scalar: %q", data)
	}
	bits, err := strconv.ParseUint(string(data[i+1:]), 10, 32)
	if err != nil {
		return fmt.Errorf("il: invalid scalar width: %q", data)
	}
	s.Name, s.Bits = string(data[:i]), uint(bits)
	return nil
}
