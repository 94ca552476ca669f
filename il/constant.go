package il

import (
	"fmt"
)

// Constant represents a fixed-width IL immediate. The value is always masked
// to its width so the upper bits of Value are zero.
type Constant struct {
	Value uint64 `json:"value"`
	Bits  uint   `json:"bits"`
}

// NewConstant returns a new Constant with value masked to the given width.
// Widths range over 1..=64.
func NewConstant(value uint64, bits uint) Constant {
	return Constant{Value: value & mask(bits), Bits: bits}
}

// NewBoolConstant returns a 1-bit Constant from a boolean.
func NewBoolConstant(value bool) Constant {
	if value {
		return Constant{Value: 1, Bits: 1}
	}
	return Constant{Value: 0, Bits: 1}
}

// String returns the string representation of the constant.
func (c Constant) String() string {
	return fmt.Sprintf("0x%x:%d", c.Value, c.Bits)
}

// IsZero returns true if all bits in the value are zero.
func (c Constant) IsZero() bool { return c.Value == 0 }

// IsOne returns true if the value is one.
func (c Constant) IsOne() bool { return c.Value == 1 }

// IsAllOnes returns true if all bits in the value are one.
func (c Constant) IsAllOnes() bool { return c.Value == mask(c.Bits) }

// signed returns the value sign-extended to 64 bits.
func (c Constant) signed() int64 {
	if c.Bits < MaxBits && c.Value&(uint64(1)<<(c.Bits-1)) != 0 {
		return int64(c.Value | ^mask(c.Bits))
	}
	return int64(c.Value)
}

// Add returns the sum of c and other.
func (c Constant) Add(other Constant) (Constant, error) {
	if err := c.check(other, "add"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value+other.Value, c.Bits), nil
}

// Sub returns the difference of c and other.
func (c Constant) Sub(other Constant) (Constant, error) {
	if err := c.check(other, "sub"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value-other.Value, c.Bits), nil
}

// Mul returns the product of c and other.
func (c Constant) Mul(other Constant) (Constant, error) {
	if err := c.check(other, "mul"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value*other.Value, c.Bits), nil
}

// Divu returns the quotient of unsigned division of c by other.
func (c Constant) Divu(other Constant) (Constant, error) {
	if err := c.check(other, "divu"); err != nil {
		return Constant{}, err
	} else if other.IsZero() {
		return Constant{}, fmt.Errorf("%w: divu", ErrDivideByZero)
	}
	return NewConstant(c.Value/other.Value, c.Bits), nil
}

// Divs returns the quotient of signed division of c by other.
func (c Constant) Divs(other Constant) (Constant, error) {
	if err := c.check(other, "divs"); err != nil {
		return Constant{}, err
	} else if other.IsZero() {
		return Constant{}, fmt.Errorf("%w: divs", ErrDivideByZero)
	}
	n, d := c.signed(), other.signed()
	if d == -1 { // MinInt64 / -1 traps in Go; negation wraps instead
		return NewConstant(uint64(-n), c.Bits), nil
	}
	return NewConstant(uint64(n/d), c.Bits), nil
}

// Modu returns the remainder of unsigned division of c by other.
func (c Constant) Modu(other Constant) (Constant, error) {
	if err := c.check(other, "modu"); err != nil {
		return Constant{}, err
	} else if other.IsZero() {
		return Constant{}, fmt.Errorf("%w: modu", ErrDivideByZero)
	}
	return NewConstant(c.Value%other.Value, c.Bits), nil
}

// Mods returns the remainder of signed division of c by other.
func (c Constant) Mods(other Constant) (Constant, error) {
	if err := c.check(other, "mods"); err != nil {
		return Constant{}, err
	} else if other.IsZero() {
		return Constant{}, fmt.Errorf("%w: mods", ErrDivideByZero)
	}
	n, d := c.signed(), other.signed()
	if d == -1 {
		return NewConstant(0, c.Bits), nil
	}
	return NewConstant(uint64(n%d), c.Bits), nil
}

// And returns the bitwise AND of c and other.
func (c Constant) And(other Constant) (Constant, error) {
	if err := c.check(other, "and"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value&other.Value, c.Bits), nil
}

// Or returns the bitwise OR of c and other.
func (c Constant) Or(other Constant) (Constant, error) {
	if err := c.check(other, "or"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value|other.Value, c.Bits), nil
}

// Xor returns the bitwise XOR of c and other.
func (c Constant) Xor(other Constant) (Constant, error) {
	if err := c.check(other, "xor"); err != nil {
		return Constant{}, err
	}
	return NewConstant(c.Value^other.Value, c.Bits), nil
}

// Shl returns c shifted left by other bits. Shifting by the width or more
// yields zero.
func (c Constant) Shl(other Constant) (Constant, error) {
	if err := c.check(other, "shl"); err != nil {
		return Constant{}, err
	} else if other.Value >= uint64(c.Bits) {
		return NewConstant(0, c.Bits), nil
	}
	return NewConstant(c.Value<<other.Value, c.Bits), nil
}

// Shr returns c logically shifted right by other bits. Shifting by the width
// or more yields zero.
func (c Constant) Shr(other Constant) (Constant, error) {
	if err := c.check(other, "shr"); err != nil {
		return Constant{}, err
	} else if other.Value >= uint64(c.Bits) {
		return NewConstant(0, c.Bits), nil
	}
	return NewConstant(c.Value>>other.Value, c.Bits), nil
}

// Cmpeq returns a 1-bit constant comparing c and other for equality.
func (c Constant) Cmpeq(other Constant) (Constant, error) {
	if err := c.check(other, "cmpeq"); err != nil {
		return Constant{}, err
	}
	return NewBoolConstant(c.Value == other.Value), nil
}

// Cmpneq returns a 1-bit constant comparing c and other for inequality.
func (c Constant) Cmpneq(other Constant) (Constant, error) {
	if err := c.check(other, "cmpneq"); err != nil {
		return Constant{}, err
	}
	return NewBoolConstant(c.Value != other.Value), nil
}

// Cmpltu returns a 1-bit constant for the unsigned less-than comparison of c
// to other.
func (c Constant) Cmpltu(other Constant) (Constant, error) {
	if err := c.check(other, "cmpltu"); err != nil {
		return Constant{}, err
	}
	return NewBoolConstant(c.Value < other.Value), nil
}

// Cmplts returns a 1-bit constant for the signed less-than comparison of c to
// other.
func (c Constant) Cmplts(other Constant) (Constant, error) {
	if err := c.check(other, "cmplts"); err != nil {
		return Constant{}, err
	}
	return NewBoolConstant(c.signed() < other.signed()), nil
}

// Zext returns c zero-extended to the given width.
func (c Constant) Zext(bits uint) (Constant, error) {
	if bits < c.Bits || bits > MaxBits {
		return Constant{}, fmt.Errorf("%w: zext: %d -> %d", ErrInvalidWidth, c.Bits, bits)
	}
	return NewConstant(c.Value, bits), nil
}

// Sext returns c sign-extended to the given width.
func (c Constant) Sext(bits uint) (Constant, error) {
	if bits < c.Bits || bits > MaxBits {
		return Constant{}, fmt.Errorf("%w: sext: %d -> %d", ErrInvalidWidth, c.Bits, bits)
	}
	return NewConstant(uint64(c.signed()), bits), nil
}

// Trun returns c truncated to the given width.
func (c Constant) Trun(bits uint) (Constant, error) {
	if bits > c.Bits || bits == 0 {
		return Constant{}, fmt.Errorf("%w: trun: %d -> %d", ErrInvalidWidth, c.Bits, bits)
	}
	return NewConstant(c.Value, bits), nil
}

// check verifies other has the same width as c.
func (c Constant) check(other Constant, op string) error {
	if c.Bits != other.Bits {
		return fmt.Errorf("%w: %s: %d != %d", ErrWidthMismatch, op, c.Bits, other.Bits)
	}
	return nil
}

// mask returns the bitmask covering the given width.
func mask(bits uint) uint64 {
	if bits >= MaxBits {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}
