// Package interval implements an unsigned-interval abstract domain with
// branch narrowing. Comparison results over origin-tagged operands carry the
// refinement to apply to the named variable on the taken edge.
package interval

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/il"
)

// Interval is a range [lo, hi] of unsigned values within one width. The empty
// range is bottom. Intervals are immutable value types.
//
// An interval read from an IL variable may be tagged with its origin scalar
// via WithOrigin; comparison results over a tagged left operand then carry a
// narrowing record consumed by Domain.Brc. Origin and narrowing records are
// transfer metadata: they do not participate in Eq or Join and are not
// serialized.
type Interval struct {
	bits   uint
	bottom bool
	lo, hi uint64 // masked to bits, lo <= hi

	origin *il.Scalar
	narrow *narrowing
}

// narrowing names the variable to refine, and the refined range, when the
// carrying condition holds.
type narrowing struct {
	scalar   il.Scalar
	interval Interval
}

var _ ai.Value[Interval] = Interval{}

// Bottom returns the empty interval of the given width.
func Bottom(bits uint) Interval {
	return Interval{bits: bits, bottom: true}
}

// Top returns the full range of the given width.
func Top(bits uint) Interval {
	return Interval{bits: bits, hi: mask(bits)}
}

// New returns the interval [lo, hi] of the given width. Bounds are masked to
// the width. Panics if lo exceeds hi after masking.
func New(bits uint, lo, hi uint64) Interval {
	lo, hi = lo&mask(bits), hi&mask(bits)
	if lo > hi {
		panic(fmt.Sprintf("interval: reversed bounds: [%#x, %#x]", lo, hi))
	}
	return Interval{bits: bits, lo: lo, hi: hi}
}

// FromConstant returns the singleton interval holding one constant.
func FromConstant(c il.Constant) Interval {
	return Interval{bits: c.Bits, lo: c.Value, hi: c.Value}
}

// Bits returns the width of the interval.
func (v Interval) Bits() uint { return v.bits }

// IsBottom returns true if the interval is empty.
func (v Interval) IsBottom() bool { return v.bottom }

// IsTop returns true if the interval covers the full range of its width.
func (v Interval) IsTop() bool { return !v.bottom && v.lo == 0 && v.hi == mask(v.bits) }

// Lo returns the lower bound. Zero for bottom.
func (v Interval) Lo() uint64 { return v.lo }

// Hi returns the upper bound. Zero for bottom.
func (v Interval) Hi() uint64 { return v.hi }

// Singleton returns the interval's only value, if it holds exactly one.
func (v Interval) Singleton() (il.Constant, bool) {
	if !v.bottom && v.lo == v.hi {
		return il.NewConstant(v.lo, v.bits), true
	}
	return il.Constant{}, false
}

// Contains returns true if c may be a value of this interval.
func (v Interval) Contains(c il.Constant) bool {
	return c.Bits == v.bits && !v.bottom && v.lo <= c.Value && c.Value <= v.hi
}

// WithOrigin tags the interval as having been read from the given IL
// variable. Drivers apply the tag when they substitute a variable's value
// into an expression tree, which lets comparisons over it feed Brc narrowing.
func (v Interval) WithOrigin(scalar il.Scalar) Interval {
	v.origin = &scalar
	return v
}

// Origin returns the IL variable this interval was read from, if tagged.
func (v Interval) Origin() (il.Scalar, bool) {
	if v.origin != nil {
		return *v.origin, true
	}
	return il.Scalar{}, false
}

// String returns the string representation of the interval.
func (v Interval) String() string {
	switch {
	case v.bottom:
		return fmt.Sprintf("⊥:%d", v.bits)
	case v.IsTop():
		return fmt.Sprintf("⊤:%d", v.bits)
	default:
		return fmt.Sprintf("[0x%x, 0x%x]:%d", v.lo, v.hi, v.bits)
	}
}

// Join returns the smallest interval covering both. Transfer metadata does
// not survive a join.
func (v Interval) Join(other Interval) (Interval, error) {
	if v.bits != other.bits {
		return Interval{}, fmt.Errorf("%w: join: %d != %d", ai.ErrLatticeInconsistency, v.bits, other.bits)
	}
	if v.bottom {
		return other.stripped(), nil
	}
	if other.bottom {
		return v.stripped(), nil
	}
	return Interval{bits: v.bits, lo: min(v.lo, other.lo), hi: max(v.hi, other.hi)}, nil
}

// Eq reports structural equality, ignoring transfer metadata.
func (v Interval) Eq(other Interval) bool {
	if v.bits != other.bits || v.bottom != other.bottom {
		return false
	}
	return v.bottom || (v.lo == other.lo && v.hi == other.hi)
}

// Empty returns the bottom element for the given width.
func (Interval) Empty(bits uint) Interval {
	return Bottom(bits)
}

// Constant returns the abstraction of one concrete constant.
func (Interval) Constant(c il.Constant) Interval {
	return FromConstant(c)
}

// stripped returns the interval without transfer metadata.
func (v Interval) stripped() Interval {
	v.origin, v.narrow = nil, nil
	return v
}

// meet returns the intersection of both intervals.
func (v Interval) meet(other Interval) Interval {
	if v.bottom || other.bottom || v.hi < other.lo || other.hi < v.lo {
		return Bottom(v.bits)
	}
	return Interval{bits: v.bits, lo: max(v.lo, other.lo), hi: min(v.hi, other.hi)}
}

// check verifies other has the same width as v.
func (v Interval) check(other Interval, op string) error {
	if v.bits != other.bits {
		return fmt.Errorf("%w: %s: %d != %d", ai.ErrLatticeInconsistency, op, v.bits, other.bits)
	}
	return nil
}

// exact applies a concrete operation when both intervals are singletons. A
// trapping pair (zero divisor) yields bottom.
func (v Interval) exact(other Interval, f func(a, b il.Constant) (il.Constant, error)) (Interval, bool, error) {
	a, aok := v.Singleton()
	b, bok := other.Singleton()
	if !aok || !bok {
		return Interval{}, false, nil
	}
	c, err := f(a, b)
	if errors.Is(err, il.ErrDivideByZero) {
		return Bottom(v.bits), true, nil
	} else if err != nil {
		return Interval{}, false, fmt.Errorf("%w: %v", ai.ErrLatticeInconsistency, err)
	}
	return FromConstant(c), true, nil
}

// Add returns the sum of both intervals, widening to top on overflow.
func (v Interval) Add(other Interval) (Interval, error) {
	if err := v.check(other, "add"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if other.hi > mask(v.bits)-v.hi { // upper bound wraps
		return Top(v.bits), nil
	}
	return New(v.bits, v.lo+other.lo, v.hi+other.hi), nil
}

// Sub returns the difference of both intervals, widening to top on wraparound.
func (v Interval) Sub(other Interval) (Interval, error) {
	if err := v.check(other, "sub"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if v.lo < other.hi { // lower bound wraps
		return Top(v.bits), nil
	}
	return New(v.bits, v.lo-other.hi, v.hi-other.lo), nil
}

// Mul returns the product of both intervals, widening to top on overflow.
func (v Interval) Mul(other Interval) (Interval, error) {
	if err := v.check(other, "mul"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if v.hi != 0 && other.hi > mask(v.bits)/v.hi {
		return Top(v.bits), nil
	}
	return New(v.bits, v.lo*other.lo, v.hi*other.hi), nil
}

// Divu returns the unsigned quotient. A divisor that can only be zero always
// traps and yields bottom; a possibly-zero divisor has its zero excluded.
func (v Interval) Divu(other Interval) (Interval, error) {
	if err := v.check(other, "divu"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom || other.hi == 0 {
		return Bottom(v.bits), nil
	}
	divLo := max(other.lo, 1)
	return New(v.bits, v.lo/other.hi, v.hi/divLo), nil
}

// Modu returns the unsigned remainder bound.
func (v Interval) Modu(other Interval) (Interval, error) {
	if err := v.check(other, "modu"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom || other.hi == 0 {
		return Bottom(v.bits), nil
	}
	return New(v.bits, 0, min(v.hi, other.hi-1)), nil
}

// Divs returns the signed quotient: exact on singletons, top otherwise.
func (v Interval) Divs(other Interval) (Interval, error) {
	if err := v.check(other, "divs"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if r, ok, err := v.exact(other, il.Constant.Divs); ok || err != nil {
		return r, err
	}
	return Top(v.bits), nil
}

// Mods returns the signed remainder: exact on singletons, top otherwise.
func (v Interval) Mods(other Interval) (Interval, error) {
	if err := v.check(other, "mods"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if r, ok, err := v.exact(other, il.Constant.Mods); ok || err != nil {
		return r, err
	}
	return Top(v.bits), nil
}

// And returns the bitwise AND bound: the result never exceeds either operand.
func (v Interval) And(other Interval) (Interval, error) {
	if err := v.check(other, "and"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if r, ok, err := v.exact(other, il.Constant.And); ok || err != nil {
		return r, err
	}
	return New(v.bits, 0, min(v.hi, other.hi)), nil
}

// Or returns the bitwise OR bound: the result is at least either operand.
func (v Interval) Or(other Interval) (Interval, error) {
	if err := v.check(other, "or"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if r, ok, err := v.exact(other, il.Constant.Or); ok || err != nil {
		return r, err
	}
	return New(v.bits, max(v.lo, other.lo), mask(v.bits)), nil
}

// Xor returns the bitwise XOR: exact on singletons, top otherwise.
func (v Interval) Xor(other Interval) (Interval, error) {
	if err := v.check(other, "xor"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	if r, ok, err := v.exact(other, il.Constant.Xor); ok || err != nil {
		return r, err
	}
	return Top(v.bits), nil
}

// Shl returns the left shift, widening to top on overflow or a ranged shift
// count.
func (v Interval) Shl(other Interval) (Interval, error) {
	if err := v.check(other, "shl"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	s, ok := other.Singleton()
	if !ok {
		return Top(v.bits), nil
	}
	if s.Value >= uint64(v.bits) {
		return New(v.bits, 0, 0), nil
	}
	if v.hi > mask(v.bits)>>s.Value {
		return Top(v.bits), nil
	}
	return New(v.bits, v.lo<<s.Value, v.hi<<s.Value), nil
}

// Shr returns the logical right shift.
func (v Interval) Shr(other Interval) (Interval, error) {
	if err := v.check(other, "shr"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(v.bits), nil
	}
	s, ok := other.Singleton()
	if !ok {
		return New(v.bits, 0, v.hi), nil
	}
	if s.Value >= uint64(v.bits) {
		return New(v.bits, 0, 0), nil
	}
	return New(v.bits, v.lo>>s.Value, v.hi>>s.Value), nil
}

// 1-bit comparison results.
func boolFalse() Interval   { return New(1, 0, 0) }
func boolTrue() Interval    { return New(1, 1, 1) }
func boolUnknown() Interval { return New(1, 0, 1) }

// mayBeTrue returns true if a 1-bit condition admits a nonzero value.
func (v Interval) mayBeTrue() bool {
	return v.bits == 1 && !v.bottom && v.hi != 0
}

// withNarrowing attaches a narrowing record for v's origin variable, if v is
// tagged and the refinement actually refines.
func (cond Interval) withNarrowing(v, narrowed Interval) Interval {
	if v.origin == nil || narrowed.Eq(v.stripped()) {
		return cond
	}
	cond.narrow = &narrowing{scalar: *v.origin, interval: narrowed.stripped()}
	return cond
}

// Cmpeq returns the 1-bit equality comparison. When the left operand is
// origin-tagged, a possibly-true result carries the meet with the right
// operand as its taken-edge narrowing.
func (v Interval) Cmpeq(other Interval) (Interval, error) {
	if err := v.check(other, "cmpeq"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(1), nil
	}

	var cond Interval
	switch {
	case v.hi < other.lo || other.hi < v.lo:
		return boolFalse(), nil
	case v.lo == v.hi && other.lo == other.hi && v.lo == other.lo:
		cond = boolTrue()
	default:
		cond = boolUnknown()
	}
	return cond.withNarrowing(v, v.meet(other)), nil
}

// Cmpneq returns the 1-bit inequality comparison. Narrowing applies only when
// the right operand is a singleton at one of the left operand's endpoints.
func (v Interval) Cmpneq(other Interval) (Interval, error) {
	if err := v.check(other, "cmpneq"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(1), nil
	}

	var cond Interval
	switch {
	case v.hi < other.lo || other.hi < v.lo:
		return boolTrue(), nil
	case v.lo == v.hi && other.lo == other.hi && v.lo == other.lo:
		return boolFalse(), nil
	default:
		cond = boolUnknown()
	}

	if c, ok := other.Singleton(); ok && v.lo < v.hi {
		switch c.Value {
		case v.lo:
			return cond.withNarrowing(v, New(v.bits, v.lo+1, v.hi)), nil
		case v.hi:
			return cond.withNarrowing(v, New(v.bits, v.lo, v.hi-1)), nil
		}
	}
	return cond, nil
}

// Cmpltu returns the 1-bit unsigned less-than comparison. A possibly-true
// result over a tagged left operand narrows its upper bound.
func (v Interval) Cmpltu(other Interval) (Interval, error) {
	if err := v.check(other, "cmpltu"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(1), nil
	}

	var cond Interval
	switch {
	case v.hi < other.lo:
		cond = boolTrue()
	case v.lo >= other.hi:
		return boolFalse(), nil
	default:
		cond = boolUnknown()
	}
	return cond.withNarrowing(v, v.meet(New(v.bits, 0, other.hi-1))), nil
}

// Cmplts returns the 1-bit signed less-than comparison: exact on singletons,
// unknown otherwise.
func (v Interval) Cmplts(other Interval) (Interval, error) {
	if err := v.check(other, "cmplts"); err != nil {
		return Interval{}, err
	}
	if v.bottom || other.bottom {
		return Bottom(1), nil
	}
	a, aok := v.Singleton()
	b, bok := other.Singleton()
	if aok && bok {
		c, err := a.Cmplts(b)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %v", ai.ErrLatticeInconsistency, err)
		}
		return FromConstant(c), nil
	}
	return boolUnknown(), nil
}

// Zext returns the interval zero-extended to the given width.
func (v Interval) Zext(bits uint) (Interval, error) {
	if bits < v.bits || bits > il.MaxBits {
		return Interval{}, fmt.Errorf("%w: zext: %d -> %d", ai.ErrLatticeInconsistency, v.bits, bits)
	}
	if v.bottom {
		return Bottom(bits), nil
	}
	return New(bits, v.lo, v.hi), nil
}

// Sext returns the interval sign-extended to the given width. A range that
// straddles the sign bit widens to top.
func (v Interval) Sext(bits uint) (Interval, error) {
	if bits < v.bits || bits > il.MaxBits {
		return Interval{}, fmt.Errorf("%w: sext: %d -> %d", ai.ErrLatticeInconsistency, v.bits, bits)
	}
	if v.bottom {
		return Bottom(bits), nil
	}
	if bits == v.bits {
		return v.stripped(), nil
	}

	signBit := uint64(1) << (v.bits - 1)
	switch {
	case v.hi < signBit: // wholly non-negative
		return New(bits, v.lo, v.hi), nil
	case v.lo >= signBit: // wholly negative; sign extension preserves order
		ext := mask(bits) &^ mask(v.bits)
		return New(bits, v.lo|ext, v.hi|ext), nil
	default:
		return Top(bits), nil
	}
}

// Trun returns the interval truncated to the given width. A range that does
// not fit the narrower width widens to top.
func (v Interval) Trun(bits uint) (Interval, error) {
	if bits > v.bits || bits == 0 {
		return Interval{}, fmt.Errorf("%w: trun: %d -> %d", ai.ErrLatticeInconsistency, v.bits, bits)
	}
	if v.bottom {
		return Bottom(bits), nil
	}
	if v.hi <= mask(bits) {
		return New(bits, v.lo, v.hi), nil
	}
	return Top(bits), nil
}

// intervalJSON is the serialized form of an Interval.
type intervalJSON struct {
	Bits   uint   `json:"bits"`
	Bottom bool   `json:"bottom"`
	Lo     uint64 `json:"lo"`
	Hi     uint64 `json:"hi"`
}

// MarshalJSON implements json.Marshaler.
func (v Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{Bits: v.bits, Bottom: v.bottom, Lo: v.lo, Hi: v.hi})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Bottom {
		*v = Bottom(raw.Bits)
		return nil
	}
	lo, hi := raw.Lo&mask(raw.Bits), raw.Hi&mask(raw.Bits)
	if lo > hi {
		return fmt.Errorf("%w: reversed bounds: [%#x, %#x]", ai.ErrLatticeInconsistency, lo, hi)
	}
	*v = Interval{bits: raw.Bits, lo: lo, hi: hi}
	return nil
}

// mask returns the bitmask covering the given width.
func mask(bits uint) uint64 {
	if bits >= il.MaxBits {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}
