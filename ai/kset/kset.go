// Package kset implements a k-bounded constant-set abstract domain: each
// value is tracked as the set of constants it may hold, saturating to top
// once the set grows past MaxCardinality.
package kset

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/il"
)

// MaxCardinality is the largest number of constants a set may hold before it
// saturates to top.
const MaxCardinality = 4

// KSet is a k-bounded set of same-width constants. The empty set is bottom.
// KSets are immutable value types.
type KSet struct {
	bits   uint
	top    bool
	values []il.Constant // sorted by value, unique, len <= MaxCardinality
}

var _ ai.Value[KSet] = KSet{}

// Bottom returns the empty set of the given width.
func Bottom(bits uint) KSet {
	return KSet{bits: bits}
}

// Top returns the saturated set of the given width.
func Top(bits uint) KSet {
	return KSet{bits: bits, top: true}
}

// FromConstant returns the singleton set holding one constant.
func FromConstant(c il.Constant) KSet {
	return KSet{bits: c.Bits, values: []il.Constant{c}}
}

// FromConstants returns the set holding the given same-width constants,
// saturating to top past MaxCardinality. Panics if widths differ.
func FromConstants(bits uint, constants ...il.Constant) KSet {
	for _, c := range constants {
		if c.Bits != bits {
			panic(fmt.Sprintf("kset: constant width mismatch: %d != %d", c.Bits, bits))
		}
	}
	return newKSet(bits, constants)
}

// newKSet canonicalizes a value list: sorted, deduplicated, saturated to top
// past MaxCardinality.
func newKSet(bits uint, values []il.Constant) KSet {
	if len(values) == 0 {
		return Bottom(bits)
	}

	sorted := make([]il.Constant, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	out := sorted[:1]
	for _, c := range sorted[1:] {
		if c.Value != out[len(out)-1].Value {
			out = append(out, c)
		}
	}

	if len(out) > MaxCardinality {
		return Top(bits)
	}
	return KSet{bits: bits, values: out}
}

// Bits returns the width of the set's members.
func (k KSet) Bits() uint { return k.bits }

// IsTop returns true if the set is saturated.
func (k KSet) IsTop() bool { return k.top }

// IsBottom returns true if the set is empty.
func (k KSet) IsBottom() bool { return !k.top && len(k.values) == 0 }

// Constants returns a copy of the set's members. Nil for top and bottom.
func (k KSet) Constants() []il.Constant {
	if k.top || len(k.values) == 0 {
		return nil
	}
	out := make([]il.Constant, len(k.values))
	copy(out, k.values)
	return out
}

// Singleton returns the set's only member, if the set holds exactly one.
func (k KSet) Singleton() (il.Constant, bool) {
	if !k.top && len(k.values) == 1 {
		return k.values[0], true
	}
	return il.Constant{}, false
}

// Contains returns true if c may be a value of this set.
func (k KSet) Contains(c il.Constant) bool {
	if c.Bits != k.bits {
		return false
	}
	if k.top {
		return true
	}
	for _, v := range k.values {
		if v.Value == c.Value {
			return true
		}
	}
	return false
}

// String returns the string representation of the set.
func (k KSet) String() string {
	switch {
	case k.top:
		return fmt.Sprintf("⊤:%d", k.bits)
	case len(k.values) == 0:
		return fmt.Sprintf("⊥:%d", k.bits)
	default:
		a := make([]string, len(k.values))
		for i, c := range k.values {
			a[i] = c.String()
		}
		return "{" + strings.Join(a, ", ") + "}"
	}
}

// Join returns the union of both sets, saturating to top past MaxCardinality.
func (k KSet) Join(other KSet) (KSet, error) {
	if k.bits != other.bits {
		return KSet{}, fmt.Errorf("%w: join: %d != %d", ai.ErrLatticeInconsistency, k.bits, other.bits)
	}
	if k.top || other.top {
		return Top(k.bits), nil
	}
	return newKSet(k.bits, append(k.Constants(), other.values...)), nil
}

// Eq reports structural equality.
func (k KSet) Eq(other KSet) bool {
	if k.bits != other.bits || k.top != other.top || len(k.values) != len(other.values) {
		return false
	}
	for i := range k.values {
		if k.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// Empty returns the bottom element for the given width.
func (KSet) Empty(bits uint) KSet {
	return Bottom(bits)
}

// Constant returns the abstraction of one concrete constant.
func (KSet) Constant(c il.Constant) KSet {
	return FromConstant(c)
}

// lift applies a concrete binary operation pairwise over both sets. A pair
// that divides by zero traps on the concrete machine and contributes no
// value. bits is the width of the result.
func (k KSet) lift(other KSet, op string, bits uint, f func(a, b il.Constant) (il.Constant, error)) (KSet, error) {
	if k.bits != other.bits {
		return KSet{}, fmt.Errorf("%w: %s: %d != %d", ai.ErrLatticeInconsistency, op, k.bits, other.bits)
	}
	if k.IsBottom() || other.IsBottom() {
		return Bottom(bits), nil
	}
	if k.top || other.top {
		return Top(bits), nil
	}

	out := make([]il.Constant, 0, len(k.values)*len(other.values))
	for _, a := range k.values {
		for _, b := range other.values {
			c, err := f(a, b)
			if errors.Is(err, il.ErrDivideByZero) {
				continue
			} else if err != nil {
				return KSet{}, fmt.Errorf("%w: %s: %v", ai.ErrLatticeInconsistency, op, err)
			}
			out = append(out, c)
		}
	}
	return newKSet(bits, out), nil
}

// liftExtend applies a concrete width-changing operation over the set.
func (k KSet) liftExtend(op string, bits uint, f func(a il.Constant) (il.Constant, error)) (KSet, error) {
	if k.IsBottom() {
		return Bottom(bits), nil
	}
	if k.top {
		return Top(bits), nil
	}

	out := make([]il.Constant, 0, len(k.values))
	for _, a := range k.values {
		c, err := f(a)
		if err != nil {
			return KSet{}, fmt.Errorf("%w: %s: %v", ai.ErrLatticeInconsistency, op, err)
		}
		out = append(out, c)
	}
	return newKSet(bits, out), nil
}

// Add returns the pairwise sums of both sets.
func (k KSet) Add(other KSet) (KSet, error) {
	return k.lift(other, "add", k.bits, il.Constant.Add)
}

// Sub returns the pairwise differences of both sets.
func (k KSet) Sub(other KSet) (KSet, error) {
	return k.lift(other, "sub", k.bits, il.Constant.Sub)
}

// Mul returns the pairwise products of both sets.
func (k KSet) Mul(other KSet) (KSet, error) {
	return k.lift(other, "mul", k.bits, il.Constant.Mul)
}

// Divu returns the pairwise unsigned quotients of both sets.
func (k KSet) Divu(other KSet) (KSet, error) {
	return k.lift(other, "divu", k.bits, il.Constant.Divu)
}

// Divs returns the pairwise signed quotients of both sets.
func (k KSet) Divs(other KSet) (KSet, error) {
	return k.lift(other, "divs", k.bits, il.Constant.Divs)
}

// Modu returns the pairwise unsigned remainders of both sets.
func (k KSet) Modu(other KSet) (KSet, error) {
	return k.lift(other, "modu", k.bits, il.Constant.Modu)
}

// Mods returns the pairwise signed remainders of both sets.
func (k KSet) Mods(other KSet) (KSet, error) {
	return k.lift(other, "mods", k.bits, il.Constant.Mods)
}

// And returns the pairwise bitwise AND of both sets.
func (k KSet) And(other KSet) (KSet, error) {
	return k.lift(other, "and", k.bits, il.Constant.And)
}

// Or returns the pairwise bitwise OR of both sets.
func (k KSet) Or(other KSet) (KSet, error) {
	return k.lift(other, "or", k.bits, il.Constant.Or)
}

// Xor returns the pairwise bitwise XOR of both sets.
func (k KSet) Xor(other KSet) (KSet, error) {
	return k.lift(other, "xor", k.bits, il.Constant.Xor)
}

// Shl returns the pairwise left shifts of both sets.
func (k KSet) Shl(other KSet) (KSet, error) {
	return k.lift(other, "shl", k.bits, il.Constant.Shl)
}

// Shr returns the pairwise logical right shifts of both sets.
func (k KSet) Shr(other KSet) (KSet, error) {
	return k.lift(other, "shr", k.bits, il.Constant.Shr)
}

// Cmpeq returns the 1-bit set of pairwise equality comparisons.
func (k KSet) Cmpeq(other KSet) (KSet, error) {
	return k.lift(other, "cmpeq", 1, il.Constant.Cmpeq)
}

// Cmpneq returns the 1-bit set of pairwise inequality comparisons.
func (k KSet) Cmpneq(other KSet) (KSet, error) {
	return k.lift(other, "cmpneq", 1, il.Constant.Cmpneq)
}

// Cmpltu returns the 1-bit set of pairwise unsigned less-than comparisons.
func (k KSet) Cmpltu(other KSet) (KSet, error) {
	return k.lift(other, "cmpltu", 1, il.Constant.Cmpltu)
}

// Cmplts returns the 1-bit set of pairwise signed less-than comparisons.
func (k KSet) Cmplts(other KSet) (KSet, error) {
	return k.lift(other, "cmplts", 1, il.Constant.Cmplts)
}

// Zext returns the set zero-extended to the given width.
func (k KSet) Zext(bits uint) (KSet, error) {
	return k.liftExtend("zext", bits, func(a il.Constant) (il.Constant, error) { return a.Zext(bits) })
}

// Sext returns the set sign-extended to the given width.
func (k KSet) Sext(bits uint) (KSet, error) {
	return k.liftExtend("sext", bits, func(a il.Constant) (il.Constant, error) { return a.Sext(bits) })
}

// Trun returns the set truncated to the given width.
func (k KSet) Trun(bits uint) (KSet, error) {
	return k.liftExtend("trun", bits, func(a il.Constant) (il.Constant, error) { return a.Trun(bits) })
}

// ksetJSON is the serialized form of a KSet.
type ksetJSON struct {
	Bits   uint          `json:"bits"`
	Top    bool          `json:"top"`
	Values []il.Constant `json:"values"`
}

// MarshalJSON implements json.Marshaler.
func (k KSet) MarshalJSON() ([]byte, error) {
	values := k.Constants()
	if values == nil {
		values = []il.Constant{}
	}
	return json.Marshal(ksetJSON{Bits: k.bits, Top: k.top, Values: values})
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *KSet) UnmarshalJSON(data []byte) error {
	var raw ksetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Top {
		*k = Top(raw.Bits)
		return nil
	}
	*k = newKSet(raw.Bits, raw.Values)
	return nil
}
