package interval

import (
	"fmt"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/il"
)

// Domain evaluates abstract expressions over Interval values. Conditional
// branches consume the narrowing records produced by comparisons over
// origin-tagged operands: taking the true edge of cmpeq(x, 5) refines x to 5.
type Domain struct {
	endian il.Endian
}

var _ ai.Domain[*Memory, Interval] = (*Domain)(nil)

// NewDomain returns a Domain whose memories use the given byte order.
func NewDomain(endian il.Endian) *Domain {
	return &Domain{endian: endian}
}

// Endian returns the byte order used for analysis.
func (d *Domain) Endian() il.Endian { return d.endian }

// NewState returns an empty state backed by an empty memory.
func (d *Domain) NewState() *ai.State[*Memory, Interval] {
	return ai.NewState[*Memory, Interval](NewMemory(d.endian))
}

// Eval recursively evaluates an abstract expression tree to a single
// Interval.
func (d *Domain) Eval(expr ai.Expression[Interval]) (Interval, error) {
	switch expr := expr.(type) {
	case *ai.ValueExpr[Interval]:
		return expr.Value, nil

	case *ai.BinaryExpr[Interval]:
		lhs, err := d.Eval(expr.LHS)
		if err != nil {
			return Interval{}, err
		}
		rhs, err := d.Eval(expr.RHS)
		if err != nil {
			return Interval{}, err
		}

		switch expr.Op {
		case ai.ADD:
			return lhs.Add(rhs)
		case ai.SUB:
			return lhs.Sub(rhs)
		case ai.MUL:
			return lhs.Mul(rhs)
		case ai.DIVU:
			return lhs.Divu(rhs)
		case ai.MODU:
			return lhs.Modu(rhs)
		case ai.DIVS:
			return lhs.Divs(rhs)
		case ai.MODS:
			return lhs.Mods(rhs)
		case ai.AND:
			return lhs.And(rhs)
		case ai.OR:
			return lhs.Or(rhs)
		case ai.XOR:
			return lhs.Xor(rhs)
		case ai.SHL:
			return lhs.Shl(rhs)
		case ai.SHR:
			return lhs.Shr(rhs)
		case ai.CMPEQ:
			return lhs.Cmpeq(rhs)
		case ai.CMPNEQ:
			return lhs.Cmpneq(rhs)
		case ai.CMPLTU:
			return lhs.Cmpltu(rhs)
		case ai.CMPLTS:
			return lhs.Cmplts(rhs)
		default:
			return Interval{}, fmt.Errorf("%w: unknown binary op: %s", ai.ErrLatticeInconsistency, expr.Op)
		}

	case *ai.ExtendExpr[Interval]:
		src, err := d.Eval(expr.Src)
		if err != nil {
			return Interval{}, err
		}

		switch expr.Op {
		case ai.ZEXT:
			return src.Zext(expr.Bits)
		case ai.SEXT:
			return src.Sext(expr.Bits)
		case ai.TRUN:
			return src.Trun(expr.Bits)
		default:
			return Interval{}, fmt.Errorf("%w: unknown extend op: %s", ai.ErrLatticeInconsistency, expr.Op)
		}

	default:
		panic("unreachable") // Expression is sealed
	}
}

// Brc handles a conditional branch along its true edge. A condition carrying
// a narrowing record meets the recorded variable with the observed range in
// the outgoing state. The record names its binding by scalar, so the
// condition must have been evaluated against the state passed here; a
// rebinding between evaluation and branch is only caught when it changes the
// variable's width.
func (d *Domain) Brc(target, condition Interval, state *ai.State[*Memory, Interval]) (*ai.State[*Memory, Interval], error) {
	if condition.Bits() != 1 {
		return nil, fmt.Errorf("%w: brc condition width %d", ai.ErrUnsupportedControlEffect, condition.Bits())
	}
	if condition.narrow == nil || !condition.mayBeTrue() {
		return state, nil
	}

	n := condition.narrow
	current, ok := state.Variable(n.scalar)
	if !ok || current.Bits() != n.interval.Bits() {
		return state, nil
	}
	state.SetVariable(n.scalar, current.meet(n.interval))
	return state, nil
}

// Raise handles an exceptional control transfer. The domain models no trap
// side effects, so the state passes through unchanged.
func (d *Domain) Raise(expr Interval, state *ai.State[*Memory, Interval]) (*ai.State[*Memory, Interval], error) {
	return state, nil
}
