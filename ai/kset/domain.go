package kset

import (
	"fmt"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/il"
)

// Domain evaluates abstract expressions over KSet values. It tracks no
// relational information, so branch and raise effects pass the state through
// unchanged.
type Domain struct {
	endian il.Endian
}

var _ ai.Domain[*Memory, KSet] = (*Domain)(nil)

// NewDomain returns a Domain whose memories use the given byte order.
func NewDomain(endian il.Endian) *Domain {
	return &Domain{endian: endian}
}

// Endian returns the byte order used for analysis.
func (d *Domain) Endian() il.Endian { return d.endian }

// NewState returns an empty state backed by an empty memory.
func (d *Domain) NewState() *ai.State[*Memory, KSet] {
	return ai.NewState[*Memory, KSet](NewMemory(d.endian))
}

// Eval recursively evaluates an abstract expression tree to a single KSet.
func (d *Domain) Eval(expr ai.Expression[KSet]) (KSet, error) {
	switch expr := expr.(type) {
	case *ai.ValueExpr[KSet]:
		return expr.Value, nil

	case *ai.BinaryExpr[KSet]:
		lhs, err := d.Eval(expr.LHS)
		if err != nil {
			return KSet{}, err
		}
		rhs, err := d.Eval(expr.RHS)
		if err != nil {
			return KSet{}, err
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
			return KSet{}, fmt.Errorf("%w: unknown binary op: %s", ai.ErrLatticeInconsistency, expr.Op)
		}

	case *ai.ExtendExpr[KSet]:
		src, err := d.Eval(expr.Src)
		if err != nil {
			return KSet{}, err
		}

		switch expr.Op {
		case ai.ZEXT:
			return src.Zext(expr.Bits)
		case ai.SEXT:
			return src.Sext(expr.Bits)
		case ai.TRUN:
			return src.Trun(expr.Bits)
		default:
			return KSet{}, fmt.Errorf("%w: unknown extend op: %s", ai.ErrLatticeInconsistency, expr.Op)
		}

	default:
		panic("unreachable") // Expression is sealed
	}
}

// Brc handles a conditional branch. Constant sets carry no relational
// information, so the state passes through unchanged.
func (d *Domain) Brc(target, condition KSet, state *ai.State[*Memory, KSet]) (*ai.State[*Memory, KSet], error) {
	if condition.Bits() != 1 {
		return nil, fmt.Errorf("%w: brc condition width %d", ai.ErrUnsupportedControlEffect, condition.Bits())
	}
	return state, nil
}

// Raise handles an exceptional control transfer. The domain models no trap
// side effects, so the state passes through unchanged.
func (d *Domain) Raise(expr KSet, state *ai.State[*Memory, KSet]) (*ai.State[*Memory, KSet], error) {
	return state, nil
}
