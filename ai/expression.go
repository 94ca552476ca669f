package ai

import (
	"fmt"
)

// Expression is an abstract expression tree: the shape of an IL expression
// with every scalar and constant leaf already replaced by an abstract value.
// Trees are built fresh per evaluation, never mutated, and carry no
// evaluation logic of their own; semantics live in Domain.Eval.
//
// The marker method mentions V so the type parameter is inferable from any
// Expression[V]-typed argument.
type Expression[V any] interface {
	fmt.Stringer
	expression(V)
}

func (*ValueExpr[V]) expression(V)  {}
func (*BinaryExpr[V]) expression(V) {}
func (*ExtendExpr[V]) expression(V) {}

// BinaryOp represents a binary expression operation.
type BinaryOp int

// BinaryExpr operations.
const (
	arithmeticOpBegin = BinaryOp(iota)
	ADD
	SUB
	MUL
	DIVU
	MODU
	DIVS
	MODS
	AND
	OR
	XOR
	SHL
	SHR
	arithmeticOpEnd

	compareOpBegin
	CMPEQ
	CMPNEQ
	CMPLTU
	CMPLTS
	compareOpEnd
)

var binaryOps = [...]string{
	ADD:    "add",
	SUB:    "sub",
	MUL:    "mul",
	DIVU:   "divu",
	MODU:   "modu",
	DIVS:   "divs",
	MODS:   "mods",
	AND:    "and",
	OR:     "or",
	XOR:    "xor",
	SHL:    "shl",
	SHR:    "shr",
	CMPEQ:  "cmpeq",
	CMPNEQ: "cmpneq",
	CMPLTU: "cmpltu",
	CMPLTS: "cmplts",
}

// String returns the string representation of the operation.
func (op BinaryOp) String() string {
	if op >= 0 && op < BinaryOp(len(binaryOps)) && binaryOps[op] != "" {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", op)
}

// IsArithmetic returns true if op is an arithmetic or bitwise operator.
func (op BinaryOp) IsArithmetic() bool {
	return op > arithmeticOpBegin && op < arithmeticOpEnd
}

// IsCompare returns true if op is a comparison operator.
func (op BinaryOp) IsCompare() bool {
	return op > compareOpBegin && op < compareOpEnd
}

// ExtendOp represents a width-changing expression operation.
type ExtendOp int

// ExtendExpr operations.
const (
	ZEXT = ExtendOp(iota)
	SEXT
	TRUN
)

var extendOps = [...]string{
	ZEXT: "zext",
	SEXT: "sext",
	TRUN: "trun",
}

// String returns the string representation of the operation.
func (op ExtendOp) String() string {
	if op >= 0 && op < ExtendOp(len(extendOps)) {
		return extendOps[op]
	}
	return fmt.Sprintf("ExtendOp<%d>", op)
}

// ValueExpr is a leaf node holding an abstract value.
type ValueExpr[V any] struct {
	Value V
}

// NewValueExpr returns a leaf expression wrapping an abstract value.
func NewValueExpr[V any](value V) Expression[V] {
	return &ValueExpr[V]{Value: value}
}

// String returns the string representation of the expression.
func (e *ValueExpr[V]) String() string {
	return fmt.Sprintf("%v", e.Value)
}

// BinaryExpr represents an operation on two subtrees. Each node exclusively
// owns its children.
type BinaryExpr[V any] struct {
	Op  BinaryOp
	LHS Expression[V]
	RHS Expression[V]
}

// NewBinaryExpr returns a new instance of BinaryExpr.
func NewBinaryExpr[V any](op BinaryOp, lhs, rhs Expression[V]) Expression[V] {
	return &BinaryExpr[V]{Op: op, LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *BinaryExpr[V]) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
}

// ExtendExpr represents a zero-extension, sign-extension, or truncation of
// one subtree to a target width.
type ExtendExpr[V any] struct {
	Op   ExtendOp
	Bits uint
	Src  Expression[V]
}

// NewExtendExpr returns a new instance of ExtendExpr.
func NewExtendExpr[V any](op ExtendOp, bits uint, src Expression[V]) Expression[V] {
	return &ExtendExpr[V]{Op: op, Bits: bits, Src: src}
}

// String returns the string representation of the expression.
func (e *ExtendExpr[V]) String() string {
	return fmt.Sprintf("(%s %d %s)", e.Op, e.Bits, e.Src)
}

// Per-operator constructors, mirroring the IL expression operators one-to-one.

func NewAddExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(ADD, lhs, rhs) }
func NewSubExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(SUB, lhs, rhs) }
func NewMulExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(MUL, lhs, rhs) }
func NewDivuExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(DIVU, lhs, rhs)
}
func NewModuExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(MODU, lhs, rhs)
}
func NewDivsExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(DIVS, lhs, rhs)
}
func NewModsExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(MODS, lhs, rhs)
}
func NewAndExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(AND, lhs, rhs) }
func NewOrExpr[V any](lhs, rhs Expression[V]) Expression[V]  { return NewBinaryExpr(OR, lhs, rhs) }
func NewXorExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(XOR, lhs, rhs) }
func NewShlExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(SHL, lhs, rhs) }
func NewShrExpr[V any](lhs, rhs Expression[V]) Expression[V] { return NewBinaryExpr(SHR, lhs, rhs) }
func NewCmpeqExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(CMPEQ, lhs, rhs)
}
func NewCmpneqExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(CMPNEQ, lhs, rhs)
}
func NewCmpltuExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(CMPLTU, lhs, rhs)
}
func NewCmpltsExpr[V any](lhs, rhs Expression[V]) Expression[V] {
	return NewBinaryExpr(CMPLTS, lhs, rhs)
}
func NewZextExpr[V any](bits uint, src Expression[V]) Expression[V] {
	return NewExtendExpr(ZEXT, bits, src)
}
func NewSextExpr[V any](bits uint, src Expression[V]) Expression[V] {
	return NewExtendExpr(SEXT, bits, src)
}
func NewTrunExpr[V any](bits uint, src Expression[V]) Expression[V] {
	return NewExtendExpr(TRUN, bits, src)
}
