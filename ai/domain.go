package ai

import (
	"github.com/oblivia-simplex/falcon/il"
)

// Value is the abstract-value lattice element a plugin analysis tracks per IL
// variable. Implementations are immutable value types; every operation returns
// a new value.
//
// Empty and Constant are constructors: they ignore the receiver's contents and
// must behave identically on the zero value of V.
type Value[V any] interface {
	// Join returns an upper bound of the two values. Join is commutative and
	// idempotent; it fails only for domain-specific inconsistency such as a
	// width mismatch, reported as ErrLatticeInconsistency.
	Join(other V) (V, error)

	// Eq reports structural equality. The external driver compares states
	// with it to detect fixpoint convergence.
	Eq(other V) bool

	// Empty returns the bottom element for the given width.
	Empty(bits uint) V

	// Constant returns the abstraction of a single concrete constant.
	Constant(c il.Constant) V
}

// Memory is an abstract store keyed and valued by abstract values. The byte
// order is fixed at construction; implementations expose a package-level
// constructor taking an il.Endian, and Domain.Endian names the byte order the
// domain's memories were built with.
type Memory[M, V any] interface {
	// Store writes value at an abstract address. Whether an imprecise address
	// gets a weak update or fails with ErrAddressTooImprecise is up to the
	// plugin, but the result must over-approximate every concrete write.
	Store(index V, value V) error

	// Load reads a value of the given width at an abstract address. On
	// success the result over-approximates every concretely reachable byte
	// pattern at that address.
	Load(index V, bits uint) (V, error)

	// Join merges the receiver with a memory from a diverging path into a
	// sound over-approximation of both.
	Join(other M) (M, error)

	// Eq reports structural equality.
	Eq(other M) bool
}

// Domain glues a Value and Memory choice into the transfer functions the
// external driver calls. A Domain holds no analysis state of its own.
type Domain[M Memory[M, V], V Value[V]] interface {
	// Eval evaluates an abstract expression tree to a single value.
	Eval(expr Expression[V]) (V, error)

	// Brc models the effect of a conditional branch on the state, for
	// example by narrowing variables along the taken edge. The state is
	// owned by the call: the input must not be used afterwards.
	Brc(target, condition V, state *State[M, V]) (*State[M, V], error)

	// Raise models the effect of an exceptional control transfer on the
	// state, with the same ownership rule as Brc.
	Raise(expr V, state *State[M, V]) (*State[M, V], error)

	// Endian returns the byte order used for all memories this domain
	// creates.
	Endian() il.Endian

	// NewState returns a state with no variables and an empty memory,
	// suitable for starting an analysis.
	NewState() *State[M, V]
}
