// Package ai is the abstract-domain framework of the analyzer. It defines the
// capability contracts a plugin analysis implements (Value, Memory, Domain),
// the abstract expression tree those domains evaluate, and the per-program-point
// State that an external fixpoint driver threads through transfer functions and
// joins at control-flow merges.
//
// The package supplies per-step semantics only. Worklist iteration, widening
// schedules, and convergence detection belong to the driver.
package ai

import (
	"errors"
)

var (
	// ErrLatticeInconsistency reports operands that violate a lattice
	// precondition, such as joining values of different widths.
	ErrLatticeInconsistency = errors.New("ai: lattice inconsistency")

	// ErrAddressTooImprecise reports a memory access whose abstract address
	// cannot be soundly resolved under the plugin's precision strategy.
	ErrAddressTooImprecise = errors.New("ai: abstract address too imprecise")

	// ErrUnsupportedControlEffect reports a branch or raise condition the
	// domain cannot interpret. It is recoverable: only the affected program
	// point fails, not the whole analysis.
	ErrUnsupportedControlEffect = errors.New("ai: unsupported control effect")
)
