package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/oblivia-simplex/falcon/il"
)

// State is the complete machine abstraction at one program point: the values
// of all known IL variables plus one abstract memory. A variable absent from
// the mapping is unconstrained at this point, not top.
//
// States move by ownership along straight-line analysis steps and meet only
// in Join, which is pure; an external driver that parallelizes across CFG
// regions must keep one state per worker and merge through Join alone.
type State[M Memory[M, V], V Value[V]] struct {
	variables map[il.Scalar]V
	memory    M
}

// NewState returns a State with no variables and the given memory.
func NewState[M Memory[M, V], V Value[V]](memory M) *State[M, V] {
	return &State[M, V]{
		variables: make(map[il.Scalar]V),
		memory:    memory,
	}
}

// Variable returns the abstract value bound to the given scalar.
func (s *State[M, V]) Variable(key il.Scalar) (V, bool) {
	v, ok := s.variables[key]
	return v, ok
}

// SetVariable binds the scalar to an abstract value.
func (s *State[M, V]) SetVariable(key il.Scalar, value V) {
	s.variables[key] = value
}

// RemoveVariable removes a binding from the state.
func (s *State[M, V]) RemoveVariable(key il.Scalar) {
	delete(s.variables, key)
}

// Variables returns the variable bindings of this state. The returned map is
// the state's own; callers must not modify it.
func (s *State[M, V]) Variables() map[il.Scalar]V {
	return s.variables
}

// Memory returns the memory model tied to this state.
func (s *State[M, V]) Memory() M {
	return s.memory
}

// Join merges other into s and returns s. Variables present in both states
// are joined pairwise; variables present only in other are copied over.
//
// A variable present only in s keeps its value untouched. That makes Join
// left-biased: it is sound only when both states bind the same variable set,
// which holds when every path defines every variable before a merge. A
// variable defined on a single path keeps its single-path value after the
// merge. Callers that cannot guarantee matching variable sets must reconcile
// them before joining.
//
// On error s is partially merged and must be discarded.
func (s *State[M, V]) Join(other *State[M, V]) (*State[M, V], error) {
	for key, theirs := range other.variables {
		if ours, ok := s.variables[key]; ok {
			joined, err := ours.Join(theirs)
			if err != nil {
				return nil, fmt.Errorf("join variable %s: %w", key, err)
			}
			s.variables[key] = joined
		} else {
			s.variables[key] = theirs
		}
	}

	memory, err := s.memory.Join(other.memory)
	if err != nil {
		return nil, fmt.Errorf("join memory: %w", err)
	}
	s.memory = memory
	return s, nil
}

// Eq reports structural equality of two states.
func (s *State[M, V]) Eq(other *State[M, V]) bool {
	if len(s.variables) != len(other.variables) {
		return false
	}
	for key, ours := range s.variables {
		theirs, ok := other.variables[key]
		if !ok || !ours.Eq(theirs) {
			return false
		}
	}
	return s.memory.Eq(other.memory)
}

// stateVariable is the serialized form of one variable binding.
type stateVariable[V any] struct {
	Scalar il.Scalar `json:"scalar"`
	Value  V         `json:"value"`
}

// sortedVariables returns the bindings sorted by scalar for deterministic
// output.
func (s *State[M, V]) sortedVariables() []stateVariable[V] {
	a := make([]stateVariable[V], 0, len(s.variables))
	for key, value := range s.variables {
		a = append(a, stateVariable[V]{Scalar: key, Value: value})
	}
	sort.Slice(a, func(i, j int) bool {
		if a[i].Scalar.Name != a[j].Scalar.Name {
			return a[i].Scalar.Name < a[j].Scalar.Name
		}
		return a[i].Scalar.Bits < a[j].Scalar.Bits
	})
	return a
}

// MarshalJSON implements json.Marshaler.
func (s *State[M, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Variables []stateVariable[V] `json:"variables"`
		Memory    M                  `json:"memory"`
	}{
		Variables: s.sortedVariables(),
		Memory:    s.memory,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State[M, V]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Variables []stateVariable[V] `json:"variables"`
		Memory    json.RawMessage    `json:"memory"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Memory == nil {
		return errors.New("ai: state missing memory")
	}

	s.variables = make(map[il.Scalar]V, len(raw.Variables))
	for _, v := range raw.Variables {
		s.variables[v.Scalar] = v.Value
	}
	return json.Unmarshal(raw.Memory, &s.memory)
}

var (
	dumpHeaderColor = color.New(color.Bold)
	dumpScalarColor = color.New(color.FgCyan)
)

// Dump returns the contents of the state as a string.
func (s *State[M, V]) Dump() string {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, dumpHeaderColor.Sprint("ABSTRACT STATE"))
	fmt.Fprintln(&buf, dumpHeaderColor.Sprint("=============="))
	for _, v := range s.sortedVariables() {
		fmt.Fprintf(&buf, "%s = %v\n", dumpScalarColor.Sprint(v.Scalar.String()), v.Value)
	}
	fmt.Fprintln(&buf, "")

	fmt.Fprintln(&buf, dumpHeaderColor.Sprint("== MEMORY"))
	fmt.Fprintln(&buf, strings.TrimRight(spew.Sdump(s.memory), "\n"))
	return buf.String()
}
