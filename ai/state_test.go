package ai_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/ai/kset"
	"github.com/oblivia-simplex/falcon/il"
)

func TestState_Variable(t *testing.T) {
	state := kset.NewDomain(il.LittleEndian).NewState()
	x := il.NewScalar("x", 8)

	if _, ok := state.Variable(x); ok {
		t.Fatal("expected unbound variable")
	}

	state.SetVariable(x, kset.FromConstant(il.NewConstant(5, 8)))
	if v, ok := state.Variable(x); !ok {
		t.Fatal("expected bound variable")
	} else if !v.Eq(kset.FromConstant(il.NewConstant(5, 8))) {
		t.Fatalf("unexpected value: %s", v)
	}

	state.RemoveVariable(x)
	if _, ok := state.Variable(x); ok {
		t.Fatal("expected unbound variable")
	}
}

func TestState_Join(t *testing.T) {
	d := kset.NewDomain(il.LittleEndian)
	x, y, z := il.NewScalar("x", 8), il.NewScalar("y", 8), il.NewScalar("z", 8)

	t.Run("Variables", func(t *testing.T) {
		s0 := d.NewState()
		s0.SetVariable(x, kset.FromConstant(il.NewConstant(1, 8)))
		s0.SetVariable(y, kset.FromConstant(il.NewConstant(2, 8)))

		s1 := d.NewState()
		s1.SetVariable(x, kset.FromConstant(il.NewConstant(3, 8)))
		s1.SetVariable(z, kset.FromConstant(il.NewConstant(4, 8)))

		joined, err := s0.Join(s1)
		if err != nil {
			t.Fatal(err)
		}

		// Bound in both: joined pairwise.
		if v, _ := joined.Variable(x); !v.Eq(kset.FromConstants(8, il.NewConstant(1, 8), il.NewConstant(3, 8))) {
			t.Fatalf("unexpected value: %s", v)
		}
		// Bound only in the receiver: kept as-is.
		if v, _ := joined.Variable(y); !v.Eq(kset.FromConstant(il.NewConstant(2, 8))) {
			t.Fatalf("unexpected value: %s", v)
		}
		// Bound only in the argument: copied over.
		if v, _ := joined.Variable(z); !v.Eq(kset.FromConstant(il.NewConstant(4, 8))) {
			t.Fatalf("unexpected value: %s", v)
		}
	})

	t.Run("Memory", func(t *testing.T) {
		addr := kset.FromConstant(il.NewConstant(0x10, 32))

		s0 := d.NewState()
		if err := s0.Memory().Store(addr, kset.FromConstant(il.NewConstant(1, 8))); err != nil {
			t.Fatal(err)
		}
		s1 := d.NewState()
		if err := s1.Memory().Store(addr, kset.FromConstant(il.NewConstant(2, 8))); err != nil {
			t.Fatal(err)
		}

		joined, err := s0.Join(s1)
		if err != nil {
			t.Fatal(err)
		}
		v, err := joined.Memory().Load(addr, 8)
		if err != nil {
			t.Fatal(err)
		}
		if !v.Eq(kset.FromConstants(8, il.NewConstant(1, 8), il.NewConstant(2, 8))) {
			t.Fatalf("unexpected value: %s", v)
		}
	})

	t.Run("ErrWidthMismatch", func(t *testing.T) {
		s0, s1 := d.NewState(), d.NewState()
		s0.SetVariable(x, kset.Top(8))
		s1.SetVariable(x, kset.Top(16))
		if _, err := s0.Join(s1); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestState_Eq(t *testing.T) {
	d := kset.NewDomain(il.LittleEndian)
	x := il.NewScalar("x", 8)

	s0, s1 := d.NewState(), d.NewState()
	s0.SetVariable(x, kset.Top(8))
	s1.SetVariable(x, kset.Top(8))
	if !s0.Eq(s1) {
		t.Fatal("expected equal states")
	}

	s1.SetVariable(x, kset.Bottom(8))
	if s0.Eq(s1) {
		t.Fatal("expected unequal states")
	}
}

func TestState_MarshalJSON(t *testing.T) {
	d := kset.NewDomain(il.BigEndian)
	state := d.NewState()
	state.SetVariable(il.NewScalar("x", 32), kset.FromConstant(il.NewConstant(0x12345678, 32)))
	state.SetVariable(il.NewScalar("y", 8), kset.Top(8))
	if err := state.Memory().Store(kset.FromConstant(il.NewConstant(0x1000, 32)), kset.FromConstant(il.NewConstant(0xAABB, 16))); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}

	var other ai.State[*kset.Memory, kset.KSet]
	if err := json.Unmarshal(data, &other); err != nil {
		t.Fatal(err)
	}
	if !state.Eq(&other) {
		t.Fatalf("state changed across serialization: %s", data)
	}
}

func TestState_UnmarshalJSON(t *testing.T) {
	t.Run("ErrMissingMemory", func(t *testing.T) {
		// A state is never valid without a memory; leaving the zero M in
		// place would break every later Join and Eq.
		var s ai.State[*kset.Memory, kset.KSet]
		if err := json.Unmarshal([]byte(`{"variables":[]}`), &s); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestState_Dump(t *testing.T) {
	d := kset.NewDomain(il.LittleEndian)
	state := d.NewState()
	state.SetVariable(il.NewScalar("x", 8), kset.FromConstant(il.NewConstant(5, 8)))

	dump := state.Dump()
	if !strings.Contains(dump, "x:8") {
		t.Fatalf("missing variable in dump: %s", dump)
	} else if !strings.Contains(dump, "MEMORY") {
		t.Fatalf("missing memory section in dump: %s", dump)
	}
}
