package ai_test

import (
	"testing"

	"github.com/oblivia-simplex/falcon/ai"
	"github.com/oblivia-simplex/falcon/ai/kset"
	"github.com/oblivia-simplex/falcon/il"
)

func TestBinaryOp_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := ai.ADD.String(); s != "add" {
			t.Fatalf("unexpected string: %s", s)
		} else if s := ai.CMPLTS.String(); s != "cmplts" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := ai.BinaryOp(100).String(); s != "BinaryOp<100>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestBinaryOp_IsArithmetic(t *testing.T) {
	if !ai.ADD.IsArithmetic() {
		t.Fatal("expected true")
	} else if ai.CMPEQ.IsArithmetic() {
		t.Fatal("expected false")
	}
}

func TestBinaryOp_IsCompare(t *testing.T) {
	if !ai.CMPLTU.IsCompare() {
		t.Fatal("expected true")
	} else if ai.SUB.IsCompare() {
		t.Fatal("expected false")
	}
}

func TestExtendOp_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := ai.SEXT.String(); s != "sext" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := ai.ExtendOp(100).String(); s != "ExtendOp<100>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestValueExpr_String(t *testing.T) {
	expr := ai.NewValueExpr(kset.FromConstant(il.NewConstant(1, 8)))
	if s := expr.String(); s != "{0x1:8}" {
		t.Fatalf("unexpected string: %s", s)
	}
}

func TestBinaryExpr_String(t *testing.T) {
	expr := ai.NewAddExpr(
		ai.NewValueExpr(kset.FromConstant(il.NewConstant(0, 32))),
		ai.NewValueExpr(kset.FromConstant(il.NewConstant(1, 32))),
	)
	if s := expr.String(); s != "(add {0x0:32} {0x1:32})" {
		t.Fatalf("unexpected string: %s", s)
	}
}

func TestExtendExpr_String(t *testing.T) {
	expr := ai.NewZextExpr(16, ai.NewValueExpr(kset.FromConstant(il.NewConstant(1, 8))))
	if s := expr.String(); s != "(zext 16 {0x1:8})" {
		t.Fatalf("unexpected string: %s", s)
	}
}
