package il_test

import (
	"errors"
	"testing"

	"github.com/oblivia-simplex/falcon/il"
)

func TestNewConstant(t *testing.T) {
	t.Run("Masked", func(t *testing.T) {
		if c := il.NewConstant(0x1FF, 8); c.Value != 0xFF {
			t.Fatalf("unexpected value: %#x", c.Value)
		}
	})
	t.Run("FullWidth", func(t *testing.T) {
		if c := il.NewConstant(^uint64(0), 64); c.Value != ^uint64(0) {
			t.Fatalf("unexpected value: %#x", c.Value)
		}
	})
}

func TestConstant_String(t *testing.T) {
	if s := il.NewConstant(0xAB, 8).String(); s != "0xab:8" {
		t.Fatalf("unexpected string: %s", s)
	}
}

func TestConstant_Add(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(6, 8).Add(il.NewConstant(4, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(10, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Wraps", func(t *testing.T) {
		c, err := il.NewConstant(0xFF, 8).Add(il.NewConstant(2, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(1, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrWidthMismatch", func(t *testing.T) {
		if _, err := il.NewConstant(1, 8).Add(il.NewConstant(1, 16)); !errors.Is(err, il.ErrWidthMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConstant_Sub(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(10, 8).Sub(il.NewConstant(4, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(6, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Wraps", func(t *testing.T) {
		c, err := il.NewConstant(0, 8).Sub(il.NewConstant(1, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0xFF, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Mul(t *testing.T) {
	c, err := il.NewConstant(0x80, 8).Mul(il.NewConstant(2, 8))
	if err != nil {
		t.Fatal(err)
	} else if c != il.NewConstant(0, 8) {
		t.Fatalf("unexpected constant: %s", c)
	}
}

func TestConstant_Divu(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(9, 8).Divu(il.NewConstant(2, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(4, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrDivideByZero", func(t *testing.T) {
		if _, err := il.NewConstant(9, 8).Divu(il.NewConstant(0, 8)); !errors.Is(err, il.ErrDivideByZero) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConstant_Divs(t *testing.T) {
	t.Run("NegativeDividend", func(t *testing.T) {
		// -6 / 2 == -3
		c, err := il.NewConstant(0xFA, 8).Divs(il.NewConstant(2, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0xFD, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("MinByNegOne", func(t *testing.T) {
		// Most negative value divided by -1 wraps back to itself.
		c, err := il.NewConstant(0x80, 8).Divs(il.NewConstant(0xFF, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0x80, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrDivideByZero", func(t *testing.T) {
		if _, err := il.NewConstant(1, 8).Divs(il.NewConstant(0, 8)); !errors.Is(err, il.ErrDivideByZero) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConstant_Modu(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(9, 8).Modu(il.NewConstant(4, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(1, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrDivideByZero", func(t *testing.T) {
		if _, err := il.NewConstant(9, 8).Modu(il.NewConstant(0, 8)); !errors.Is(err, il.ErrDivideByZero) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConstant_Mods(t *testing.T) {
	t.Run("NegativeDividend", func(t *testing.T) {
		// -7 % 2 == -1
		c, err := il.NewConstant(0xF9, 8).Mods(il.NewConstant(2, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0xFF, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("NegOneDivisor", func(t *testing.T) {
		c, err := il.NewConstant(0x80, 8).Mods(il.NewConstant(0xFF, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Bitwise(t *testing.T) {
	a, b := il.NewConstant(0b1100, 4), il.NewConstant(0b1010, 4)
	t.Run("And", func(t *testing.T) {
		if c, err := a.And(b); err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0b1000, 4) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Or", func(t *testing.T) {
		if c, err := a.Or(b); err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0b1110, 4) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Xor", func(t *testing.T) {
		if c, err := a.Xor(b); err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0b0110, 4) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Shl(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(1, 8).Shl(il.NewConstant(4, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0x10, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ShiftOutOfRange", func(t *testing.T) {
		c, err := il.NewConstant(1, 8).Shl(il.NewConstant(8, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Shr(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(0x80, 8).Shr(il.NewConstant(7, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(1, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ShiftOutOfRange", func(t *testing.T) {
		c, err := il.NewConstant(0x80, 8).Shr(il.NewConstant(0xFF, 8))
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Compare(t *testing.T) {
	t.Run("Cmpeq", func(t *testing.T) {
		if c, _ := il.NewConstant(5, 8).Cmpeq(il.NewConstant(5, 8)); c != il.NewBoolConstant(true) {
			t.Fatalf("unexpected constant: %s", c)
		}
		if c, _ := il.NewConstant(5, 8).Cmpeq(il.NewConstant(6, 8)); c != il.NewBoolConstant(false) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Cmpneq", func(t *testing.T) {
		if c, _ := il.NewConstant(5, 8).Cmpneq(il.NewConstant(6, 8)); c != il.NewBoolConstant(true) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Cmpltu", func(t *testing.T) {
		// 0xFF is large unsigned.
		if c, _ := il.NewConstant(0xFF, 8).Cmpltu(il.NewConstant(0, 8)); c != il.NewBoolConstant(false) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("Cmplts", func(t *testing.T) {
		// 0xFF is -1 signed.
		if c, _ := il.NewConstant(0xFF, 8).Cmplts(il.NewConstant(0, 8)); c != il.NewBoolConstant(true) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Zext(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(0xFF, 8).Zext(16)
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0xFF, 16) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrNarrower", func(t *testing.T) {
		if _, err := il.NewConstant(0, 16).Zext(8); !errors.Is(err, il.ErrInvalidWidth) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConstant_Sext(t *testing.T) {
	t.Run("Negative", func(t *testing.T) {
		c, err := il.NewConstant(0xFF, 8).Sext(16)
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0xFFFF, 16) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("NonNegative", func(t *testing.T) {
		c, err := il.NewConstant(0x7F, 8).Sext(16)
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0x7F, 16) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
}

func TestConstant_Trun(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		c, err := il.NewConstant(0x1234, 16).Trun(8)
		if err != nil {
			t.Fatal(err)
		} else if c != il.NewConstant(0x34, 8) {
			t.Fatalf("unexpected constant: %s", c)
		}
	})
	t.Run("ErrWider", func(t *testing.T) {
		if _, err := il.NewConstant(0, 8).Trun(16); !errors.Is(err, il.ErrInvalidWidth) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrZero", func(t *testing.T) {
		if _, err := il.NewConstant(0, 8).Trun(0); !errors.Is(err, il.ErrInvalidWidth) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
