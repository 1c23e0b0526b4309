package money

import (
	"errors"
	"math"
	"testing"
)

func TestFormatter(t *testing.T) {
	f := Formatter{}
	cases := []struct {
		cents int64
		want  string
	}{
		{-4250, "₪42.50"},
		{0, "₪0.00"},
		{5, "₪0.05"},
		{123456, "₪1234.56"},
	}
	for _, c := range cases {
		if got := f.Abs(c.cents); got != c.want {
			t.Errorf("Abs(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
	if got := f.Signed(-500, false); got != "-₪5.00" {
		t.Errorf("Signed = %q", got)
	}
	if got := (Formatter{Symbol: "$"}).Signed(500, true); got != "+$5.00" {
		t.Errorf("Signed with symbol = %q", got)
	}
	if got := Decimal(-550); got != "-5.50" {
		t.Errorf("Decimal = %q", got)
	}
}

func TestParse(t *testing.T) {
	ok := map[string]int64{
		"12":     1200,
		"12.5":   1250,
		" 0.01 ": 1,
		"3,75":   375,
		"-2":     -200,
		"0.005":  1,
	}
	for in, want := range ok {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Errorf("Parse(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "NaN", "Inf", "1.2.3"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
	for _, in := range []string{"0", "-1", "", "x"} {
		if _, ok := ParsePositive(in); ok {
			t.Errorf("ParsePositive(%q) should be rejected", in)
		}
	}
	if v, ok := ParsePositive("4.20"); !ok || v != 420 {
		t.Errorf("ParsePositive(4.20) = %d, %v", v, ok)
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"99999999999999999999", "-99999999999999999999", "92233720368547758.08"} {
		if _, err := Parse(in); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Parse(%q) err = %v, want ErrOutOfRange", in, err)
		}
	}
	if v, err := Parse("92233720368547758.07"); err != nil || v != math.MaxInt64 {
		t.Errorf("Parse(max) = %d, %v", v, err)
	}
	for _, in := range []string{"1e17", "5E2"} {
		if _, ok := ParsePositive(in); ok {
			t.Errorf("ParsePositive(%q) should reject exponent input", in)
		}
	}
	if got := FromFloat(5.55); got != 555 {
		t.Errorf("FromFloat(5.55) = %d", got)
	}
}
