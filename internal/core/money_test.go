package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"149.90", 14990, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true}, // zero amounts are allowed for entries
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFormatDecimal(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{14990, "149.90"},
		{100, "1.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).FormatDecimal(); got != tc.out {
			t.Fatalf("FormatDecimal(%d) = %q, want %q", tc.cents, got, tc.out)
		}
	}
}
