package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 30, 30},   // missing query param -> default window
		{"7", 30, 7},   // explicit window
		{"0", 30, 0},   // zero passes through (callers treat it as "all")
		{"-4", 30, -4}, // negatives pass through too
		{"0012", 99, 12},
		{"x", 5, 5},    // garbage -> default
		{" 42", 7, 7},  // no trimming
		{"999999999999999999999999", -1, -1}, // overflow -> default
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}
