package status

import (
	"sort"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"M2", "M10", true},
		{"M10", "M2", false},
		{"M2", "M2", false},
		{"M02", "M2", true},
		{"press-9", "press-10", true},
		{"A1B2", "A1B10", true},
		{"M1", "M1a", true},
		{"10", "A", true},
	}
	for _, tc := range cases {
		if got := NaturalLess(tc.a, tc.b); got != tc.want {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNaturalSortOrder(t *testing.T) {
	names := []string{"M10", "M1", "M21", "M2", "M11"}
	sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	want := []string{"M1", "M2", "M10", "M11", "M21"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
