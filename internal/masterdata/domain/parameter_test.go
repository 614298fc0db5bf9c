package masterdata

import (
	"errors"
	"testing"
)

func limit(v float64) *float64 { return &v }

func TestValidateLimitOrdering(t *testing.T) {
	cases := []struct {
		name     string
		typ      ParameterType
		warning  *float64
		critical *float64
		wantErr  bool
	}{
		{"increasing ordered", TypeIncreasing, limit(70), limit(90), false},
		{"increasing equal", TypeIncreasing, limit(70), limit(70), true},
		{"increasing inverted", TypeIncreasing, limit(90), limit(70), true},
		{"decreasing ordered", TypeDecreasing, limit(30), limit(10), false},
		{"decreasing equal", TypeDecreasing, limit(30), limit(30), true},
		{"decreasing inverted", TypeDecreasing, limit(10), limit(30), true},
		{"dynamic warning", TypeIncreasing, nil, limit(90), false},
		{"dynamic critical", TypeDecreasing, limit(30), nil, false},
		{"dynamic both", TypeIncreasing, nil, nil, false},
		{"boolean ignores limits", TypeBoolean, limit(1), limit(0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLimitOrdering(tc.typ, tc.warning, tc.critical)
			if tc.wantErr && !errors.Is(err, ErrInvalidLimitOrdering) {
				t.Fatalf("expected ErrInvalidLimitOrdering, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParameterTypeValid(t *testing.T) {
	for _, typ := range []ParameterType{TypeIncreasing, TypeDecreasing, TypeBoolean} {
		if !typ.Valid() {
			t.Fatalf("expected %s valid", typ)
		}
	}
	if ParameterType("linear").Valid() {
		t.Fatal("expected unknown type invalid")
	}
}
