package validation

import (
	"errors"
	"sort"
	"testing"
)

func TestNormalizeOperator(t *testing.T) {
	tests := []struct {
		operator string
		want     string
		wantErr  bool
	}{
		{"=", "=", false},
		{"!=", "!=", false},
		{"^=", "^=", false},
		{"<>", "<>", false},
		{"<=", "<=", false},
		{">=", ">=", false},
		{"LIKE", "like", false},
		{"Like", "like", false},
		{"not   like", "not like", false},
		{" IS NOT ", "is not", false},
		{"in", "in", false},
		{"NOT BETWEEN", "not between", false},

		{"", "", true},
		{"<=>", "", true},
		{"EQUALS", "", true},
		{"= OR 1=1", "", true},
		{";", "", true},
		{"--", "", true},
		{"UNION", "", true},
		{"LIK", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.operator, func(t *testing.T) {
			got, err := NormalizeOperator(tt.operator)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeOperator(%q) error = %v, wantErr %v", tt.operator, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeOperator(%q) = %q, want %q", tt.operator, got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrInvalidOperator) {
				t.Errorf("NormalizeOperator(%q) error does not match ErrInvalidOperator", tt.operator)
			}
			if (ValidateOperator(tt.operator) != nil) != tt.wantErr {
				t.Errorf("ValidateOperator(%q) disagrees with NormalizeOperator", tt.operator)
			}
		})
	}
}

func TestOperatorClasses(t *testing.T) {
	if !IsComparisonOperator("^=") || IsComparisonOperator("like") {
		t.Error("IsComparisonOperator misclassified")
	}
	if !IsPatternOperator("not like") || IsPatternOperator("=") {
		t.Error("IsPatternOperator misclassified")
	}
	if !IsNullOperator("is not") || IsNullOperator("in") {
		t.Error("IsNullOperator misclassified")
	}
}

func TestAllowedOperators(t *testing.T) {
	ops := AllowedOperators()
	if len(ops) != 16 {
		t.Errorf("AllowedOperators() returned %d operators, want 16", len(ops))
	}
	if !sort.StringsAreSorted(ops) {
		t.Error("AllowedOperators() is not sorted")
	}
}
