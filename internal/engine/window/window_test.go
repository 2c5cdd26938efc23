package window

import "testing"

func TestCaseTitle(t *testing.T) {
	tests := []struct {
		caseID string
		index  int
		total  int
		want   string
	}{
		{"", 0, 5, "Eval"},
		{"subject_001", 0, 5, "Eval - subject_001 (1/5)"},
		{"subject_014", 4, 5, "Eval - subject_014 (5/5)"},
	}
	for _, tt := range tests {
		if got := CaseTitle("Eval", tt.caseID, tt.index, tt.total); got != tt.want {
			t.Errorf("CaseTitle(%q, %d, %d) = %q, want %q", tt.caseID, tt.index, tt.total, got, tt.want)
		}
	}
}
