package ui

import "testing"

func TestSignificantStart(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{id: "T-000123", want: 5},
		{id: "T-000001", want: 7},
		{id: "T-000000", want: 7},
		{id: "T-1234567", want: 2},
		{id: "plain", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := significantStart(tt.id); got != tt.want {
				t.Fatalf("significantStart(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestHighlightIDWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := HighlightID("T-000123"); got != "T-000123" {
		t.Fatalf("expected plain id, got %q", got)
	}
	if got := FormatStatus("needs_review"); got != "needs_review" {
		t.Fatalf("expected plain status, got %q", got)
	}
}
