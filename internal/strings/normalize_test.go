package strings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: " \n\t ",
			want:  "",
		},
		{
			name:  "collapses spaces",
			input: "one   two    three",
			want:  "one two three",
		},
		{
			name:  "collapses newlines",
			input: "one\n\n two\tthree",
			want:  "one two three",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeWhitespace(tc.input)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	got := NormalizeNewlines("a\r\nb\rc\n")
	if got != "a\nb\nc\n" {
		t.Fatalf("expected LF newlines, got %q", got)
	}
}

func TestTrimTrailingWhitespace(t *testing.T) {
	got := TrimTrailingWhitespace("body\n\n \t")
	if got != "body" {
		t.Fatalf("expected %q, got %q", "body", got)
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "simple", input: "Fix the Parser", max: 40, want: "fix-the-parser"},
		{name: "punctuation", input: "  Add: JSON/JSONL export!  ", max: 40, want: "add-json-jsonl-export"},
		{name: "truncates", input: "abcdef ghijkl", max: 7, want: "abcdef"},
		{name: "fallback", input: "!!!", max: 40, want: "task"},
		{name: "non ascii dropped", input: "café au lait", max: 40, want: "caf-au-lait"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Slug(tc.input, tc.max, "task")
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDedupeNonEmpty(t *testing.T) {
	got := DedupeNonEmpty([]string{" a", "b", "", "a", "c "})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
