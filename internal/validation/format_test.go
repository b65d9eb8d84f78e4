package validation

import (
	"errors"
	"testing"
)

type sample string

const (
	first  sample = "first"
	second sample = "second"
)

func TestFormatValidValues(t *testing.T) {
	got := FormatValidValues([]sample{first, second})
	want := "first, second"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatInvalidValueError(t *testing.T) {
	base := errors.New("invalid sample")
	err := FormatInvalidValueError(base, sample("bad"), []sample{first, second})
	if !errors.Is(err, base) {
		t.Fatalf("expected error to wrap %v", base)
	}

	want := "invalid sample: \"bad\" (valid: first, second)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestParseEnum(t *testing.T) {
	got, ok := ParseEnum(" Second ", []sample{first, second})
	if !ok || got != second {
		t.Fatalf("expected second, got %q %v", got, ok)
	}
	if _, ok := ParseEnum("third", []sample{first, second}); ok {
		t.Fatal("expected third to be rejected")
	}
}
