package listflags

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidValue is returned for a flag value outside its allowed set.
var ErrInvalidValue = errors.New("invalid value")

func errInvalid(kind string) error {
	return fmt.Errorf("%w for %s", ErrInvalidValue, kind)
}

func readCSV(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	values, err := csv.NewReader(strings.NewReader(s)).Read()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return values, nil
}
