package ticket

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	idPrefix  = "T-"
	idDigits  = 6
	extension = ".md"
)

var (
	idPattern       = regexp.MustCompile(`^T-\d{6,}$`)
	filenamePattern = regexp.MustCompile(`^(T-\d{6,})\.md$`)
)

// ValidID reports whether id has the T-NNNNNN form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// FormatID returns the zero-padded ID for a sequence number.
func FormatID(n int) string {
	return fmt.Sprintf("%s%0*d", idPrefix, idDigits, n)
}

// IDNumber returns the sequence number of a ticket ID.
func IDNumber(id string) (int, error) {
	if !ValidID(id) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return strconv.Atoi(strings.TrimPrefix(id, idPrefix))
}

// NormalizeID accepts "T-000123", "t-000123", "T-123" or "123" and returns
// the canonical ID.
func NormalizeID(arg string) (string, error) {
	value := strings.TrimSpace(arg)
	value = strings.TrimSuffix(value, extension)
	if len(value) >= len(idPrefix) && strings.EqualFold(value[:len(idPrefix)], idPrefix) {
		value = value[len(idPrefix):]
	}
	if value == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, arg)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidID, arg)
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, arg)
	}
	return FormatID(n), nil
}

// Filename returns the file name for a ticket ID.
func Filename(id string) string {
	return id + extension
}

// IDFromFilename extracts the ticket ID from a ticket file name.
func IDFromFilename(name string) (string, bool) {
	match := filenamePattern.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// CompareIDs orders IDs by sequence number, falling back to string order
// for malformed IDs.
func CompareIDs(a, b string) int {
	na, errA := IDNumber(a)
	nb, errB := IDNumber(b)
	if errA == nil && errB == nil && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
