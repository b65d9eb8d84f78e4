package ticket

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/amonks/muontickets/internal/validation"
)

var (
	// ErrSchema is wrapped by every SchemaError.
	ErrSchema = errors.New("schema error")

	// ErrEmptyTitle is returned when a ticket title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a ticket title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrInvalidID is returned for IDs that are not of the form T-NNNNNN.
	ErrInvalidID = errors.New("invalid ticket id")

	// ErrInvalidStatus is returned when an invalid status is provided.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority is returned when an invalid priority is provided.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidEffort is returned when an invalid effort is provided.
	ErrInvalidEffort = errors.New("invalid effort")

	// ErrInvalidType is returned when a type is not in the configured list.
	ErrInvalidType = errors.New("invalid ticket type")

	// ErrSelfDependency is returned when a ticket depends on itself.
	ErrSelfDependency = errors.New("ticket cannot depend on itself")

	// ErrDuplicateDependency is returned when a dependency is listed twice.
	ErrDuplicateDependency = errors.New("dependency already exists")

	// ErrInvalidTransition is wrapped by every TransitionError.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUpdatedBeforeCreated is returned when updated is earlier than created.
	ErrUpdatedBeforeCreated = errors.New("updated is earlier than created")
)

// SchemaError describes a malformed ticket file. Problems lists every
// violation found in one pass.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	msg := strings.Join(e.Problems, "; ")
	if msg == "" {
		msg = "malformed ticket"
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

// Unwrap returns ErrSchema.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	return nil
}

// ValidateType checks typ against the allowed types. An empty allowed list
// falls back to DefaultTypes.
func ValidateType(typ string, allowed []string) error {
	if len(allowed) == 0 {
		allowed = DefaultTypes()
	}
	if !slices.Contains(allowed, typ) {
		return fmt.Errorf("%w %q: must be one of %s", ErrInvalidType, typ, validation.FormatValidValues(allowed))
	}
	return nil
}

// ValidateDependencies checks the depends_on list of the ticket with the given ID.
func ValidateDependencies(id string, deps []string) error {
	seen := make(map[string]bool, len(deps))
	for _, dep := range deps {
		if !ValidID(dep) {
			return fmt.Errorf("%w in depends_on: %q", ErrInvalidID, dep)
		}
		if dep == id {
			return fmt.Errorf("%w: %s", ErrSelfDependency, id)
		}
		if seen[dep] {
			return fmt.Errorf("%w: %s", ErrDuplicateDependency, dep)
		}
		seen[dep] = true
	}
	return nil
}

// Validate checks the intrinsic field rules of a ticket and returns every
// violation. It does not look at other tickets.
func Validate(t *Ticket, types []string) []error {
	var errs []error
	if !ValidID(t.ID) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidID, t.ID))
	}
	if err := ValidateTitle(t.Title); err != nil {
		errs = append(errs, err)
	}
	if !t.Status.IsValid() {
		errs = append(errs, fmt.Errorf("%w %q: must be one of %s", ErrInvalidStatus, t.Status, validation.FormatValidValues(ValidStatuses())))
	}
	if !t.Priority.IsValid() {
		errs = append(errs, fmt.Errorf("%w %q: must be one of %s", ErrInvalidPriority, t.Priority, validation.FormatValidValues(ValidPriorities())))
	}
	if !t.Effort.IsValid() {
		errs = append(errs, fmt.Errorf("%w %q: must be one of %s", ErrInvalidEffort, t.Effort, validation.FormatValidValues(ValidEfforts())))
	}
	if err := ValidateType(t.Type, types); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateDependencies(t.ID, t.DependsOn); err != nil {
		errs = append(errs, err)
	}
	if !t.Created.IsZero() && !t.Updated.IsZero() && t.Updated.Before(t.Created) {
		errs = append(errs, fmt.Errorf("%w: %s < %s", ErrUpdatedBeforeCreated,
			formatTimestamp(t.Updated, t.updatedDateOnly), formatTimestamp(t.Created, t.createdDateOnly)))
	}
	return errs
}
