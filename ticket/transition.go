package ticket

import (
	"fmt"
	"slices"

	"github.com/amonks/muontickets/internal/validation"
)

// allowedTransitions lists the stored status changes agents may perform
// without an override.
var allowedTransitions = map[Status][]Status{
	StatusReady:       {StatusClaimed},
	StatusClaimed:     {StatusNeedsReview},
	StatusNeedsReview: {StatusDone, StatusClaimed},
}

// TransitionError reports a status change outside the state machine.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	allowed := allowedTransitions[e.From]
	if len(allowed) == 0 {
		return fmt.Sprintf("invalid transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}
	return fmt.Sprintf("invalid transition %s -> %s: allowed from %s: %s",
		e.From, e.To, e.From, validation.FormatValidValues(allowed))
}

// Unwrap returns ErrInvalidTransition.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// AllowedTransitions returns the statuses reachable from s without force.
func AllowedTransitions(s Status) []Status {
	return slices.Clone(allowedTransitions[s])
}

// CanTransition reports whether from -> to is a legal stored transition.
func CanTransition(from, to Status) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// CheckTransition returns a *TransitionError naming both states when
// from -> to is not legal, or ErrInvalidStatus when to is unknown.
func CheckTransition(from, to Status) error {
	if !to.IsValid() {
		return fmt.Errorf("%w %q: must be one of %s", ErrInvalidStatus, to, validation.FormatValidValues(ValidStatuses()))
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
