package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned when the tickets directory does not exist.
	ErrNotInitialized = errors.New("tickets directory not found (run mt init)")

	// ErrTicketNotFound is returned when no ticket with the given ID exists.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrUnresolvedReference is returned when depends_on names an unknown ticket.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCycleDetected is wrapped by every CycleError.
	ErrCycleDetected = errors.New("dependency cycle detected")

	// ErrArchivedDependency marks depends_on entries that point into the archive.
	ErrArchivedDependency = errors.New("depends on archived ticket")

	// ErrWipExceeded is wrapped by every WipError.
	ErrWipExceeded = errors.New("wip limit exceeded")

	// ErrBlockedByDependents is wrapped by every DependentsError.
	ErrBlockedByDependents = errors.New("ticket is still a dependency of other tickets")

	// ErrDuplicateID is returned when two ticket files carry the same ID.
	ErrDuplicateID = errors.New("duplicate ticket id")

	// ErrNoneAvailable is returned when pick finds no claimable ticket.
	ErrNoneAvailable = errors.New("no claimable tickets found")

	// ErrInvalidWeights is returned for pick weights that would not keep
	// priority ahead of effort and effort ahead of age.
	ErrInvalidWeights = errors.New("invalid pick weights")

	// ErrOwnerRequired is returned when a claim names no owner.
	ErrOwnerRequired = errors.New("owner is required")

	// ErrOwnerConflict is returned when a ticket is already claimed by someone else.
	ErrOwnerConflict = errors.New("ticket is claimed by another owner")

	// ErrDependenciesNotDone is returned when a claim would start blocked work.
	ErrDependenciesNotDone = errors.New("dependencies not done")

	// ErrMissingOwner is returned when a claimed ticket has no owner.
	ErrMissingOwner = errors.New("claimed ticket must have an owner")

	// ErrMissingBranch is returned when a claimed or later ticket has no branch.
	ErrMissingBranch = errors.New("ticket must have a branch")

	// ErrNotActive is returned when an operation needs an active ticket.
	ErrNotActive = errors.New("ticket is not in the active directory")

	// ErrNotDone is returned when archiving a ticket that is not done.
	ErrNotDone = errors.New("ticket is not done")

	// ErrNotInBacklog is returned when promoting a ticket that is not in the backlog.
	ErrNotInBacklog = errors.New("ticket is not in the backlog")

	// ErrAlreadyArchived is returned for mutations of archived tickets.
	ErrAlreadyArchived = errors.New("ticket is archived")

	// ErrEmptyComment is returned when a comment has no text.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrIDChanged is returned when an edit changes the ticket ID.
	ErrIDChanged = errors.New("ticket id cannot be changed")

	// ErrDepsNotDoneForStatus is reported when a started ticket has open dependencies.
	ErrDepsNotDoneForStatus = errors.New("started ticket has dependencies that are not done")

	// errMissingCounter triggers a rebuild of the counter by scan.
	errMissingCounter = errors.New("counter file missing or unreadable")
)

// CycleError names the tickets forming a dependency cycle, smallest ID first.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCycleDetected.Error()
	}
	path := append(append([]string(nil), e.Cycle...), e.Cycle[0])
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(path, " -> "))
}

// Unwrap returns ErrCycleDetected.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// WipError reports an owner holding too many claimed tickets. Label is set
// when the limit is scoped per owner and label.
type WipError struct {
	Owner string
	Label string
	Count int
	Limit int
}

func (e *WipError) Error() string {
	scope := fmt.Sprintf("owner %q", e.Owner)
	if e.Label != "" {
		scope = fmt.Sprintf("owner %q with label %q", e.Owner, e.Label)
	}
	return fmt.Sprintf("%s: %s has %d claimed tickets (max %d)", ErrWipExceeded, scope, e.Count, e.Limit)
}

// Unwrap returns ErrWipExceeded.
func (e *WipError) Unwrap() error {
	return ErrWipExceeded
}

// DependentsError lists the tickets whose depends_on still names ID.
type DependentsError struct {
	ID         string
	Dependents []string
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("%s: %s is required by %s", ErrBlockedByDependents, e.ID, strings.Join(e.Dependents, ", "))
}

// Unwrap returns ErrBlockedByDependents.
func (e *DependentsError) Unwrap() error {
	return ErrBlockedByDependents
}

// Reference is one depends_on edge.
type Reference struct {
	From string
	To   string
}

// ReferenceError reports a depends_on entry naming a ticket that does not exist.
type ReferenceError struct {
	Reference
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s depends on missing ticket %s", ErrUnresolvedReference, e.From, e.To)
}

// Unwrap returns ErrUnresolvedReference.
func (e *ReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}
