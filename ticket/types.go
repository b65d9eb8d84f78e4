// Package ticket implements the ticket file model for MuonTickets.
//
// A ticket is a markdown file named after its ID (T-000123.md) holding a YAML
// frontmatter header, a free-text body, and an append-only progress log.
//
// The public API covers the file format and the per-ticket rules:
//   - Parse, ParseFile and Serialize for the file format
//   - Validate and the Validate* helpers for field rules
//   - CheckTransition for the status state machine
//   - ParseTemplate and Template.Render for new-ticket skeletons
package ticket

// Status represents the workflow state of a ticket.
type Status string

const (
	// StatusReady indicates the ticket can be claimed once its dependencies are done.
	StatusReady Status = "ready"

	// StatusClaimed indicates an owner is working on the ticket on a branch.
	StatusClaimed Status = "claimed"

	// StatusBlocked is advisory: a ready ticket with unmet dependencies is
	// reported as blocked. It is never a target of a normal transition.
	StatusBlocked Status = "blocked"

	// StatusNeedsReview indicates the work is waiting for review.
	StatusNeedsReview Status = "needs_review"

	// StatusDone indicates the ticket is finished.
	StatusDone Status = "done"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusReady, StatusClaimed, StatusBlocked, StatusNeedsReview, StatusDone}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// RequiresBranch reports whether tickets in this status must track a branch.
func (s Status) RequiresBranch() bool {
	switch s {
	case StatusClaimed, StatusNeedsReview, StatusDone:
		return true
	default:
		return false
	}
}

// Priority orders tickets; p0 is the most urgent.
type Priority string

const (
	PriorityP0 Priority = "p0"
	PriorityP1 Priority = "p1" // default
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"
)

// ValidPriorities returns all valid priorities, most urgent first.
func ValidPriorities() []Priority {
	return []Priority{PriorityP0, PriorityP1, PriorityP2, PriorityP3}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns 0 for p0 through 3 for p3, or -1 for unknown values.
func (p Priority) Rank() int {
	for i, valid := range ValidPriorities() {
		if p == valid {
			return i
		}
	}
	return -1
}

// Effort is a t-shirt size estimate.
type Effort string

const (
	EffortXS Effort = "xs"
	EffortS  Effort = "s" // default
	EffortM  Effort = "m"
	EffortL  Effort = "l"
	EffortXL Effort = "xl"
)

// ValidEfforts returns all valid efforts, smallest first.
func ValidEfforts() []Effort {
	return []Effort{EffortXS, EffortS, EffortM, EffortL, EffortXL}
}

// IsValid returns true if the effort is a known valid value.
func (e Effort) IsValid() bool {
	return e.Rank() >= 0
}

// Rank returns 0 for xs through 4 for xl, or -1 for unknown values.
func (e Effort) Rank() int {
	for i, valid := range ValidEfforts() {
		if e == valid {
			return i
		}
	}
	return -1
}

// DefaultTypes lists the ticket types accepted when no configuration overrides them.
func DefaultTypes() []string {
	return []string{"spec", "code", "tests", "docs", "refactor", "chore", "bug"}
}

// Defaults applied to new tickets when neither flags nor the template set a value.
const (
	DefaultPriority = PriorityP1
	DefaultEffort   = EffortS
	DefaultType     = "code"
)

// MaxTitleLength is the maximum allowed length for a ticket title.
const MaxTitleLength = 500
