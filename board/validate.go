package board

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/amonks/muontickets/ticket"
)

// Severity classifies an issue. Only errors fail validation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the check that produced an issue.
type Code string

const (
	CodeSchema             Code = "schema"
	CodeDuplicateID        Code = "duplicate_id"
	CodeFilename           Code = "filename_mismatch"
	CodeTransition         Code = "invalid_transition"
	CodeUnresolved         Code = "unresolved_reference"
	CodeCycle              Code = "cycle_detected"
	CodeArchivedDependency Code = "archived_dependency"
	CodeWIP                Code = "wip_exceeded"
	CodeBranch             Code = "missing_branch"
	CodeOwner              Code = "missing_owner"
	CodeDependenciesDone   Code = "dependencies_not_done"
)

// Issue is one validation finding. TicketID is empty for findings about a
// file that could not be parsed or about an owner rather than a ticket.
type Issue struct {
	TicketID string   `json:"ticket_id,omitempty"`
	Path     string   `json:"path,omitempty"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`

	// Err wraps the sentinel for the finding so callers can use errors.Is.
	Err error `json:"-"`
}

func (i Issue) Error() string {
	if i.TicketID != "" {
		return i.TicketID + ": " + i.Message
	}
	if i.Path != "" {
		return i.Path + ": " + i.Message
	}
	return i.Message
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Report is the result of one validation pass, in check order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the issues with error severity.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with warning severity.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// OK reports whether the report holds no errors.
func (r Report) OK() bool {
	return len(r.Errors()) == 0
}

// ByTicket groups issues by ticket ID. Issues without an ID are keyed by
// path, or by the empty string.
func (r Report) ByTicket() map[string][]Issue {
	out := make(map[string][]Issue)
	for _, issue := range r.Issues {
		key := issue.TicketID
		if key == "" {
			key = issue.Path
		}
		out[key] = append(out[key], issue)
	}
	return out
}

// Err returns nil when the report is OK and otherwise an error joining
// every error-severity issue.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, issue := range errs {
		joined[i] = issue
	}
	return errors.Join(joined...)
}

// Transition is a status change under consideration.
type Transition struct {
	ID    string
	From  ticket.Status
	To    ticket.Status
	Force bool
}

// WIPScope selects how claimed tickets are counted against the limit.
type WIPScope string

const (
	// WIPScopeOwner counts all claimed tickets of an owner together.
	WIPScopeOwner WIPScope = "owner"

	// WIPScopeOwnerLabel counts claimed tickets per owner and label.
	// Unlabeled tickets share one bucket.
	WIPScopeOwnerLabel WIPScope = "owner-label"
)

// ValidWIPScopes returns all valid scopes.
func ValidWIPScopes() []WIPScope {
	return []WIPScope{WIPScopeOwner, WIPScopeOwnerLabel}
}

// IsValid reports whether s is a known scope.
func (s WIPScope) IsValid() bool {
	return slices.Contains(ValidWIPScopes(), s)
}

// WIPPolicy bounds claimed work per owner. A limit of zero or less disables it.
type WIPPolicy struct {
	Limit int
	Scope WIPScope
}

// DefaultWIPLimit is the per-owner claim limit used without configuration.
const DefaultWIPLimit = 2

// ValidateConfig configures Validate.
type ValidateConfig struct {
	// Types is the allowed ticket type list; empty means ticket.DefaultTypes.
	Types []string

	Transitions []Transition
	WIP         WIPPolicy

	// EnforceDoneDeps makes tickets past ready with unfinished
	// dependencies an error.
	EnforceDoneDeps bool
}

// Validate runs every board check and returns all findings in one report:
// schema, transitions, dependency integrity, WIP, then branch tracking.
func Validate(b *Board, opts ValidateConfig) Report {
	var r Report
	r.Issues = append(r.Issues, checkSchema(b, opts.Types)...)
	r.Issues = append(r.Issues, checkTransitions(b, opts.Transitions)...)
	r.Issues = append(r.Issues, checkDependencies(b)...)
	r.Issues = append(r.Issues, checkWIP(b, opts.WIP)...)
	for _, e := range b.Entries() {
		r.Issues = append(r.Issues, checkTracking(e)...)
	}
	if opts.EnforceDoneDeps {
		r.Issues = append(r.Issues, checkDoneDeps(b)...)
	}
	return r
}

func errorIssue(e *Entry, code Code, err error) Issue {
	issue := Issue{Severity: SeverityError, Code: code, Message: err.Error(), Err: err}
	if e != nil {
		issue.TicketID = e.Ticket.ID
		issue.Path = e.Path
	}
	return issue
}

func checkSchema(b *Board, types []string) []Issue {
	var issues []Issue
	for _, loadErr := range b.Errors {
		issue := Issue{
			Path:     loadErr.Path,
			Severity: SeverityError,
			Code:     CodeSchema,
			Message:  loadErr.Err.Error(),
			Err:      loadErr,
		}
		var schemaErr *ticket.SchemaError
		if errors.As(loadErr.Err, &schemaErr) {
			issue.Message = strings.Join(schemaErr.Problems, "; ")
		}
		if id, ok := ticket.IDFromFilename(filepath.Base(loadErr.Path)); ok {
			issue.TicketID = id
		}
		issues = append(issues, issue)
	}

	for _, id := range b.DuplicateIDs() {
		paths := b.Duplicates[id]
		err := fmt.Errorf("%w: %s is used by %s", ErrDuplicateID, id, strings.Join(paths, ", "))
		issues = append(issues, Issue{
			TicketID: id,
			Path:     paths[0],
			Severity: SeverityError,
			Code:     CodeDuplicateID,
			Message:  err.Error(),
			Err:      err,
		})
	}

	for _, e := range b.Misnamed() {
		err := fmt.Errorf("%w: file %s holds ticket %s", ticket.ErrInvalidID, filepath.Base(e.Path), e.Ticket.ID)
		issues = append(issues, errorIssue(e, CodeFilename, err))
	}

	for _, e := range b.Entries() {
		for _, err := range ticket.Validate(e.Ticket, types) {
			issues = append(issues, errorIssue(e, CodeSchema, err))
		}
	}
	return issues
}

// checkTransitions verifies each proposed transition with checkTransition.
func checkTransitions(b *Board, transitions []Transition) []Issue {
	var issues []Issue
	for _, tr := range transitions {
		e, err := checkTransition(b, tr)
		if err == nil {
			continue
		}
		if e == nil {
			issues = append(issues, Issue{
				TicketID: tr.ID,
				Severity: SeverityError,
				Code:     CodeTransition,
				Message:  err.Error(),
				Err:      err,
			})
			continue
		}
		issues = append(issues, errorIssue(e, CodeTransition, err))
	}
	return issues
}

// checkTransition verifies one transition against the state machine and
// against the status actually on the board. A mismatch with the expected
// prior state means someone else changed the ticket first. Store
// mutations run it for every status change they write.
func checkTransition(b *Board, tr Transition) (*Entry, error) {
	e, ok := b.Get(tr.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, tr.ID)
	}
	if tr.From != "" && e.Ticket.Status != tr.From {
		return e, fmt.Errorf("%w: expected %s to be %s, found %s", ticket.ErrInvalidTransition, tr.ID, tr.From, e.Ticket.Status)
	}
	from := cmp.Or(tr.From, e.Ticket.Status)
	if tr.Force || from == tr.To {
		return e, nil
	}
	return e, ticket.CheckTransition(from, tr.To)
}

func checkDependencies(b *Board) []Issue {
	var issues []Issue
	g := b.Graph()

	for _, ref := range g.Unresolved() {
		e, _ := b.Get(ref.From)
		issues = append(issues, errorIssue(e, CodeUnresolved, &ReferenceError{Reference: ref}))
	}

	for _, cycle := range g.Cycles() {
		e, _ := b.Get(cycle[0])
		issues = append(issues, errorIssue(e, CodeCycle, &CycleError{Cycle: cycle}))
	}

	for _, ref := range g.ArchivedRefs() {
		e, _ := b.Get(ref.From)
		err := fmt.Errorf("%w: %s depends on archived ticket %s", ErrArchivedDependency, ref.From, ref.To)
		issues = append(issues, Issue{
			TicketID: e.Ticket.ID,
			Path:     e.Path,
			Severity: SeverityWarning,
			Code:     CodeArchivedDependency,
			Message:  err.Error(),
			Err:      err,
		})
	}
	return issues
}

type wipBucket struct {
	owner string
	label string
}

// claimedCounts counts claimed tickets outside the archive per bucket.
func claimedCounts(b *Board, scope WIPScope) map[wipBucket][]string {
	counts := make(map[wipBucket][]string)
	for _, e := range b.Entries() {
		t := e.Ticket
		if e.Location == LocationArchive || t.Status != ticket.StatusClaimed || t.Owner == "" {
			continue
		}
		for _, bucket := range bucketsFor(t.Owner, t.Labels, scope) {
			counts[bucket] = append(counts[bucket], t.ID)
		}
	}
	return counts
}

func bucketsFor(owner string, labels []string, scope WIPScope) []wipBucket {
	if scope != WIPScopeOwnerLabel {
		return []wipBucket{{owner: owner}}
	}
	if len(labels) == 0 {
		return []wipBucket{{owner: owner}}
	}
	buckets := make([]wipBucket, 0, len(labels))
	for _, label := range labels {
		buckets = append(buckets, wipBucket{owner: owner, label: label})
	}
	return buckets
}

func checkWIP(b *Board, policy WIPPolicy) []Issue {
	if policy.Limit <= 0 {
		return nil
	}
	counts := claimedCounts(b, policy.Scope)
	buckets := make([]wipBucket, 0, len(counts))
	for bucket, ids := range counts {
		if len(ids) > policy.Limit {
			buckets = append(buckets, bucket)
		}
	}
	slices.SortFunc(buckets, func(a, b wipBucket) int {
		if c := strings.Compare(a.owner, b.owner); c != 0 {
			return c
		}
		return strings.Compare(a.label, b.label)
	})

	var issues []Issue
	for _, bucket := range buckets {
		ids := counts[bucket]
		err := &WipError{Owner: bucket.owner, Label: bucket.label, Count: len(ids), Limit: policy.Limit}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeWIP,
			Message:  fmt.Sprintf("%s (%s)", err.Error(), strings.Join(ids, ", ")),
			Err:      err,
		})
	}
	return issues
}

// checkAdmission reports whether owner may take one more claimed ticket
// carrying labels.
func checkAdmission(b *Board, owner string, labels []string, policy WIPPolicy) error {
	if policy.Limit <= 0 {
		return nil
	}
	counts := claimedCounts(b, policy.Scope)
	for _, bucket := range bucketsFor(owner, labels, policy.Scope) {
		count := len(counts[bucket])
		if count+1 > policy.Limit {
			return &WipError{Owner: owner, Label: bucket.label, Count: count, Limit: policy.Limit}
		}
	}
	return nil
}

// checkTracking enforces owner and branch fields for started work.
// Archived tickets are history and are not checked.
func checkTracking(e *Entry) []Issue {
	if e.Location == LocationArchive {
		return nil
	}
	var issues []Issue
	t := e.Ticket
	if t.Status == ticket.StatusClaimed && strings.TrimSpace(t.Owner) == "" {
		issues = append(issues, errorIssue(e, CodeOwner, fmt.Errorf("%w: %s", ErrMissingOwner, t.ID)))
	}
	if t.Status.RequiresBranch() && strings.TrimSpace(t.Branch) == "" {
		issues = append(issues, errorIssue(e, CodeBranch, fmt.Errorf("%w: %s is %s", ErrMissingBranch, t.ID, t.Status)))
	}
	return issues
}

func checkDoneDeps(b *Board) []Issue {
	var issues []Issue
	g := b.Graph()
	for _, e := range b.Entries() {
		if e.Location == LocationArchive {
			continue
		}
		switch e.Ticket.Status {
		case ticket.StatusClaimed, ticket.StatusNeedsReview, ticket.StatusDone:
		default:
			continue
		}
		if unmet := g.Unmet(e.Ticket.ID); len(unmet) > 0 {
			err := fmt.Errorf("%w: %s is %s but %s not done", ErrDepsNotDoneForStatus, e.Ticket.ID, e.Ticket.Status, strings.Join(unmet, ", "))
			issues = append(issues, errorIssue(e, CodeDependenciesDone, err))
		}
	}
	return issues
}

// checkTicket runs the checks that concern one ticket alone. Mutations run
// it against the ticket they are about to write.
func checkTicket(e *Entry, types []string, force bool) error {
	var errs []error
	errs = append(errs, ticket.Validate(e.Ticket, types)...)
	if !force {
		for _, issue := range checkTracking(e) {
			errs = append(errs, issue.Err)
		}
	}
	return errors.Join(errs...)
}
