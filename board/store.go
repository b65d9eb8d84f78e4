package board

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	internalstrings "github.com/amonks/muontickets/internal/strings"
	"github.com/amonks/muontickets/ticket"
)

// DefaultBranchPrefix starts the branch name generated by Claim.
const DefaultBranchPrefix = "bug/"

// DefaultTicketsDir is the tickets directory relative to the repository root.
const DefaultTicketsDir = "tickets"

// Options configures a Store.
type Options struct {
	// Types is the allowed ticket type list; empty means ticket.DefaultTypes.
	Types []string

	WIP     WIPPolicy
	Weights Weights

	// BranchPrefix is prepended to generated branch names. Empty means
	// DefaultBranchPrefix.
	BranchPrefix string

	EnforceDoneDeps bool

	// Logger receives debug records for mutations and warnings for
	// forced overrides. Nil discards them.
	Logger *zap.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Store performs every operation that reads or writes ticket files. Each
// call loads a fresh board and writes at most one ticket file.
type Store struct {
	layout Layout
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

// NewStore returns a store for the tickets directory dir.
func NewStore(dir string, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.BranchPrefix == "" {
		opts.BranchPrefix = DefaultBranchPrefix
	}
	return &Store{
		layout: Layout{Dir: dir},
		opts:   opts,
		log:    opts.Logger,
		now:    opts.Now,
	}
}

// Layout returns the directory layout of the store.
func (s *Store) Layout() Layout {
	return s.layout
}

// Options returns the options the store was created with, defaults applied.
func (s *Store) Options() Options {
	return s.opts
}

// Load reads the board from disk.
func (s *Store) Load(ctx context.Context) (*Board, error) {
	b, err := Load(ctx, s.layout)
	if err != nil {
		return nil, err
	}
	s.log.Debug("loaded board", zap.Stringer("board", b))
	return b, nil
}

// allocator never hands out a number at or below b.MaxID, which also covers
// IDs that only appear in frontmatter.
func (s *Store) allocator(b *Board) Allocator {
	return Allocator{Layout: s.layout, Logger: s.log, Floor: b.MaxID()}
}

// InitResult reports what Init created.
type InitResult struct {
	Dir             string
	CreatedDir      bool
	CreatedTemplate bool
	Example         *Entry
}

// ExampleTitle is the title of the ticket created by Init in an empty repository.
const ExampleTitle = "Example: replace this ticket"

// Init creates the directory layout and the template file. In a repository
// without tickets it also creates an example ticket. Existing files are
// never overwritten.
func (s *Store) Init(ctx context.Context) (InitResult, error) {
	result := InitResult{Dir: s.layout.Dir}
	if _, err := os.Stat(s.layout.Dir); errors.Is(err, fs.ErrNotExist) {
		result.CreatedDir = true
	}
	for _, loc := range Locations() {
		if err := os.MkdirAll(s.layout.LocationDir(loc), 0o755); err != nil {
			return result, fmt.Errorf("create %s dir: %w", loc, err)
		}
	}

	if _, err := os.Stat(s.layout.TemplatePath()); errors.Is(err, fs.ErrNotExist) {
		if err := writeFile(s.layout.TemplatePath(), []byte(ticket.DefaultTemplate)); err != nil {
			return result, err
		}
		result.CreatedTemplate = true
	}

	b, err := s.Load(ctx)
	if err != nil {
		return result, err
	}
	if b.Len() > 0 || len(b.Errors) > 0 {
		return result, nil
	}

	now := s.now()
	entry, err := s.create(b, func(id string) (*ticket.Ticket, error) {
		t := ticket.New(id, ExampleTitle, now)
		t.Priority = ticket.PriorityP2
		t.Type = "chore"
		t.Effort = ticket.EffortXS
		t.Labels = []string{"example"}
		t.Body = ticket.ExampleBody
		return t, nil
	}, LocationActive)
	if err != nil {
		return result, err
	}
	result.Example = entry
	return result, nil
}

// CreateOptions overrides template defaults for a new ticket.
type CreateOptions struct {
	Priority  ticket.Priority
	Type      string
	Effort    ticket.Effort
	Labels    []string
	Tags      []string
	DependsOn []string
	Goal      string

	// Body replaces the rendered template body when non-empty.
	Body string

	// Backlog creates the ticket in the backlog instead of the active directory.
	Backlog bool
}

// Template returns the template from the tickets directory, or the
// built-in default when the file does not exist.
func (s *Store) Template() (*ticket.Template, error) {
	data, err := os.ReadFile(s.layout.TemplatePath())
	if errors.Is(err, fs.ErrNotExist) {
		return ticket.MustDefaultTemplate(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ticket.ParseTemplate(data)
}

// Create allocates an ID and writes a new ready ticket.
func (s *Store) Create(ctx context.Context, title string, opts CreateOptions) (*Entry, error) {
	title = internalstrings.NormalizeWhitespace(title)
	if err := ticket.ValidateTitle(title); err != nil {
		return nil, err
	}
	tpl, err := s.Template()
	if err != nil {
		return nil, err
	}

	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(opts.DependsOn))
	for _, arg := range opts.DependsOn {
		dep, err := ticket.NormalizeID(arg)
		if err != nil {
			return nil, err
		}
		if _, ok := b.Get(dep); !ok {
			return nil, &ReferenceError{Reference: Reference{From: "new ticket", To: dep}}
		}
		deps = append(deps, dep)
	}

	priority := cmp.Or(opts.Priority, tpl.Priority)
	effort := cmp.Or(opts.Effort, tpl.Effort)
	typ := cmp.Or(opts.Type, tpl.Type)
	labels := internalstrings.DedupeNonEmpty(append(slices.Clone(tpl.Labels), opts.Labels...))
	tags := internalstrings.DedupeNonEmpty(append(slices.Clone(tpl.Tags), opts.Tags...))

	now := s.now()
	loc := LocationActive
	if opts.Backlog {
		loc = LocationBacklog
	}

	return s.create(b, func(id string) (*ticket.Ticket, error) {
		t := ticket.New(id, title, now)
		t.Priority = priority
		t.Effort = effort
		t.Type = typ
		t.Labels = labels
		t.Tags = tags
		t.DependsOn = internalstrings.DedupeNonEmpty(deps)
		t.Body = opts.Body
		if t.Body == "" {
			body, err := tpl.Render(ticket.TemplateData{ID: id, Title: title, Goal: strings.TrimSpace(opts.Goal)})
			if err != nil {
				return nil, err
			}
			t.Body = body
		}
		return t, nil
	}, loc)
}

// create allocates the next ID and writes the ticket built by build.
func (s *Store) create(b *Board, build func(id string) (*ticket.Ticket, error), loc Location) (*Entry, error) {
	var entry *Entry
	_, err := s.allocator(b).Allocate(func(id string) error {
		t, err := build(id)
		if err != nil {
			return err
		}
		for _, other := range Locations() {
			if _, err := os.Stat(s.layout.TicketPath(other, id)); err == nil {
				return fmt.Errorf("%w: %s already exists in %s", ErrDuplicateID, id, other)
			}
		}
		if existing, ok := b.Get(id); ok {
			return fmt.Errorf("%w: %s is already used by %s", ErrDuplicateID, id, existing.Path)
		}
		e := &Entry{Ticket: t, Location: loc, Path: s.layout.TicketPath(loc, id)}
		if err := checkTicket(e, s.opts.Types, false); err != nil {
			return err
		}
		if err := s.write(e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("created ticket", zap.String("id", entry.ID()), zap.String("location", string(loc)))
	return entry, nil
}

// Show returns the ticket with the given ID from any location.
func (s *Store) Show(ctx context.Context, id string) (*Entry, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Lookup(id)
}

// ListFilter selects tickets for List. Zero values match everything.
type ListFilter struct {
	// Locations defaults to the active directory.
	Locations []Location

	// Statuses matches the effective status, so blocked selects ready
	// tickets with unmet dependencies.
	Statuses []ticket.Status

	// Owner selects by owner when non-nil. An empty string selects
	// unowned tickets.
	Owner *string

	// Labels must all be present.
	Labels []string

	Priority ticket.Priority
	Type     string
}

// ListItem is a listed ticket with its computed status.
type ListItem struct {
	*Entry
	Status ticket.Status
	Ready  bool
}

// List returns the matching tickets ordered by ID.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]ListItem, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ListBoard(b, filter), nil
}

// ListBoard applies filter to an already loaded board.
func ListBoard(b *Board, filter ListFilter) []ListItem {
	locations := filter.Locations
	if len(locations) == 0 {
		locations = []Location{LocationActive}
	}
	g := b.Graph()

	var items []ListItem
	for _, e := range b.Entries() {
		t := e.Ticket
		if !slices.Contains(locations, e.Location) {
			continue
		}
		status := g.EffectiveStatus(t.ID)
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, status) {
			continue
		}
		if filter.Owner != nil && t.Owner != *filter.Owner {
			continue
		}
		if !t.HasAllLabels(filter.Labels) {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		items = append(items, ListItem{Entry: e, Status: status, Ready: g.Ready(t.ID)})
	}
	return items
}

// ClaimOptions configures Claim.
type ClaimOptions struct {
	Owner string

	// Branch overrides the generated branch name.
	Branch string

	// IgnoreDeps claims a ticket whose dependencies are not done.
	IgnoreDeps bool

	// Force bypasses the state machine, owner reservations, and the WIP
	// limit. The override is logged and recorded in the progress log.
	Force bool
}

// DefaultBranch returns the branch name generated for t.
func DefaultBranch(prefix string, t *ticket.Ticket) string {
	return prefix + strings.ToLower(t.ID) + "-" + internalstrings.Slug(t.Title, 40, "ticket")
}

// Claim moves a ready ticket to claimed and records its owner and branch.
// Claiming a ticket the owner already holds returns it unchanged.
func (s *Store) Claim(ctx context.Context, id string, opts ClaimOptions) (*Entry, error) {
	owner := internalstrings.NormalizeWhitespace(opts.Owner)
	if owner == "" {
		return nil, ErrOwnerRequired
	}

	return s.mutate(ctx, id, opts.Force, func(b *Board, e *Entry, t *ticket.Ticket) (bool, error) {
		if err := requireActive(e); err != nil {
			return false, err
		}
		from := t.Status
		if from == ticket.StatusClaimed && t.Owner == owner {
			return false, nil
		}
		if !opts.Force {
			if _, err := checkTransition(b, Transition{ID: t.ID, From: from, To: ticket.StatusClaimed}); err != nil {
				return false, err
			}
			if err := s.checkClaim(b, t, owner, t.Labels, t.DependsOn, opts.IgnoreDeps); err != nil {
				return false, err
			}
		} else if !opts.IgnoreDeps {
			if err := checkDepsDone(b, t.ID, t.DependsOn); err != nil {
				return false, err
			}
		}

		previousOwner := t.Owner
		t.Status = ticket.StatusClaimed
		t.Owner = owner
		switch {
		case strings.TrimSpace(opts.Branch) != "":
			t.Branch = strings.TrimSpace(opts.Branch)
		case t.Branch == "":
			t.Branch = DefaultBranch(s.opts.BranchPrefix, t)
		}

		if opts.Force {
			if from == ticket.StatusClaimed {
				s.logOverride(t, owner, fmt.Sprintf("forced claim from %s", previousOwner),
					zap.String("previous_owner", previousOwner))
			} else if !ticket.CanTransition(from, ticket.StatusClaimed) {
				s.logOverride(t, owner, fmt.Sprintf("forced transition %s -> %s", from, ticket.StatusClaimed))
			}
		}
		return true, nil
	})
}

// checkClaim runs the preconditions for owner taking t as claimed apart
// from the state machine: owner reservations, dependencies, and the WIP
// limit. labels and deps are those the claimed ticket will carry.
func (s *Store) checkClaim(b *Board, t *ticket.Ticket, owner string, labels, deps []string, ignoreDeps bool) error {
	if t.Status == ticket.StatusClaimed && t.Owner != owner {
		return fmt.Errorf("%w: %s is claimed by %s", ErrOwnerConflict, t.ID, t.Owner)
	}
	if t.Status == ticket.StatusReady && t.Owner != "" && t.Owner != owner {
		return fmt.Errorf("%w: %s is reserved for %s", ErrOwnerConflict, t.ID, t.Owner)
	}
	if !ignoreDeps {
		if err := checkDepsDone(b, t.ID, deps); err != nil {
			return err
		}
	}
	return checkAdmission(b, owner, labels, s.opts.WIP)
}

func checkDepsDone(b *Board, id string, deps []string) error {
	if unmet := b.Graph().unmet(deps); len(unmet) > 0 {
		return fmt.Errorf("%w: %s waits on %s", ErrDependenciesNotDone, id, strings.Join(unmet, ", "))
	}
	return nil
}

// Pick ranks the active board and returns the best candidate.
func (s *Store) Pick(ctx context.Context, opts PickOptions) (Candidate, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return Candidate{}, err
	}
	return Pick(b, s.pickOptions(opts))
}

// Rank returns every pick candidate, best first.
func (s *Store) Rank(ctx context.Context, opts PickOptions) ([]Candidate, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(b, s.pickOptions(opts)), nil
}

func (s *Store) pickOptions(opts PickOptions) PickOptions {
	if opts.Weights == (Weights{}) {
		opts.Weights = s.opts.Weights
	}
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	return opts
}

// PickAndClaim picks the best candidate for claim.Owner and claims it.
func (s *Store) PickAndClaim(ctx context.Context, pick PickOptions, claim ClaimOptions) (*Entry, Candidate, error) {
	if pick.Owner == "" {
		pick.Owner = claim.Owner
	}
	claim.IgnoreDeps = claim.IgnoreDeps || pick.IgnoreDeps
	c, err := s.Pick(ctx, pick)
	if err != nil {
		return nil, Candidate{}, err
	}
	entry, err := s.Claim(ctx, c.Entry.ID(), claim)
	if err != nil {
		return nil, c, err
	}
	return entry, c, nil
}

// StatusOptions configures SetStatus.
type StatusOptions struct {
	// Actor is recorded as the author of override comments.
	Actor string

	// Force bypasses the state machine.
	Force bool

	// ClearOwner clears owner and branch when moving to ready.
	ClearOwner bool
}

// SetStatus moves a ticket to status. Requesting the current status is a no-op.
func (s *Store) SetStatus(ctx context.Context, id string, status ticket.Status, opts StatusOptions) (*Entry, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w %q", ticket.ErrInvalidStatus, status)
	}
	return s.mutate(ctx, id, opts.Force, func(b *Board, e *Entry, t *ticket.Ticket) (bool, error) {
		if e.Location == LocationArchive {
			return false, fmt.Errorf("%w: %s", ErrAlreadyArchived, t.ID)
		}
		from := t.Status
		clear := opts.ClearOwner && status == ticket.StatusReady && (t.Owner != "" || t.Branch != "")
		if from == status && !clear {
			return false, nil
		}
		if _, err := checkTransition(b, Transition{ID: t.ID, From: from, To: status, Force: opts.Force}); err != nil {
			return false, err
		}
		if status == ticket.StatusClaimed && from != status && !opts.Force {
			if err := checkAdmission(b, t.Owner, t.Labels, s.opts.WIP); err != nil {
				return false, err
			}
		}

		t.Status = status
		if clear {
			t.Owner = ""
			t.Branch = ""
		}
		if opts.Force && !ticket.CanTransition(from, status) && from != status {
			s.logOverride(t, opts.Actor, fmt.Sprintf("forced transition %s -> %s", from, status))
		}
		return true, nil
	})
}

// Done moves a ticket in review to done.
func (s *Store) Done(ctx context.Context, id string, opts StatusOptions) (*Entry, error) {
	return s.SetStatus(ctx, id, ticket.StatusDone, opts)
}

// Comment appends a progress log entry.
func (s *Store) Comment(ctx context.Context, id, author, text string) (*Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	return s.mutate(ctx, id, false, func(_ *Board, e *Entry, t *ticket.Ticket) (bool, error) {
		if e.Location == LocationArchive {
			return false, fmt.Errorf("%w: %s", ErrAlreadyArchived, t.ID)
		}
		t.AddComment(s.now(), author, text)
		return true, nil
	})
}

// AddDependency adds dep to the depends_on list of id. Edges that would
// close a cycle are rejected.
func (s *Store) AddDependency(ctx context.Context, id, dep string) (*Entry, error) {
	depID, err := ticket.NormalizeID(dep)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, false, func(b *Board, e *Entry, t *ticket.Ticket) (bool, error) {
		if e.Location == LocationArchive {
			return false, fmt.Errorf("%w: %s", ErrAlreadyArchived, t.ID)
		}
		if depID == t.ID {
			return false, fmt.Errorf("%w: %s", ticket.ErrSelfDependency, t.ID)
		}
		if slices.Contains(t.DependsOn, depID) {
			return false, fmt.Errorf("%w: %s", ticket.ErrDuplicateDependency, depID)
		}
		if _, ok := b.Get(depID); !ok {
			return false, &ReferenceError{Reference: Reference{From: t.ID, To: depID}}
		}
		if cycle := b.Graph().WouldCycle(t.ID, depID); cycle != nil {
			return false, &CycleError{Cycle: cycle}
		}
		t.DependsOn = append(t.DependsOn, depID)
		return true, nil
	})
}

// Promote moves a backlog ticket into the active directory.
func (s *Store) Promote(ctx context.Context, id string) (*Entry, error) {
	return s.move(ctx, id, LocationBacklog, LocationActive)
}

// Demote moves a ready active ticket into the backlog.
func (s *Store) Demote(ctx context.Context, id string) (*Entry, error) {
	return s.move(ctx, id, LocationActive, LocationBacklog)
}

func (s *Store) move(ctx context.Context, id string, from, to Location) (*Entry, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, err := b.Lookup(id)
	if err != nil {
		return nil, err
	}
	if e.Location != from {
		if from == LocationBacklog {
			return nil, fmt.Errorf("%w: %s is in %s", ErrNotInBacklog, e.ID(), e.Location)
		}
		return nil, fmt.Errorf("%w: %s is in %s", ErrNotActive, e.ID(), e.Location)
	}
	if to == LocationBacklog && e.Ticket.Status != ticket.StatusReady {
		return nil, fmt.Errorf("%w: only ready tickets can move to the backlog, %s is %s",
			ticket.ErrInvalidTransition, e.ID(), e.Ticket.Status)
	}

	t := e.Ticket.Clone()
	t.Touch(s.now())
	moved := &Entry{Ticket: t, Location: to, Path: s.layout.TicketPath(to, t.ID)}
	if err := s.relocate(e, moved); err != nil {
		return nil, err
	}
	s.log.Debug("moved ticket", zap.String("id", t.ID), zap.String("from", string(from)), zap.String("to", string(to)))
	return moved, nil
}

// ValidateOptions adjusts one validation run.
type ValidateOptions struct {
	EnforceDoneDeps bool

	// MaxClaimedPerOwner overrides the configured WIP limit when positive.
	MaxClaimedPerOwner int

	Transitions []Transition
}

// Validate loads the board and runs every check.
func (s *Store) Validate(ctx context.Context, opts ValidateOptions) (Report, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	return Validate(b, s.validateConfig(opts)), nil
}

func (s *Store) validateConfig(opts ValidateOptions) ValidateConfig {
	wip := s.opts.WIP
	if opts.MaxClaimedPerOwner > 0 {
		wip.Limit = opts.MaxClaimedPerOwner
	}
	return ValidateConfig{
		Types:           s.opts.Types,
		Transitions:     opts.Transitions,
		WIP:             wip,
		EnforceDoneDeps: s.opts.EnforceDoneDeps || opts.EnforceDoneDeps,
	}
}

// Tree returns the dependency tree of id.
func (s *Store) Tree(ctx context.Context, id string) (*TreeNode, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, err := b.Lookup(id)
	if err != nil {
		return nil, err
	}
	return b.Graph().Tree(e.ID()), nil
}

// Replace writes edited file content over the ticket. The ID must not
// change, status changes follow the state machine unless force is set,
// and new dependencies must resolve without closing a cycle. An edit that
// claims the ticket passes the same checks as Claim.
func (s *Store) Replace(ctx context.Context, id string, content []byte, force bool) (*Entry, error) {
	edited, err := ticket.Parse(content)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, force, func(b *Board, e *Entry, t *ticket.Ticket) (bool, error) {
		if edited.ID != t.ID {
			return false, fmt.Errorf("%w: %s -> %s", ErrIDChanged, t.ID, edited.ID)
		}
		if _, err := checkTransition(b, Transition{ID: t.ID, From: t.Status, To: edited.Status, Force: force}); err != nil {
			return false, err
		}
		takesClaim := edited.Status == ticket.StatusClaimed &&
			(t.Status != ticket.StatusClaimed || edited.Owner != t.Owner)
		if takesClaim && !force {
			if err := s.checkClaim(b, t, edited.Owner, edited.Labels, edited.DependsOn, false); err != nil {
				return false, err
			}
		}
		g := b.Graph()
		for _, dep := range edited.DependsOn {
			if slices.Contains(t.DependsOn, dep) || dep == t.ID {
				continue
			}
			if _, ok := b.Get(dep); !ok {
				return false, &ReferenceError{Reference: Reference{From: t.ID, To: dep}}
			}
			if cycle := g.WouldCycle(t.ID, dep); cycle != nil {
				return false, &CycleError{Cycle: cycle}
			}
		}
		if edited.Status != t.Status && force && !ticket.CanTransition(t.Status, edited.Status) {
			s.logOverride(edited, "", fmt.Sprintf("forced transition %s -> %s", t.Status, edited.Status))
		}
		*t = *edited
		return true, nil
	})
}

// mutate loads the board, applies fn to a copy of the ticket, checks the
// result, and writes it. fn returns false to leave the ticket unchanged.
// Nothing is written when fn or the checks fail.
func (s *Store) mutate(ctx context.Context, id string, force bool, fn func(*Board, *Entry, *ticket.Ticket) (bool, error)) (*Entry, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, err := b.Lookup(id)
	if err != nil {
		return nil, err
	}

	t := e.Ticket.Clone()
	changed, err := fn(b, e, t)
	if err != nil {
		return nil, err
	}
	if !changed {
		return e, nil
	}
	t.Touch(s.now())

	updated := &Entry{Ticket: t, Location: e.Location, Path: e.Path}
	if err := checkTicket(updated, s.opts.Types, force); err != nil {
		return nil, err
	}
	if err := s.write(updated); err != nil {
		return nil, err
	}
	s.log.Debug("updated ticket",
		zap.String("id", t.ID),
		zap.String("status", string(t.Status)),
		zap.String("owner", t.Owner))
	return updated, nil
}

// logOverride records a forced change in the log and in the ticket's
// progress log.
func (s *Store) logOverride(t *ticket.Ticket, actor, message string, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("id", t.ID),
		zap.String("actor", actor),
		zap.Bool("override", true),
	}, fields...)
	s.log.Warn(message, fields...)
	t.AddComment(s.now(), actor, message)
}

func requireActive(e *Entry) error {
	switch e.Location {
	case LocationActive:
		return nil
	case LocationArchive:
		return fmt.Errorf("%w: %s", ErrAlreadyArchived, e.ID())
	default:
		return fmt.Errorf("%w: %s is in the %s (promote it first)", ErrNotActive, e.ID(), e.Location)
	}
}

func (s *Store) write(e *Entry) error {
	data, err := ticket.Serialize(e.Ticket)
	if err != nil {
		return err
	}
	return writeFile(e.Path, data)
}

// relocate writes moved and then removes the file of e. The target must
// not exist yet.
func (s *Store) relocate(e, moved *Entry) error {
	if _, err := os.Stat(moved.Path); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrDuplicateID, moved.Path)
	}
	if err := os.MkdirAll(s.layout.LocationDir(moved.Location), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", moved.Location, err)
	}
	if err := s.write(moved); err != nil {
		return err
	}
	if err := os.Remove(e.Path); err != nil {
		return fmt.Errorf("remove %s: %w", e.Path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
