package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amonks/muontickets/ticket"
)

// Archive moves a done ticket into the archive directory. The only content
// change is the archived_at marker. Without force the ticket must be done
// and no ticket outside the archive may still depend on it.
func (s *Store) Archive(ctx context.Context, id string, force bool) (*Entry, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, err := b.Lookup(id)
	if err != nil {
		return nil, err
	}
	return s.archive(b, e, force)
}

func (s *Store) archive(b *Board, e *Entry, force bool) (*Entry, error) {
	t := e.Ticket
	if e.Location == LocationArchive {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyArchived, t.ID)
	}

	var overrides []string
	if t.Status != ticket.StatusDone {
		if !force {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotDone, t.ID, t.Status)
		}
		overrides = append(overrides, fmt.Sprintf("status %s", t.Status))
	}
	if dependents := b.Graph().ActiveDependents(t.ID); len(dependents) > 0 {
		if !force {
			return nil, &DependentsError{ID: t.ID, Dependents: dependents}
		}
		overrides = append(overrides, fmt.Sprintf("dependents %s", strings.Join(dependents, ", ")))
	}

	archived := t.Clone()
	archived.ArchivedAt = s.now().UTC().Truncate(time.Second)
	moved := &Entry{Ticket: archived, Location: LocationArchive, Path: s.layout.TicketPath(LocationArchive, t.ID)}
	if err := s.relocate(e, moved); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		s.log.Warn("forced archive",
			zap.String("id", t.ID),
			zap.Strings("ignored", overrides),
			zap.Bool("override", true))
	} else {
		s.log.Debug("archived ticket", zap.String("id", t.ID))
	}

	e.Ticket, e.Location, e.Path = moved.Ticket, moved.Location, moved.Path
	b.graph = nil
	return moved, nil
}

// SkippedArchive is a done ticket ArchiveDone left in place.
type SkippedArchive struct {
	ID  string
	Err error
}

// ArchiveResult lists what ArchiveDone did.
type ArchiveResult struct {
	Archived []*Entry
	Skipped  []SkippedArchive
}

// ArchiveDone archives every done ticket outside the archive that is safe
// to archive. Tickets that only other done tickets depend on are archived
// once those dependents are gone. The rest are reported as skipped.
func (s *Store) ArchiveDone(ctx context.Context) (ArchiveResult, error) {
	var result ArchiveResult
	b, err := s.Load(ctx)
	if err != nil {
		return result, err
	}

	pending := make(map[string]error)
	for progress := true; progress; {
		progress = false
		for _, e := range b.Entries() {
			if e.Location == LocationArchive || e.Ticket.Status != ticket.StatusDone {
				continue
			}
			moved, err := s.archive(b, e, false)
			if err != nil {
				var dependentsErr *DependentsError
				if !errors.As(err, &dependentsErr) {
					return result, err
				}
				pending[e.ID()] = err
				continue
			}
			delete(pending, e.ID())
			result.Archived = append(result.Archived, moved)
			progress = true
		}
	}

	for _, e := range b.Entries() {
		if err, ok := pending[e.ID()]; ok && e.Location != LocationArchive {
			result.Skipped = append(result.Skipped, SkippedArchive{ID: e.ID(), Err: err})
		}
	}
	return result, nil
}
