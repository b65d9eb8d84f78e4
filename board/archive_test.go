package board

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amonks/muontickets/ticket"
)

func TestArchive_MovesDoneTicket(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, done)
	original, err := os.ReadFile(f.layout.TicketPath(LocationActive, "T-000001"))
	if err != nil {
		t.Fatal(err)
	}
	s := f.store(Options{})

	e, err := s.Archive(t.Context(), "1", false)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if e.Location != LocationArchive {
		t.Fatalf("expected archive location, got %s", e.Location)
	}
	if _, err := os.Stat(f.layout.TicketPath(LocationActive, "T-000001")); !os.IsNotExist(err) {
		t.Fatalf("expected active file to be gone, got %v", err)
	}
	archived, err := os.ReadFile(e.Path)
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Replace(string(original), "branch: bug/T-000001\n", "branch: bug/T-000001\narchived_at: 2026-03-01T12:00:00Z\n", 1)
	if diff := cmp.Diff(want, string(archived)); diff != "" {
		t.Fatalf("archived content mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Archive(t.Context(), "1", false); !errors.Is(err, ErrAlreadyArchived) {
		t.Fatalf("expected ErrAlreadyArchived, got %v", err)
	}
}

func TestArchive_RequiresDone(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1)
	s := f.store(Options{})

	if _, err := s.Archive(t.Context(), "1", false); !errors.Is(err, ErrNotDone) {
		t.Fatalf("expected ErrNotDone, got %v", err)
	}
	if _, err := s.Archive(t.Context(), "1", true); err != nil {
		t.Fatalf("forced archive: %v", err)
	}
}

func TestArchive_SafetyScenario(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newFixture(t)
	f.add(LocationActive, 1, done)
	f.add(LocationActive, 2, dependsOn(1))
	f.add(LocationBacklog, 3, dependsOn(1))
	f.add(LocationArchive, 4, done, dependsOn(1))
	s := f.store(Options{Logger: zap.New(core)})

	before := f.snapshot()
	_, err := s.Archive(t.Context(), "1", false)
	var dependentsErr *DependentsError
	if !errors.As(err, &dependentsErr) || !errors.Is(err, ErrBlockedByDependents) {
		t.Fatalf("expected DependentsError, got %v", err)
	}
	if diff := cmp.Diff([]string{"T-000002", "T-000003"}, dependentsErr.Dependents); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, f.snapshot()); diff != "" {
		t.Fatalf("board changed (-before +after):\n%s", diff)
	}

	if _, err := s.Archive(t.Context(), "1", true); err != nil {
		t.Fatalf("forced archive: %v", err)
	}
	if logs.FilterField(zap.Bool("override", true)).Len() != 1 {
		t.Fatalf("expected the forced archive to be logged as an override")
	}

	r, err := s.Validate(t.Context(), ValidateOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !r.OK() {
		t.Fatalf("expected no errors after forced archive, got %v", r.Errors())
	}
	var warned []string
	for _, w := range r.Warnings() {
		if !errors.Is(w, ErrArchivedDependency) {
			t.Fatalf("unexpected warning %v", w)
		}
		warned = append(warned, w.TicketID)
	}
	if diff := cmp.Diff([]string{"T-000002", "T-000003"}, warned); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveDone(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, done)
	f.add(LocationActive, 2, done, dependsOn(1))
	f.add(LocationActive, 3, done)
	f.add(LocationActive, 4, dependsOn(3))
	f.add(LocationActive, 5)
	s := f.store(Options{})

	result, err := s.ArchiveDone(t.Context())
	if err != nil {
		t.Fatalf("archive done: %v", err)
	}

	var archived []string
	for _, e := range result.Archived {
		archived = append(archived, e.ID())
	}
	if diff := cmp.Diff([]string{"T-000002", "T-000001"}, archived); diff != "" {
		t.Fatalf("archived mismatch (-want +got):\n%s", diff)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].ID != "T-000003" || !errors.Is(result.Skipped[0].Err, ErrBlockedByDependents) {
		t.Fatalf("unexpected skipped %+v", result.Skipped)
	}

	b := f.load()
	for _, id := range []string{"T-000001", "T-000002"} {
		e, _ := b.Get(id)
		if e.Location != LocationArchive || !e.Ticket.IsArchived() {
			t.Fatalf("expected %s archived, got %s", id, e.Location)
		}
	}
	if e, _ := b.Get("T-000003"); e.Location != LocationActive {
		t.Fatalf("expected T-000003 to stay active")
	}
	if e, _ := b.Get("T-000005"); e.Ticket.Status != ticket.StatusReady || e.Location != LocationActive {
		t.Fatalf("expected T-000005 untouched")
	}
}
