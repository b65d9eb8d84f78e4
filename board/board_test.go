package board

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amonks/muontickets/ticket"
)

func TestLoad_Locations(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 2)
	f.add(LocationBacklog, 10)
	f.add(LocationArchive, 1, done)
	f.writeRaw(filepath.Join(f.layout.Dir, "README.md"), "not a ticket")

	b := f.load()

	var got []string
	for _, e := range b.Entries() {
		got = append(got, e.ID()+"@"+string(e.Location))
	}
	want := []string{"T-000001@archive", "T-000002@active", "T-000010@backlog"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if b.MaxID() != 10 {
		t.Fatalf("MaxID = %d, want 10", b.MaxID())
	}
	if len(b.In(LocationActive)) != 1 {
		t.Fatalf("expected one active ticket")
	}
}

func TestLoad_KeepsParseErrors(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1)
	f.writeRaw(f.layout.TicketPath(LocationActive, "T-000002"), "no frontmatter here\n")

	b := f.load()
	if b.Len() != 1 {
		t.Fatalf("expected the valid ticket to load, got %d", b.Len())
	}
	if len(b.Errors) != 1 {
		t.Fatalf("expected one load error, got %v", b.Errors)
	}
	if !errors.Is(b.Errors[0], ticket.ErrSchema) {
		t.Fatalf("expected schema error, got %v", b.Errors[0])
	}
	if b.MaxID() != 2 {
		t.Fatalf("expected unparsable file names to count toward MaxID, got %d", b.MaxID())
	}
}

func TestLoad_DuplicateAndMisnamed(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1)
	dup := ticket.New("T-000001", "Copy", testNow)
	f.write(f.layout.TicketPath(LocationBacklog, "T-000001"), dup)
	misnamed := ticket.New("T-000005", "Wrong file", testNow)
	f.write(f.layout.TicketPath(LocationActive, "T-000004"), misnamed)

	b := f.load()

	if diff := cmp.Diff([]string{"T-000001"}, b.DuplicateIDs()); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
	paths := b.Duplicates["T-000001"]
	if len(paths) != 2 || paths[0] != f.layout.TicketPath(LocationActive, "T-000001") {
		t.Fatalf("expected active copy first, got %v", paths)
	}
	if got := b.Misnamed(); len(got) != 1 || got[0].ID() != "T-000005" {
		t.Fatalf("expected T-000005 to be misnamed, got %v", got)
	}
}

func TestLoad_NotInitialized(t *testing.T) {
	_, err := Load(context.Background(), Layout{Dir: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, f.layout); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBoardLookup(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 123)
	b := f.load()

	for _, arg := range []string{"T-000123", "t-000123", "123"} {
		e, err := b.Lookup(arg)
		if err != nil || e.ID() != "T-000123" {
			t.Fatalf("Lookup(%q) = %v, %v", arg, e, err)
		}
	}
	if _, err := b.Lookup("124"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}
