package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

func setupStore(t *testing.T) *board.Store {
	t.Helper()
	s := board.NewStore(filepath.Join(t.TempDir(), "tickets"), board.Options{
		Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if _, err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

// useEditor installs a shell script as $EDITOR.
func useEditor(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write editor: %v", err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", path)
}

func TestEditTicket_SavesChanges(t *testing.T) {
	s := setupStore(t)
	useEditor(t, `sed -i.bak 's/^title: .*/title: Edited title/' "$1"`)

	e, changed, err := EditTicket(context.Background(), s, "1", false)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}
	if e.Ticket.Title != "Edited title" {
		t.Fatalf("title = %q", e.Ticket.Title)
	}

	stored, err := ticket.ParseFile(e.Path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if stored.Title != "Edited title" {
		t.Fatalf("stored title = %q", stored.Title)
	}
}

func TestEditTicket_Unchanged(t *testing.T) {
	s := setupStore(t)
	useEditor(t, "exit 0")

	before, err := s.Show(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(before.Path)
	if err != nil {
		t.Fatal(err)
	}

	_, changed, err := EditTicket(context.Background(), s, "1", false)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if changed {
		t.Fatal("expected no change")
	}
	after, err := os.Stat(before.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Fatal("expected file to be left alone")
	}
}

func TestEditTicket_RejectsInvalidTransition(t *testing.T) {
	s := setupStore(t)
	useEditor(t, `sed -i.bak 's/^status: .*/status: done/' "$1"`)

	_, _, err := EditTicket(context.Background(), s, "1", false)
	if !errors.Is(err, ticket.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	e, err := s.Show(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if e.Ticket.Status != ticket.StatusReady {
		t.Fatalf("expected ticket to stay ready, got %s", e.Ticket.Status)
	}
}

func TestEditTicket_EditorFails(t *testing.T) {
	s := setupStore(t)
	useEditor(t, "exit 3")

	if _, _, err := EditTicket(context.Background(), s, "1", false); err == nil {
		t.Fatal("expected editor failure")
	}
}

var _ TicketStore = (*board.Store)(nil)
