package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testBoard struct {
	t      *testing.T
	root   string
	layout board.Layout
}

func newTestBoard(t *testing.T) *testBoard {
	t.Helper()
	root := t.TempDir()
	layout := board.Layout{Dir: filepath.Join(root, "tickets")}
	for _, loc := range board.Locations() {
		if err := os.MkdirAll(layout.LocationDir(loc), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	return &testBoard{t: t, root: root, layout: layout}
}

func (tb *testBoard) add(loc board.Location, n int, title string, mutate ...func(*ticket.Ticket)) {
	tb.t.Helper()
	id := ticket.FormatID(n)
	tk := ticket.New(id, title, testNow.Add(time.Duration(n)*time.Minute))
	for _, fn := range mutate {
		fn(tk)
	}
	data, err := ticket.Serialize(tk)
	if err != nil {
		tb.t.Fatalf("serialize: %v", err)
	}
	if err := os.WriteFile(tb.layout.TicketPath(loc, id), data, 0o644); err != nil {
		tb.t.Fatalf("write: %v", err)
	}
}

func (tb *testBoard) remove(loc board.Location, n int) {
	tb.t.Helper()
	if err := os.Remove(tb.layout.TicketPath(loc, ticket.FormatID(n))); err != nil {
		tb.t.Fatalf("remove: %v", err)
	}
}

func (tb *testBoard) load() *board.Board {
	tb.t.Helper()
	b, err := board.Load(context.Background(), tb.layout)
	if err != nil {
		tb.t.Fatalf("load: %v", err)
	}
	return b
}

func done(tk *ticket.Ticket) {
	tk.Status = ticket.StatusDone
	tk.Branch = "bug/" + tk.ID
}

func claimedBy(owner string) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) {
		tk.Status = ticket.StatusClaimed
		tk.Owner = owner
		tk.Branch = "bug/" + tk.ID
	}
}

func dependsOn(ns ...int) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) {
		for _, n := range ns {
			tk.DependsOn = append(tk.DependsOn, ticket.FormatID(n))
		}
	}
}

func withBody(body string) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) { tk.Body = body }
}

func labeled(labels ...string) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) { tk.Labels = append(tk.Labels, labels...) }
}
