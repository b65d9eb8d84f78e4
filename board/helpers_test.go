package board

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/muontickets/ticket"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	layout Layout
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	layout := Layout{Dir: filepath.Join(t.TempDir(), "tickets")}
	for _, loc := range Locations() {
		if err := os.MkdirAll(layout.LocationDir(loc), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	return &fixture{t: t, layout: layout}
}

// add writes a ticket numbered n to loc. The ticket is ready, unowned, and
// created n minutes after a fixed base time unless mutate changes it.
func (f *fixture) add(loc Location, n int, mutate ...func(*ticket.Ticket)) *ticket.Ticket {
	f.t.Helper()
	id := ticket.FormatID(n)
	tk := ticket.New(id, "Ticket "+id, testNow.Add(-24*time.Hour).Add(time.Duration(n)*time.Minute))
	for _, fn := range mutate {
		fn(tk)
	}
	f.write(f.layout.TicketPath(loc, id), tk)
	return tk
}

func (f *fixture) write(path string, tk *ticket.Ticket) {
	f.t.Helper()
	data, err := ticket.Serialize(tk)
	if err != nil {
		f.t.Fatalf("serialize %s: %v", tk.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.t.Fatalf("write %s: %v", path, err)
	}
}

func (f *fixture) writeRaw(path, content string) {
	f.t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("write %s: %v", path, err)
	}
}

func (f *fixture) load() *Board {
	f.t.Helper()
	b, err := Load(context.Background(), f.layout)
	if err != nil {
		f.t.Fatalf("load: %v", err)
	}
	return b
}

func (f *fixture) store(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return NewStore(f.layout.Dir, opts)
}

func (f *fixture) read(loc Location, n int) *ticket.Ticket {
	f.t.Helper()
	tk, err := ticket.ParseFile(f.layout.TicketPath(loc, ticket.FormatID(n)))
	if err != nil {
		f.t.Fatalf("parse: %v", err)
	}
	return tk
}

// snapshot returns the content of every file under the tickets directory.
func (f *fixture) snapshot() map[string]string {
	f.t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(f.layout.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Base(path) == lockFile {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[path] = string(data)
		return nil
	})
	if err != nil {
		f.t.Fatalf("walk: %v", err)
	}
	return files
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

func labeled(labels ...string) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) {
		tk.Labels = append(tk.Labels, labels...)
	}
}

func withPriority(p ticket.Priority) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) { tk.Priority = p }
}

func withEffort(e ticket.Effort) func(*ticket.Ticket) {
	return func(tk *ticket.Ticket) { tk.Effort = e }
}

func issueCodes(r Report) []Code {
	var codes []Code
	for _, issue := range r.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}
