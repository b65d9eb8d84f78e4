// Package board loads every ticket file of a repository into memory and
// implements the operations that span more than one ticket: the dependency
// graph, ID allocation, validation, picking, archiving, and the Store that
// performs mutations.
//
// A Board is rebuilt from disk on every invocation. Nothing is cached
// between runs.
package board

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/amonks/muontickets/ticket"
)

// Location is the directory a ticket file was loaded from.
type Location string

const (
	LocationActive  Location = "active"
	LocationBacklog Location = "backlog"
	LocationArchive Location = "archive"
)

// Locations returns every location in scan order.
func Locations() []Location {
	return []Location{LocationActive, LocationBacklog, LocationArchive}
}

// IsValid returns true if the location is a known value.
func (l Location) IsValid() bool {
	return slices.Contains(Locations(), l)
}

const (
	// CounterFile holds the last allocated ticket number.
	CounterFile = "last_ticket_id"

	// TemplateFile holds the defaults for new tickets.
	TemplateFile = "ticket.template"

	lockFile = ".mt.lock"
)

// Layout maps locations to directories below the tickets directory.
type Layout struct {
	Dir string
}

// LocationDir returns the directory holding tickets in loc.
func (l Layout) LocationDir(loc Location) string {
	switch loc {
	case LocationBacklog:
		return filepath.Join(l.Dir, "backlog")
	case LocationArchive:
		return filepath.Join(l.Dir, "archive")
	default:
		return l.Dir
	}
}

// TicketPath returns the path of the file for id in loc.
func (l Layout) TicketPath(loc Location, id string) string {
	return filepath.Join(l.LocationDir(loc), ticket.Filename(id))
}

func (l Layout) CounterPath() string  { return filepath.Join(l.Dir, CounterFile) }
func (l Layout) TemplatePath() string { return filepath.Join(l.Dir, TemplateFile) }
func (l Layout) LockPath() string     { return filepath.Join(l.Dir, lockFile) }

// Entry is a parsed ticket together with where it lives.
type Entry struct {
	Ticket   *ticket.Ticket
	Location Location
	Path     string
}

// ID returns the ticket ID.
func (e *Entry) ID() string {
	return e.Ticket.ID
}

// LoadError records a ticket file that could not be read or parsed.
type LoadError struct {
	Path     string
	Location Location
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Board is every ticket of a repository keyed by ID.
type Board struct {
	Layout Layout

	// Errors lists files that failed to load, in scan order.
	Errors []*LoadError

	// Duplicates maps an ID carried by more than one file to all of those
	// paths. The first path in scan order is the one kept in the board.
	Duplicates map[string][]string

	entries map[string]*Entry
	ids     []string
	maxID   int
	graph   *Graph
}

// Load scans the active, backlog, and archive directories and parses every
// ticket file concurrently. Parse failures are recorded in Board.Errors
// rather than returned.
func Load(ctx context.Context, layout Layout) (*Board, error) {
	info, err := os.Stat(layout.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, layout.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat tickets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotInitialized, layout.Dir)
	}

	type file struct {
		path string
		loc  Location
	}
	var files []file
	maxID := 0
	for _, loc := range Locations() {
		names, err := ticketFilenames(layout.LocationDir(loc))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			files = append(files, file{path: filepath.Join(layout.LocationDir(loc), name), loc: loc})
			if id, ok := ticket.IDFromFilename(name); ok {
				if n, err := ticket.IDNumber(id); err == nil && n > maxID {
					maxID = n
				}
			}
		}
	}

	parsed := make([]*ticket.Ticket, len(files))
	failed := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0) * 2)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := ticket.ParseFile(f.path)
			if err != nil {
				failed[i] = err
				return nil
			}
			parsed[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Board{
		Layout:     layout,
		Duplicates: make(map[string][]string),
		entries:    make(map[string]*Entry, len(files)),
		maxID:      maxID,
	}
	for i, f := range files {
		if failed[i] != nil {
			b.Errors = append(b.Errors, &LoadError{Path: f.path, Location: f.loc, Err: failed[i]})
			continue
		}
		b.add(&Entry{Ticket: parsed[i], Location: f.loc, Path: f.path})
	}
	for id, paths := range b.Duplicates {
		first := b.entries[id].Path
		b.Duplicates[id] = append([]string{first}, paths...)
	}
	return b, nil
}

// New builds a board from entries that are already in memory.
func New(layout Layout, entries ...*Entry) *Board {
	b := &Board{
		Layout:     layout,
		Duplicates: make(map[string][]string),
		entries:    make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		b.add(e)
	}
	for id, paths := range b.Duplicates {
		b.Duplicates[id] = append([]string{b.entries[id].Path}, paths...)
	}
	return b
}

func (b *Board) add(e *Entry) {
	id := e.Ticket.ID
	if _, exists := b.entries[id]; exists {
		b.Duplicates[id] = append(b.Duplicates[id], e.Path)
		return
	}
	b.entries[id] = e
	i, _ := slices.BinarySearchFunc(b.ids, id, ticket.CompareIDs)
	b.ids = slices.Insert(b.ids, i, id)
	if n, err := ticket.IDNumber(id); err == nil && n > b.maxID {
		b.maxID = n
	}
	b.graph = nil
}

func ticketFilenames(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if _, ok := ticket.IDFromFilename(de.Name()); ok {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the entry for id.
func (b *Board) Get(id string) (*Entry, bool) {
	e, ok := b.entries[id]
	return e, ok
}

// Lookup resolves a user-supplied ID (T-000123, t-000123, 123) to an entry.
func (b *Board) Lookup(arg string) (*Entry, error) {
	id, err := ticket.NormalizeID(arg)
	if err != nil {
		return nil, err
	}
	e, ok := b.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	return e, nil
}

// Entries returns every entry ordered by ID.
func (b *Board) Entries() []*Entry {
	out := make([]*Entry, 0, len(b.ids))
	for _, id := range b.ids {
		out = append(out, b.entries[id])
	}
	return out
}

// In returns the entries stored in loc, ordered by ID.
func (b *Board) In(loc Location) []*Entry {
	var out []*Entry
	for _, id := range b.ids {
		if e := b.entries[id]; e.Location == loc {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of distinct ticket IDs.
func (b *Board) Len() int {
	return len(b.ids)
}

// MaxID returns the highest ticket number seen in any file name or
// frontmatter, including files that failed to parse.
func (b *Board) MaxID() int {
	return b.maxID
}

// Misnamed returns entries whose file name does not match their ID.
func (b *Board) Misnamed() []*Entry {
	var out []*Entry
	for _, e := range b.Entries() {
		if filepath.Base(e.Path) != ticket.Filename(e.Ticket.ID) {
			out = append(out, e)
		}
	}
	return out
}

// DuplicateIDs returns the duplicated IDs in order.
func (b *Board) DuplicateIDs() []string {
	ids := make([]string, 0, len(b.Duplicates))
	for id := range b.Duplicates {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, ticket.CompareIDs)
	return ids
}

// Graph returns the dependency graph of the board.
func (b *Board) Graph() *Graph {
	if b.graph == nil {
		b.graph = newGraph(b)
	}
	return b.graph
}

// String summarizes the board for debug logs.
func (b *Board) String() string {
	counts := make(map[Location]int)
	for _, e := range b.entries {
		counts[e.Location]++
	}
	parts := make([]string, 0, 4)
	for _, loc := range Locations() {
		parts = append(parts, fmt.Sprintf("%s=%d", loc, counts[loc]))
	}
	parts = append(parts, fmt.Sprintf("errors=%d", len(b.Errors)))
	return strings.Join(parts, " ")
}
