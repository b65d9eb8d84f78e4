package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

// UnownedLabel stands in for an empty owner in per-owner counts.
const UnownedLabel = "<unowned>"

// OwnerCount is the number of claimed tickets held by one owner.
type OwnerCount struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// Stats summarizes a board.
type Stats struct {
	ByStatus  map[ticket.Status]int  `json:"by_status"`
	ByOwner   []OwnerCount           `json:"claimed_by_owner"`
	Invalid   int                    `json:"invalid"`
	Locations map[board.Location]int `json:"locations"`
}

// Compute counts tickets by status and location, and claimed tickets by
// owner. Owners are sorted by count, most first, then by name.
func Compute(b *board.Board) Stats {
	s := Stats{
		ByStatus:  make(map[ticket.Status]int),
		Locations: make(map[board.Location]int),
		Invalid:   len(b.Errors),
	}
	owners := make(map[string]int)
	for _, e := range b.Entries() {
		t := e.Ticket
		s.ByStatus[t.Status]++
		s.Locations[e.Location]++
		if t.Status == ticket.StatusClaimed {
			owners[cmp.Or(t.Owner, UnownedLabel)]++
		}
	}
	for owner, count := range owners {
		s.ByOwner = append(s.ByOwner, OwnerCount{Owner: owner, Count: count})
	}
	slices.SortFunc(s.ByOwner, func(a, b OwnerCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Owner, b.Owner))
	})
	return s
}

// Write prints the stats in the plain text layout used by mt stats.
func (s Stats) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Status counts:"); err != nil {
		return err
	}
	for _, status := range ticket.ValidStatuses() {
		if _, err := fmt.Fprintf(w, "  %-12s %d\n", status, s.ByStatus[status]); err != nil {
			return err
		}
	}
	if len(s.ByOwner) > 0 {
		if _, err := fmt.Fprintln(w, "\nClaimed by owner:"); err != nil {
			return err
		}
		for _, oc := range s.ByOwner {
			if _, err := fmt.Fprintf(w, "  %-20s %d\n", oc.Owner, oc.Count); err != nil {
				return err
			}
		}
	}
	if s.Invalid > 0 {
		if _, err := fmt.Fprintf(w, "\nInvalid files: %d\n", s.Invalid); err != nil {
			return err
		}
	}
	return nil
}
