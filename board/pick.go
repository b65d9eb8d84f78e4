package board

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/amonks/muontickets/internal/age"
	"github.com/amonks/muontickets/ticket"
)

// Weights configures the pick score. Weights that pass Check keep priority
// dominant, then smaller effort, then age.
type Weights struct {
	Priority   float64 `json:"priority"`
	Effort     float64 `json:"effort"`
	Age        float64 `json:"age"`
	AgeCapDays float64 `json:"age_cap_days"`
}

// DefaultWeights returns the weights used without configuration.
func DefaultWeights() Weights {
	return Weights{Priority: 1000, Effort: 100, Age: 0, AgeCapDays: 365}
}

// Check reports weights under which a higher score would not mean an
// earlier place in the pick order. One priority step must outweigh the
// whole effort range plus the largest age bonus, and one effort step must
// outweigh the largest age bonus.
func (w Weights) Check() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"priority", w.Priority},
		{"effort", w.Effort},
		{"age", w.Age},
		{"age cap", w.AgeCapDays},
	} {
		if v.value < 0 {
			return fmt.Errorf("%w: %s weight %g is negative", ErrInvalidWeights, v.name, v.value)
		}
	}
	ageBonus := w.Age * w.AgeCapDays
	if w.Effort <= ageBonus {
		return fmt.Errorf("%w: effort weight %g must exceed age weight x age cap (%g)", ErrInvalidWeights, w.Effort, ageBonus)
	}
	if effortRange := 4 * w.Effort; w.Priority <= effortRange+ageBonus {
		return fmt.Errorf("%w: priority weight %g must exceed 4 x effort weight + age weight x age cap (%g)",
			ErrInvalidWeights, w.Priority, effortRange+ageBonus)
	}
	return nil
}

// PickOptions filters and scores pick candidates.
type PickOptions struct {
	// Owner is the requesting owner. Ready tickets pre-assigned to another
	// owner are skipped.
	Owner string

	// Labels must all be present on a candidate.
	Labels []string

	// AvoidLabels must all be absent from a candidate.
	AvoidLabels []string

	Priority ticket.Priority
	Type     string

	// IgnoreDeps admits ready tickets with unmet dependencies.
	IgnoreDeps bool

	Weights Weights

	// Now is the reference time for age scoring.
	Now time.Time
}

// Candidate is a scored pick candidate.
type Candidate struct {
	Entry *Entry `json:"-"`

	Score         float64 `json:"score"`
	PriorityScore float64 `json:"priority_score"`
	EffortScore   float64 `json:"effort_score"`
	AgeScore      float64 `json:"age_score"`
	AgeDays       float64 `json:"age_days"`
}

// Explain describes how the score was computed.
func (c Candidate) Explain() string {
	return fmt.Sprintf("score %.2f = priority %.2f + effort %.2f + age %.2f (%.1f days)",
		c.Score, c.PriorityScore, c.EffortScore, c.AgeScore, c.AgeDays)
}

// Score computes the pick score of t.
func Score(t *ticket.Ticket, w Weights, now time.Time) Candidate {
	c := Candidate{
		PriorityScore: w.Priority * float64(3-max(t.Priority.Rank(), 0)),
		EffortScore:   w.Effort * float64(4-max(t.Effort.Rank(), 0)),
	}
	if w.Age != 0 {
		c.AgeDays = age.Days(t.Created, now)
		c.AgeScore = w.Age * min(c.AgeDays, w.AgeCapDays)
	}
	c.Score = c.PriorityScore + c.EffortScore + c.AgeScore
	return c
}

// Rank returns every candidate ordered best first: score descending, then
// created ascending, then ID. The same board and options always produce
// the same order.
func Rank(b *Board, opts PickOptions) []Candidate {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	g := b.Graph()

	var candidates []Candidate
	for _, e := range b.In(LocationActive) {
		if !eligible(g, e, opts) {
			continue
		}
		c := Score(e.Ticket, opts.Weights, now)
		c.Entry = e
		candidates = append(candidates, c)
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.Entry.Ticket.Created.Compare(b.Entry.Ticket.Created); c != 0 {
			return c
		}
		return ticket.CompareIDs(a.Entry.Ticket.ID, b.Entry.Ticket.ID)
	})
	return candidates
}

func eligible(g *Graph, e *Entry, opts PickOptions) bool {
	t := e.Ticket
	if t.Status != ticket.StatusReady {
		return false
	}
	if t.Owner != "" && t.Owner != opts.Owner {
		return false
	}
	if !t.HasAllLabels(opts.Labels) || t.HasAnyLabel(opts.AvoidLabels) {
		return false
	}
	if opts.Priority != "" && t.Priority != opts.Priority {
		return false
	}
	if opts.Type != "" && t.Type != opts.Type {
		return false
	}
	if !opts.IgnoreDeps && !g.Ready(t.ID) {
		return false
	}
	return true
}

// Pick returns the best candidate or ErrNoneAvailable. It never mutates
// the board.
func Pick(b *Board, opts PickOptions) (Candidate, error) {
	candidates := Rank(b, opts)
	if len(candidates) == 0 {
		return Candidate{}, ErrNoneAvailable
	}
	return candidates[0], nil
}
