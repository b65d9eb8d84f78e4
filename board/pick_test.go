package board

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/amonks/muontickets/ticket"
)

func rankedIDs(candidates []Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Entry.ID()
	}
	return ids
}

func TestPick_ReadyDependencyScenario(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, done)
	f.add(LocationActive, 2, dependsOn(1))

	c, err := Pick(f.load(), PickOptions{Owner: "agent-1", Weights: DefaultWeights(), Now: testNow})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if c.Entry.ID() != "T-000002" {
		t.Fatalf("picked %s, want T-000002", c.Entry.ID())
	}
}

func TestRank_Ordering(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, withPriority(ticket.PriorityP2), withEffort(ticket.EffortXS))
	f.add(LocationActive, 2, withPriority(ticket.PriorityP0), withEffort(ticket.EffortXL))
	f.add(LocationActive, 3, withPriority(ticket.PriorityP1), withEffort(ticket.EffortM))
	f.add(LocationActive, 4, withPriority(ticket.PriorityP1), withEffort(ticket.EffortS))
	f.add(LocationActive, 5, withPriority(ticket.PriorityP1), withEffort(ticket.EffortS))
	f.add(LocationActive, 6, withPriority(ticket.PriorityP1), withEffort(ticket.EffortS), func(tk *ticket.Ticket) {
		tk.Created = tk.Created.Add(-time.Hour)
	})

	got := rankedIDs(Rank(f.load(), PickOptions{Weights: DefaultWeights(), Now: testNow}))
	want := []string{"T-000002", "T-000006", "T-000004", "T-000005", "T-000003", "T-000001"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_TieBreaksOnID(t *testing.T) {
	f := newFixture(t)
	same := func(tk *ticket.Ticket) { tk.Created = testNow.Add(-time.Hour) }
	f.add(LocationActive, 1000000, same)
	f.add(LocationActive, 999999, same)

	got := rankedIDs(Rank(f.load(), PickOptions{Weights: DefaultWeights(), Now: testNow}))
	if diff := cmp.Diff([]string{"T-999999", "T-1000000"}, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestPick_Deterministic(t *testing.T) {
	f := newFixture(t)
	for n := 1; n <= 20; n++ {
		p := ticket.ValidPriorities()[n%4]
		e := ticket.ValidEfforts()[n%5]
		f.add(LocationActive, n, withPriority(p), withEffort(e))
	}
	opts := PickOptions{Owner: "agent-1", Weights: Weights{Priority: 1000, Effort: 100, Age: 1, AgeCapDays: 30}, Now: testNow}

	first, err := Pick(f.load(), opts)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	for range 10 {
		again, err := Pick(f.load(), opts)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if again.Entry.ID() != first.Entry.ID() {
			t.Fatalf("pick changed from %s to %s", first.Entry.ID(), again.Entry.ID())
		}
	}
}

func TestPick_Filters(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, labeled("api", "urgent"))
	f.add(LocationActive, 2, labeled("api"))
	f.add(LocationActive, 3, labeled("ui"), func(tk *ticket.Ticket) { tk.Type = "docs" })
	f.add(LocationActive, 4, func(tk *ticket.Ticket) { tk.Owner = "agent-2" })
	f.add(LocationActive, 5, dependsOn(1))
	f.add(LocationActive, 6, claimedBy("agent-1"))
	f.add(LocationBacklog, 7)
	f.add(LocationActive, 8, withPriority(ticket.PriorityP3))
	b := f.load()

	tests := []struct {
		name string
		opts PickOptions
		want []string
	}{
		{name: "all", opts: PickOptions{Owner: "agent-1"}, want: []string{"T-000001", "T-000002", "T-000003", "T-000008"}},
		{name: "labels", opts: PickOptions{Owner: "agent-1", Labels: []string{"api"}}, want: []string{"T-000001", "T-000002"}},
		{name: "avoid labels", opts: PickOptions{Owner: "agent-1", Labels: []string{"api"}, AvoidLabels: []string{"urgent"}}, want: []string{"T-000002"}},
		{name: "type", opts: PickOptions{Owner: "agent-1", Type: "docs"}, want: []string{"T-000003"}},
		{name: "priority", opts: PickOptions{Owner: "agent-1", Priority: ticket.PriorityP3}, want: []string{"T-000008"}},
		{name: "reserved for owner", opts: PickOptions{Owner: "agent-2"}, want: []string{"T-000001", "T-000002", "T-000003", "T-000004", "T-000008"}},
		{name: "ignore deps", opts: PickOptions{Owner: "agent-1", IgnoreDeps: true}, want: []string{"T-000001", "T-000002", "T-000003", "T-000005", "T-000008"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Weights = DefaultWeights()
			tt.opts.Now = testNow
			got := rankedIDs(Rank(b, tt.opts))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPick_NoneAvailable(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, dependsOn(2))
	f.add(LocationActive, 2, claimedBy("agent-1"))

	_, err := Pick(f.load(), PickOptions{Owner: "agent-2", Weights: DefaultWeights()})
	if !errors.Is(err, ErrNoneAvailable) {
		t.Fatalf("expected ErrNoneAvailable, got %v", err)
	}
}

func TestScore(t *testing.T) {
	tk := ticket.New("T-000001", "x", testNow.AddDate(0, 0, -500))
	tk.Priority = ticket.PriorityP0
	tk.Effort = ticket.EffortXS

	c := Score(tk, Weights{Priority: 1000, Effort: 100, Age: 2, AgeCapDays: 365}, testNow)
	if c.PriorityScore != 3000 || c.EffortScore != 400 || c.AgeScore != 730 {
		t.Fatalf("unexpected breakdown %+v", c)
	}
	if c.Score != 4130 {
		t.Fatalf("score = %v, want 4130", c.Score)
	}
}

func TestWeightsCheck(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		ok      bool
	}{
		{"defaults", DefaultWeights(), true},
		{"small age bonus", Weights{Priority: 1000, Effort: 100, Age: 0.25, AgeCapDays: 365}, true},
		{"age outweighs effort", Weights{Priority: 1000, Effort: 100, Age: 1, AgeCapDays: 365}, false},
		{"effort outweighs priority", Weights{Priority: 1000, Effort: 1000, AgeCapDays: 365}, false},
		{"effort range equals priority", Weights{Priority: 400, Effort: 100}, false},
		{"zero effort", Weights{Priority: 1000}, false},
		{"negative", Weights{Priority: 1000, Effort: 100, Age: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Check()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidWeights) {
				t.Fatalf("expected ErrInvalidWeights, got %v", err)
			}
		})
	}
}

func TestRank_AgeNeverOutranksEffort(t *testing.T) {
	f := newFixture(t)
	f.add(LocationActive, 1, withEffort(ticket.EffortL), func(tk *ticket.Ticket) {
		tk.Created = testNow.AddDate(0, 0, -360)
		tk.Updated = tk.Created
	})
	f.add(LocationActive, 2, withEffort(ticket.EffortXS))

	w := Weights{Priority: 1000, Effort: 100, Age: 0.25, AgeCapDays: 365}
	if err := w.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
	got := rankedIDs(Rank(f.load(), PickOptions{Weights: w, Now: testNow}))
	if diff := cmp.Diff([]string{"T-000002", "T-000001"}, got); diff != "" {
		t.Fatalf("rank mismatch (-want +got):\n%s", diff)
	}
}
