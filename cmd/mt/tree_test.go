package main

import (
	"strings"
	"testing"
	"time"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

func treeEntry(id, title string, status ticket.Status) *board.Entry {
	t := ticket.New(id, title, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	t.Status = status
	return &board.Entry{Ticket: t, Location: board.LocationActive}
}

func TestPrintDepTree(t *testing.T) {
	root := &board.TreeNode{
		ID:    "T-000003",
		Entry: treeEntry("T-000003", "Ship it", ticket.StatusReady),
		Children: []*board.TreeNode{
			{
				ID:    "T-000001",
				Entry: treeEntry("T-000001", "Design", ticket.StatusDone),
				Children: []*board.TreeNode{
					{ID: "T-000003", Entry: treeEntry("T-000003", "Ship it", ticket.StatusReady), Cycle: true},
				},
			},
			{ID: "T-000009"},
		},
	}

	var out strings.Builder
	printDepTree(&out, root, "", true, func(id string) string { return id })

	want := strings.Join([]string{
		"[ ] T-000003 Ship it",
		"    ├── [x] T-000001 Design",
		"    │   └── [ ] T-000003 Ship it (cycle)",
		"    └── [?] T-000009 (missing)",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}
