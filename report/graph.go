package report

import (
	"fmt"
	"io"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

// Edge points from a dependency to the ticket that needs it.
type Edge struct {
	From string
	To   string
}

// GraphOptions configures Edges and WriteGraph.
type GraphOptions struct {
	Mermaid bool
	// OpenOnly drops edges into done tickets.
	OpenOnly bool
}

// Edges lists dependency edges in ticket ID order, then depends_on order.
func Edges(b *board.Board, openOnly bool) []Edge {
	var edges []Edge
	for _, e := range b.Entries() {
		t := e.Ticket
		if openOnly && t.Status == ticket.StatusDone {
			continue
		}
		for _, dep := range t.DependsOn {
			edges = append(edges, Edge{From: dep, To: t.ID})
		}
	}
	return edges
}

// WriteGraph renders the dependency edges as "dep -> id" lines, or as a
// fenced mermaid flowchart.
func WriteGraph(w io.Writer, b *board.Board, opts GraphOptions) error {
	edges := Edges(b, opts.OpenOnly)
	if !opts.Mermaid {
		for _, edge := range edges {
			if _, err := fmt.Fprintf(w, "%s -> %s\n", edge.From, edge.To); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := io.WriteString(w, "```mermaid\ngraph TD\n"); err != nil {
		return err
	}
	for _, edge := range edges {
		if _, err := fmt.Fprintf(w, "  %s --> %s\n", edge.From, edge.To); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "```\n")
	return err
}
