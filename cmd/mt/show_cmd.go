package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/markdown"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/ticket"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	showJSON bool
	showRaw  bool
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the ticket file unchanged")
	showCmd.MarkFlagsMutuallyExclusive("json", "raw")
}

// ticketDetail is the JSON form of show.
type ticketDetail struct {
	*ticket.Ticket
	EffectiveStatus ticket.Status `json:"effective_status"`
	Location        string        `json:"location"`
	Path            string        `json:"path"`
	Ready           bool          `json:"ready"`
	Unmet           []string      `json:"unmet_dependencies"`
	Dependents      []string      `json:"dependents"`
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}
	e, err := b.Lookup(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showRaw {
		data, err := os.ReadFile(e.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Path, err)
		}
		_, err = out.Write(data)
		return err
	}

	g := b.Graph()
	detail := ticketDetail{
		Ticket:          e.Ticket,
		EffectiveStatus: g.EffectiveStatus(e.ID()),
		Location:        string(e.Location),
		Path:            a.rel(e.Path),
		Ready:           g.Ready(e.ID()),
		Unmet:           nonNilStrings(g.Unmet(e.ID())),
		Dependents:      nonNilStrings(g.Dependents(e.ID())),
	}
	if showJSON {
		return encodeJSON(out, detail)
	}

	printTicketDetail(out, b, detail, time.Now())
	return nil
}

const ticketDetailLineWidth = 80

// printTicketDetail prints a ticket with its metadata, body and progress log.
func printTicketDetail(w io.Writer, b *board.Board, d ticketDetail, now time.Time) {
	t := d.Ticket
	fmt.Fprintf(w, "ID:       %s\n", ui.HighlightID(t.ID))
	fmt.Fprintf(w, "Title:    %s\n", t.Title)
	status := ui.FormatStatus(d.EffectiveStatus)
	if d.EffectiveStatus != t.Status {
		status += fmt.Sprintf(" (%s)", t.Status)
	}
	fmt.Fprintf(w, "Status:   %s\n", status)
	fmt.Fprintf(w, "Priority: %s\n", t.Priority)
	fmt.Fprintf(w, "Type:     %s\n", t.Type)
	fmt.Fprintf(w, "Effort:   %s\n", t.Effort)
	fmt.Fprintf(w, "Owner:    %s\n", orDash(t.Owner))
	fmt.Fprintf(w, "Branch:   %s\n", orDash(t.Branch))
	fmt.Fprintf(w, "Labels:   %s\n", orDash(strings.Join(t.Labels, ", ")))
	fmt.Fprintf(w, "Tags:     %s\n", orDash(strings.Join(t.Tags, ", ")))
	fmt.Fprintf(w, "Location: %s (%s)\n", d.Location, d.Path)
	fmt.Fprintf(w, "Created:  %s (%s)\n", t.Created.Format(time.DateTime), ui.FormatAgeAgo(t.Created, now))
	fmt.Fprintf(w, "Updated:  %s (%s)\n", t.Updated.Format(time.DateTime), ui.FormatAgeAgo(t.Updated, now))
	if t.IsArchived() {
		fmt.Fprintf(w, "Archived: %s\n", t.ArchivedAt.Format(time.DateTime))
	}
	if lifetime, ok := ui.FormatLifetime(t.Created, t.ArchivedAt, now); ok {
		fmt.Fprintf(w, "Lifetime: %s\n", lifetime)
	}

	if len(t.DependsOn) > 0 {
		fmt.Fprintln(w, "\nDepends on:")
		for _, dep := range t.DependsOn {
			fmt.Fprintf(w, "  %s\n", dependencyLine(b, dep))
		}
	}
	if len(d.Dependents) > 0 {
		fmt.Fprintln(w, "\nRequired by:")
		for _, id := range d.Dependents {
			fmt.Fprintf(w, "  %s\n", dependencyLine(b, id))
		}
	}

	if body := markdown.SafeRender(ticketDetailLineWidth, 2, []byte(t.Body)); len(body) > 0 {
		fmt.Fprintf(w, "\n%s\n", body)
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(w, "\nProgress Log:")
		for _, c := range t.Comments {
			fmt.Fprintln(w, ui.Wrap(c.String(), ticketDetailLineWidth, 2))
		}
	}
}

func dependencyLine(b *board.Board, id string) string {
	e, ok := b.Get(id)
	if !ok {
		return fmt.Sprintf("%s (missing)", id)
	}
	return fmt.Sprintf("%s [%s] %s", ui.HighlightID(id), ui.FormatStatus(e.Ticket.Status), e.Ticket.Title)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
