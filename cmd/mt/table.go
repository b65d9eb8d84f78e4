package main

import (
	"strings"
	"time"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/ui"
)

// formatTicketTable renders listed tickets as a table.
func formatTicketTable(items []board.ListItem, highlight func(string) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "PRI", "TYPE", "EFF", "OWNER", "AGE", "TITLE", "LABELS"}, len(items))

	for _, item := range items {
		t := item.Ticket
		builder.AddRow([]string{
			highlight(t.ID),
			ui.FormatStatus(item.Status),
			string(t.Priority),
			t.Type,
			string(t.Effort),
			orDash(t.Owner),
			ui.FormatAge(t.Created, now),
			ui.TruncateTableCell(t.Title),
			strings.Join(t.Labels, ","),
		})
	}

	return builder.String()
}
