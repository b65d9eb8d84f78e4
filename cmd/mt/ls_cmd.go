package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/listflags"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/report"
	"github.com/amonks/muontickets/ticket"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tickets",
	Long: `List tickets in ID order.

Only the active directory is listed unless --backlog, --archived or --all
is given. --status matches the computed status, so "blocked" selects
ready tickets whose dependencies are not done. --owner "" selects
unowned tickets.`,
	Args: cobra.NoArgs,
	RunE: runLs,
}

var (
	lsStatuses    []ticket.Status
	lsOwner       string
	lsLabels      []string
	lsPriority    ticket.Priority
	lsType        string
	lsAll         bool
	lsBacklog     bool
	lsArchived    bool
	lsShowInvalid bool
	lsJSON        bool
)

func init() {
	rootCmd.AddCommand(lsCmd)

	listflags.StatusesVar(lsCmd.Flags(), &lsStatuses, "status", "Filter by status (repeatable or comma-separated)")
	lsCmd.Flags().StringVar(&lsOwner, "owner", "", `Filter by owner ("" for unowned)`)
	listflags.AddLabelFlag(lsCmd, &lsLabels, "Require label (repeatable)")
	listflags.PriorityVar(lsCmd.Flags(), &lsPriority, "priority", "Filter by priority")
	lsCmd.Flags().StringVar(&lsType, "type", "", "Filter by type")
	listflags.AddAllFlag(lsCmd, &lsAll)
	lsCmd.Flags().BoolVar(&lsBacklog, "backlog", false, "List the backlog")
	lsCmd.Flags().BoolVar(&lsArchived, "archived", false, "List the archive")
	lsCmd.Flags().BoolVar(&lsShowInvalid, "show-invalid", false, "Also report ticket files that fail to parse")
	listflags.AddJSONFlag(lsCmd, &lsJSON)
}

func lsLocations() []board.Location {
	if lsAll {
		return board.Locations()
	}
	var locations []board.Location
	if lsBacklog {
		locations = append(locations, board.LocationBacklog)
	}
	if lsArchived {
		locations = append(locations, board.LocationArchive)
	}
	if len(locations) == 0 {
		locations = []board.Location{board.LocationActive}
	}
	return locations
}

func runLs(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	filter := board.ListFilter{
		Locations: lsLocations(),
		Statuses:  lsStatuses,
		Labels:    lsLabels,
		Priority:  lsPriority,
		Type:      lsType,
	}
	if cmd.Flags().Changed("owner") {
		owner := lsOwner
		filter.Owner = &owner
	}
	items := board.ListBoard(b, filter)

	out := cmd.OutOrStdout()
	if lsJSON {
		return encodeJSON(out, listRows(b, a.root, items))
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No tickets found.")
	} else {
		fmt.Fprint(out, formatTicketTable(items, ui.HighlightID, time.Now()))
	}

	if lsShowInvalid {
		for _, loadErr := range b.Errors {
			fmt.Fprintf(out, "invalid %s: %v\n", a.rel(loadErr.Path), loadErr.Err)
		}
	}
	return nil
}

// listRows returns the export rows of the listed tickets, in list order.
func listRows(b *board.Board, root string, items []board.ListItem) []report.Row {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID()
	}
	rows := []report.Row{}
	for _, row := range report.Rows(b, root) {
		if slices.Contains(ids, row.ID) {
			rows = append(rows, row)
		}
	}
	return rows
}
