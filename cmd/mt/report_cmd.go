package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/listflags"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Maintain and query the SQLite report database",
	Long: `Update the report database from the ticket files and query it.

The database lives at .mt/report.db by default (config [report] path). It
is updated incrementally on every run and may be deleted at any time;
--rebuild starts from an empty database.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportSummary bool
	reportSearch  string
	reportLimit   int
	reportRebuild bool
	reportJSON    bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "Print counts by status, priority and owner")
	reportCmd.Flags().StringVar(&reportSearch, "search", "", "Find tickets whose ID, title, body or progress log contains this text")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "Maximum number of search results (0 for all)")
	reportCmd.Flags().BoolVar(&reportRebuild, "rebuild", false, "Rebuild the database from scratch")
	listflags.AddJSONFlag(reportCmd, &reportJSON)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	db, err := report.Open(a.cfg.ReportPath(a.root), a.log)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if reportRebuild {
		if err := db.Reset(ctx); err != nil {
			return err
		}
	}
	built, err := db.Build(ctx, b, a.root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case cmd.Flags().Changed("search"):
		results, err := db.Search(ctx, reportSearch, reportLimit)
		if err != nil {
			return err
		}
		if reportJSON {
			if results == nil {
				results = []report.SearchResult{}
			}
			return encodeJSON(out, results)
		}
		printSearchResults(out, results)
	case reportSummary:
		sum, err := db.Summary(ctx)
		if err != nil {
			return err
		}
		if reportJSON {
			return encodeJSON(out, sum)
		}
		printSummary(out, sum)
	default:
		if reportJSON {
			return encodeJSON(out, built)
		}
		fmt.Fprintf(out, "report %s: %d inserted, %d updated, %d removed, %d unchanged\n",
			a.rel(db.Path()), built.Inserted, built.Updated, built.Removed, built.Unchanged)
	}
	return nil
}

func printSearchResults(w io.Writer, results []report.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No tickets found.")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			ui.HighlightID(r.ID),
			r.Status,
			r.Location,
			ui.TruncateTableCell(r.Title),
			strings.Join(r.Labels, ","),
		})
	}
	fmt.Fprint(w, ui.FormatTable([]string{"ID", "STATUS", "LOCATION", "TITLE", "LABELS"}, rows))
}

func printSummary(w io.Writer, sum report.Summary) {
	fmt.Fprintf(w, "Total: %d\n", sum.Total)
	for _, group := range []struct {
		name   string
		counts []report.Count
	}{
		{"By status", sum.ByStatus},
		{"By priority", sum.ByPriority},
		{"By owner", sum.ByOwner},
	} {
		if len(group.counts) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", group.name)
		for _, c := range group.counts {
			fmt.Fprintf(w, "  %-20s %d\n", c.Key, c.Count)
		}
	}
}
