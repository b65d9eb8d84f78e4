package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/ui"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [<id>]",
	Short: "Move done tickets into the archive",
	Long: `Move a done ticket into the archive directory.

Archiving is refused while tickets outside the archive still depend on the
ticket; --force archives anyway and logs the override. --all-done archives
every done ticket that is safe to archive and lists the rest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

var (
	archiveForce   bool
	archiveAllDone bool
)

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().BoolVar(&archiveForce, "force", false, "Archive even when the ticket is not done or still required")
	archiveCmd.Flags().BoolVar(&archiveAllDone, "all-done", false, "Archive every done ticket")
	archiveCmd.MarkFlagsMutuallyExclusive("force", "all-done")
}

func runArchive(cmd *cobra.Command, args []string) error {
	if archiveAllDone == (len(args) == 1) {
		return errors.New("give either a ticket ID or --all-done")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !archiveAllDone {
		entry, err := a.store.Archive(cmd.Context(), args[0], archiveForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "archived %s -> %s\n", ui.HighlightID(entry.ID()), a.rel(entry.Path))
		return nil
	}

	result, err := a.store.ArchiveDone(cmd.Context())
	if err != nil {
		return err
	}
	for _, e := range result.Archived {
		fmt.Fprintf(out, "archived %s -> %s\n", ui.HighlightID(e.ID()), a.rel(e.Path))
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(out, "skipped %s: %v\n", ui.HighlightID(skipped.ID), skipped.Err)
	}
	if len(result.Archived) == 0 && len(result.Skipped) == 0 {
		fmt.Fprintln(out, "No done tickets to archive.")
	}
	return nil
}
