package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/ui"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Move a backlog ticket into the active directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromote,
}

var demoteCmd = &cobra.Command{
	Use:   "demote <id>",
	Short: "Move a ready ticket into the backlog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemote,
}

func init() {
	rootCmd.AddCommand(promoteCmd, demoteCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	return runMove(cmd, args[0], "promoted", (*board.Store).Promote)
}

func runDemote(cmd *cobra.Command, args []string) error {
	return runMove(cmd, args[0], "demoted", (*board.Store).Demote)
}

func runMove(cmd *cobra.Command, id, verb string, move func(*board.Store, context.Context, string) (*board.Entry, error)) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	entry, err := move(a.store, cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", verb, ui.HighlightID(entry.ID()), entry.Location)
	return nil
}
