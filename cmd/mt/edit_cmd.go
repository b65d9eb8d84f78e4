package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/editor"
	"github.com/amonks/muontickets/internal/ui"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a ticket file in $EDITOR",
	Long: `Open the ticket file in $VISUAL or $EDITOR and save the result.

The edited file must still parse, keep its ID, follow the state machine
(unless --force) and not introduce missing or cyclic dependencies.
Nothing is written when a check fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var editForce bool

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().BoolVar(&editForce, "force", false, "Allow status changes outside the state machine")
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	entry, changed, err := editor.EditTicket(cmd.Context(), a.store, args[0], editForce)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", ui.HighlightID(entry.ID()))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", ui.HighlightID(entry.ID()))
	return nil
}
