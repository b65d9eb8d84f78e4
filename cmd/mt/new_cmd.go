package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/editor"
	"github.com/amonks/muontickets/internal/listflags"
	"github.com/amonks/muontickets/ticket"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new ticket",
	Long: `Create a new ticket from the template in the tickets directory.

The ticket is created in the active directory with status ready. Use
--backlog to park it in the backlog instead, and --edit to open it in
$EDITOR after creation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

var (
	newPriority  ticket.Priority
	newType      string
	newEffort    ticket.Effort
	newLabels    []string
	newTags      []string
	newDependsOn []string
	newGoal      string
	newBacklog   bool
	newEdit      bool
)

func init() {
	rootCmd.AddCommand(newCmd)

	listflags.PriorityVar(newCmd.Flags(), &newPriority, "priority", "Priority (p0, p1, p2, p3)")
	newCmd.Flags().StringVar(&newType, "type", "", "Ticket type")
	listflags.EffortVar(newCmd.Flags(), &newEffort, "effort", "Effort (xs, s, m, l, xl)")
	listflags.AddLabelFlag(newCmd, &newLabels, "Label (repeatable)")
	newCmd.Flags().StringArrayVar(&newTags, "tag", nil, "Tag (repeatable)")
	newCmd.Flags().StringArrayVar(&newDependsOn, "depends-on", nil, "ID of a ticket this one depends on (repeatable)")
	newCmd.Flags().StringVar(&newGoal, "goal", "", "Goal sentence for the ticket body")
	newCmd.Flags().BoolVar(&newBacklog, "backlog", false, "Create the ticket in the backlog")
	newCmd.Flags().BoolVarP(&newEdit, "edit", "e", false, "Open $EDITOR after creating the ticket")
	addDependencyFlagAliases(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	entry, err := a.store.Create(cmd.Context(), strings.Join(args, " "), board.CreateOptions{
		Priority:  newPriority,
		Type:      newType,
		Effort:    newEffort,
		Labels:    newLabels,
		Tags:      newTags,
		DependsOn: newDependsOn,
		Goal:      newGoal,
		Backlog:   newBacklog,
	})
	if err != nil {
		return err
	}

	if newEdit {
		edited, _, err := editor.EditTicket(cmd.Context(), a.store, entry.ID(), false)
		if err != nil {
			return err
		}
		entry = edited
	}

	fmt.Fprintln(cmd.OutOrStdout(), a.rel(entry.Path))
	return nil
}
