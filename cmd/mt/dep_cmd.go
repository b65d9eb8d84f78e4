package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/ui"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage ticket dependencies",
}

var depAddCmd = &cobra.Command{
	Use:   "add <id> <depends-on-id>",
	Short: "Make a ticket depend on another",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepAdd,
}

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the dependency tree of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(depCmd, treeCmd)
	depCmd.AddCommand(depAddCmd)
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	entry, err := a.store.AddDependency(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	dep := entry.Ticket.DependsOn[len(entry.Ticket.DependsOn)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s\n", ui.HighlightID(entry.ID()), ui.HighlightID(dep))
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	node, err := a.store.Tree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printDepTree(cmd.OutOrStdout(), node, "", true, ui.HighlightID)
	return nil
}
