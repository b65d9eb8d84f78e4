package main

import (
	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/report"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the dependency graph",
	Args:  cobra.NoArgs,
	RunE:  runGraph,
}

var (
	graphMermaid  bool
	graphOpenOnly bool
)

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().BoolVar(&graphMermaid, "mermaid", false, "Output a mermaid diagram")
	graphCmd.Flags().BoolVar(&graphOpenOnly, "open-only", false, "Leave out done tickets")
}

func runGraph(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	return report.WriteGraph(cmd.OutOrStdout(), b, report.GraphOptions{
		Mermaid:  graphMermaid,
		OpenOnly: graphOpenOnly,
	})
}
