package main

import (
	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print ticket counts by status and owner",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	b, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	return report.Compute(b).Write(cmd.OutOrStdout())
}
