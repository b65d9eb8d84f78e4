package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tickets directory, template and an example ticket",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.store.Init(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.CreatedDir {
		fmt.Fprintf(out, "created %s\n", a.rel(result.Dir))
	} else {
		fmt.Fprintf(out, "tickets dir exists: %s\n", a.rel(result.Dir))
	}
	if result.CreatedTemplate {
		fmt.Fprintf(out, "created %s\n", a.rel(a.store.Layout().TemplatePath()))
	}
	if result.Example != nil {
		fmt.Fprintf(out, "created example ticket %s\n", ui.HighlightID(result.Example.ID()))
	}
	return nil
}
