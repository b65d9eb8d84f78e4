package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/ticket"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Help about any command",
	Args:  cobra.ArbitraryArgs,
	RunE:  runHelp,
}

var helpSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of ticket frontmatter",
	Args:  cobra.NoArgs,
	RunE:  runHelpSchema,
}

var helpTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the default ticket template",
	Args:  cobra.NoArgs,
	RunE:  runHelpTemplate,
}

func init() {
	rootCmd.SetHelpCommand(helpCmd)
	helpCmd.AddCommand(helpSchemaCmd, helpTemplateCmd)
}

func runHelp(cmd *cobra.Command, args []string) error {
	root := cmd.Root()
	if len(args) == 0 {
		return root.Help()
	}

	target, _, err := root.Find(args)
	if err != nil || target == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown help topic %q\n", strings.Join(args, " "))
		return root.Help()
	}

	return target.Help()
}

func runHelpSchema(cmd *cobra.Command, args []string) error {
	_, err := cmd.OutOrStdout().Write(ticket.SchemaJSON())
	return err
}

func runHelpTemplate(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), ticket.DefaultTemplate)
	return err
}
