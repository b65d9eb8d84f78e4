package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/ticketenv"
	"github.com/amonks/muontickets/internal/ui"
)

var commentCmd = &cobra.Command{
	Use:   "comment <id> <text>...",
	Short: "Append an entry to a ticket's progress log",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runComment,
}

var commentAuthor string

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().StringVar(&commentAuthor, "author", "", "Comment author (default: $"+ticketenv.OwnerEnvVar+")")
}

func runComment(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	author := commentAuthor
	if !cmd.Flags().Changed("author") {
		author = ticketenv.Owner()
	}

	entry, err := a.store.Comment(cmd.Context(), args[0], author, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "commented on %s\n", ui.HighlightID(entry.ID()))
	return nil
}
