package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/ui"
)

var claimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Claim a ready ticket",
	Long: `Claim a ready ticket: set status claimed, record the owner and a branch.

Claiming fails when dependencies are not done (override with --ignore-deps),
when the ticket is held by another owner, or when the owner is at the WIP
limit. --force bypasses everything except dependencies and records the
override in the progress log.`,
	Args: cobra.ExactArgs(1),
	RunE: runClaim,
}

var (
	claimOwner      string
	claimBranch     string
	claimIgnoreDeps bool
	claimForce      bool
)

func init() {
	rootCmd.AddCommand(claimCmd)

	addOwnerFlag(claimCmd, &claimOwner, "Owner claiming the ticket")
	claimCmd.Flags().StringVar(&claimBranch, "branch", "", "Branch name (default: generated from ID and title)")
	claimCmd.Flags().BoolVar(&claimIgnoreDeps, "ignore-deps", false, "Claim even if dependencies are not done")
	claimCmd.Flags().BoolVar(&claimForce, "force", false, "Override status, owner and WIP checks")
}

func runClaim(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	owner := ownerOrEnv(cmd, claimOwner)
	entry, err := a.store.Claim(cmd.Context(), args[0], board.ClaimOptions{
		Owner:      owner,
		Branch:     claimBranch,
		IgnoreDeps: claimIgnoreDeps,
		Force:      claimForce,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "claimed %s as %s (branch: %s)\n",
		ui.HighlightID(entry.ID()), entry.Ticket.Owner, entry.Ticket.Branch)
	return a.runHook("on-claim", a.cfg.Hooks.OnClaim, entry)
}
