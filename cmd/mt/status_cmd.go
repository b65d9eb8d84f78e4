package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/ticketenv"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/internal/validation"
	"github.com/amonks/muontickets/ticket"
)

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Move a ticket to another status",
	Long: `Move a ticket to another status following the state machine:

  ready -> claimed -> needs_review -> done
  needs_review -> claimed

blocked is computed from dependencies and is never set directly. --force
applies any transition and records the override in the progress log.`,
	Args: cobra.ExactArgs(2),
	RunE: runSetStatus,
}

var (
	setStatusForce      bool
	setStatusClearOwner bool
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a ticket in review as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var doneForce bool

func init() {
	rootCmd.AddCommand(setStatusCmd, doneCmd)

	setStatusCmd.Flags().BoolVar(&setStatusForce, "force", false, "Allow any transition")
	setStatusCmd.Flags().BoolVar(&setStatusClearOwner, "clear-owner", false, "Clear owner and branch when moving to ready")

	doneCmd.Flags().BoolVar(&doneForce, "force", false, "Mark done from any status")
}

func parseStatus(value string) (ticket.Status, error) {
	status, ok := validation.ParseEnum(value, ticket.ValidStatuses())
	if !ok {
		return "", validation.FormatInvalidValueError(ticket.ErrInvalidStatus, ticket.Status(value), ticket.ValidStatuses())
	}
	return status, nil
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	before, err := a.store.Show(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	from := before.Ticket.Status

	entry, err := a.store.SetStatus(cmd.Context(), before.ID(), status, board.StatusOptions{
		Actor:      ticketenv.Owner(),
		Force:      setStatusForce,
		ClearOwner: setStatusClearOwner,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unchanged := from == status &&
		entry.Ticket.Owner == before.Ticket.Owner &&
		entry.Ticket.Branch == before.Ticket.Branch
	if unchanged {
		fmt.Fprintf(out, "%s already %s\n", ui.HighlightID(entry.ID()), status)
		return nil
	}
	fmt.Fprintf(out, "%s: %s -> %s\n", ui.HighlightID(entry.ID()), from, status)

	switch status {
	case ticket.StatusClaimed:
		return a.runHook("on-claim", a.cfg.Hooks.OnClaim, entry)
	case ticket.StatusDone:
		return a.runHook("on-done", a.cfg.Hooks.OnDone, entry)
	}
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	entry, err := a.store.Done(cmd.Context(), args[0], board.StatusOptions{
		Actor: ticketenv.Owner(),
		Force: doneForce,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "done %s\n", ui.HighlightID(entry.ID()))
	return a.runHook("on-done", a.cfg.Hooks.OnDone, entry)
}
