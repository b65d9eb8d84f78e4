package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/listflags"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/ticket"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick the best claimable ticket",
	Long: `Pick the highest scoring ready ticket whose dependencies are done.

Without --claim the pick is only reported. Exits with status 3 when no
ticket matches.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

var (
	pickOwner       string
	pickLabels      []string
	pickAvoidLabels []string
	pickPriority    ticket.Priority
	pickType        string
	pickIgnoreDeps  bool
	pickClaim       bool
	pickBranch      string
	pickJSON        bool
	pickExplain     bool
)

func init() {
	rootCmd.AddCommand(pickCmd)

	addOwnerFlag(pickCmd, &pickOwner, "Owner picking the ticket")
	listflags.AddLabelFlag(pickCmd, &pickLabels, "Require label (repeatable)")
	pickCmd.Flags().StringArrayVar(&pickAvoidLabels, "avoid-label", nil, "Skip tickets with this label (repeatable)")
	listflags.PriorityVar(pickCmd.Flags(), &pickPriority, "priority", "Only pick this priority")
	pickCmd.Flags().StringVar(&pickType, "type", "", "Only pick this type")
	pickCmd.Flags().BoolVar(&pickIgnoreDeps, "ignore-deps", false, "Allow tickets whose dependencies are not done")
	pickCmd.Flags().BoolVar(&pickClaim, "claim", false, "Claim the picked ticket")
	pickCmd.Flags().StringVar(&pickBranch, "branch", "", "Branch to record when claiming")
	listflags.AddJSONFlag(pickCmd, &pickJSON)
	pickCmd.Flags().BoolVar(&pickExplain, "explain", false, "Show how every candidate was scored")
}

// pickResult is the JSON form of pick.
type pickResult struct {
	Picked  string  `json:"picked"`
	Title   string  `json:"title"`
	Owner   string  `json:"owner,omitempty"`
	Branch  string  `json:"branch,omitempty"`
	Claimed bool    `json:"claimed"`
	Score   float64 `json:"score"`

	Candidates []candidateScore `json:"candidates,omitempty"`
}

type candidateScore struct {
	ID string `json:"id"`
	board.Candidate
}

func runPick(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	owner := ownerOrEnv(cmd, pickOwner)
	opts := board.PickOptions{
		Owner:       owner,
		Labels:      pickLabels,
		AvoidLabels: pickAvoidLabels,
		Priority:    pickPriority,
		Type:        pickType,
		IgnoreDeps:  pickIgnoreDeps,
	}

	var ranked []board.Candidate
	if pickExplain {
		ranked, err = a.store.Rank(cmd.Context(), opts)
		if err != nil {
			return err
		}
	}

	var (
		entry *board.Entry
		c     board.Candidate
	)
	if pickClaim {
		if owner == "" {
			return board.ErrOwnerRequired
		}
		entry, c, err = a.store.PickAndClaim(cmd.Context(), opts, board.ClaimOptions{Owner: owner, Branch: pickBranch})
	} else {
		c, err = a.store.Pick(cmd.Context(), opts)
		entry = c.Entry
	}
	if err != nil {
		if errors.Is(err, board.ErrNoneAvailable) {
			err = fmt.Errorf("%w (ready, dependencies done, filters matched)", err)
		}
		return withExitCode(err)
	}

	result := pickResult{
		Picked:  entry.ID(),
		Title:   entry.Ticket.Title,
		Owner:   entry.Ticket.Owner,
		Branch:  entry.Ticket.Branch,
		Claimed: pickClaim,
		Score:   c.Score,
	}
	for _, r := range ranked {
		result.Candidates = append(result.Candidates, candidateScore{ID: r.Entry.ID(), Candidate: r})
	}

	out := cmd.OutOrStdout()
	if pickJSON {
		if err := encodeJSON(out, result); err != nil {
			return err
		}
	} else {
		printPick(out, result)
	}

	if pickClaim {
		return a.runHook("on-claim", a.cfg.Hooks.OnClaim, entry)
	}
	return nil
}

func printPick(w io.Writer, result pickResult) {
	if result.Claimed {
		fmt.Fprintf(w, "picked %s (score %.1f) -> claimed as %s (branch: %s)\n",
			ui.HighlightID(result.Picked), result.Score, result.Owner, result.Branch)
	} else {
		fmt.Fprintf(w, "picked %s (score %.1f): %s\n", ui.HighlightID(result.Picked), result.Score, result.Title)
	}
	if len(result.Candidates) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCandidates:")
	for _, r := range result.Candidates {
		fmt.Fprintf(w, "  %s %s\n", ui.HighlightID(r.ID), r.Explain())
	}
}
