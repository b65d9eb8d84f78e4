package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/ui"
	"github.com/amonks/muontickets/internal/watch"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every ticket and the board as a whole",
	Long: `Validate checks the schema of every ticket file, dependency integrity
(missing tickets, cycles, archived dependencies), the WIP limit and
branch tracking. Errors fail the command; warnings are only reported.

With --watch the board is validated again whenever a ticket file changes,
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateEnforceDoneDeps bool
	validateMaxClaimed      int
	validateJSON            bool
	validateWatch           bool
)

var errValidationFailed = errors.New("validation failed")

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateEnforceDoneDeps, "enforce-done-deps", false, "Fail when started tickets have unfinished dependencies")
	validateCmd.Flags().IntVar(&validateMaxClaimed, "max-claimed-per-owner", 0, "Override the configured WIP limit")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output as JSON")
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Validate again on every ticket change")
}

// validateResult is the JSON form of validate.
type validateResult struct {
	OK     bool          `json:"ok"`
	Issues []board.Issue `json:"issues"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	opts := board.ValidateOptions{
		EnforceDoneDeps:    validateEnforceDoneDeps,
		MaxClaimedPerOwner: validateMaxClaimed,
	}
	check := func(ctx context.Context) (board.Report, error) {
		r, err := a.store.Validate(ctx, opts)
		if err != nil {
			return r, err
		}
		if err := writeValidateReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), a, r); err != nil {
			return r, err
		}
		return r, nil
	}

	if validateWatch {
		layout := a.store.Layout()
		dirs := make([]string, 0, len(board.Locations()))
		for _, loc := range board.Locations() {
			dirs = append(dirs, layout.LocationDir(loc))
		}
		return watch.Run(cmd.Context(), dirs, watch.Options{Logger: a.log}, func(ctx context.Context) error {
			fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n", time.Now().Format(time.TimeOnly))
			_, err := check(ctx)
			return err
		})
	}

	r, err := check(cmd.Context())
	if err != nil {
		return err
	}
	if !r.OK() {
		return errValidationFailed
	}
	return nil
}

func writeValidateReport(out, errOut io.Writer, a *app, r board.Report) error {
	if validateJSON {
		issues := r.Issues
		if issues == nil {
			issues = []board.Issue{}
		}
		return encodeJSON(out, validateResult{OK: r.OK(), Issues: issues})
	}

	for _, issue := range r.Warnings() {
		fmt.Fprintf(out, "%s: %s\n", ui.FormatSeverity(string(issue.Severity)), issueText(a, issue))
	}
	if r.OK() {
		fmt.Fprintln(out, "validation OK.")
		return nil
	}
	fmt.Fprintln(errOut, "validation FAILED:")
	for _, issue := range r.Errors() {
		fmt.Fprintln(errOut, ui.Wrap("- "+issueText(a, issue), ticketDetailLineWidth, 1))
	}
	return nil
}

func issueText(a *app, issue board.Issue) string {
	if issue.TicketID == "" && issue.Path != "" {
		return a.rel(issue.Path) + ": " + issue.Message
	}
	return issue.Error()
}
