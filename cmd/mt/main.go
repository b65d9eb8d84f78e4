// Package main implements the mt CLI tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/board"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:           "mt",
	Short:         "MuonTickets - file-based tickets for cooperating agents",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	rootDir     string
	rootVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Repository root (default: $MT_ROOT or discovered from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// exitCodeError attaches a process exit code to an error.
type exitCodeError struct {
	err  error
	code int
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
func (e *exitCodeError) ExitCode() int { return e.code }

// exitNoneAvailable is the exit code of pick when nothing can be claimed.
const exitNoneAvailable = 3

func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, board.ErrNoneAvailable) {
		return &exitCodeError{err: err, code: exitNoneAvailable}
	}
	return err
}

func exitCode(err error) int {
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
