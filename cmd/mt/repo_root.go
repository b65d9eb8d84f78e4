package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/config"
	"github.com/amonks/muontickets/internal/logging"
	"github.com/amonks/muontickets/internal/paths"
	"github.com/amonks/muontickets/internal/ticketenv"
)

// rootMarkers identify a repository root when walking up from the working
// directory.
var rootMarkers = []string{config.ProjectFile, board.DefaultTicketsDir, ".git"}

// app is the state shared by every command invocation.
type app struct {
	root  string
	cfg   *config.Config
	log   *zap.Logger
	store *board.Store
}

// openApp resolves the repository root, loads configuration and opens the
// ticket store.
func openApp(cmd *cobra.Command) (*app, error) {
	root, err := getRepoPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	log := logging.New(logging.Options{Verbose: rootVerbose, Writer: cmd.ErrOrStderr()})
	opts := cfg.StoreOptions()
	opts.Logger = log

	return &app{
		root:  root,
		cfg:   cfg,
		log:   log,
		store: board.NewStore(cfg.TicketsDir(root), opts),
	}, nil
}

// getRepoPath returns the repository root from --root, $MT_ROOT, or the
// nearest parent of the working directory holding a root marker.
func getRepoPath() (string, error) {
	override := rootDir
	if override == "" {
		override = ticketenv.Root()
	}
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve root %s: %w", override, err)
		}
		return abs, nil
	}

	cwd, err := paths.WorkingDir()
	if err != nil {
		return "", err
	}
	return paths.FindRoot(cwd, rootMarkers...)
}

// rel returns path relative to the repository root for display.
func (a *app) rel(path string) string {
	if r, err := filepath.Rel(a.root, path); err == nil && !filepath.IsAbs(r) && r != ".." && !hasParentPrefix(r) {
		return r
	}
	return path
}

func hasParentPrefix(path string) bool {
	return len(path) >= 3 && path[:3] == ".."+string(filepath.Separator)
}
