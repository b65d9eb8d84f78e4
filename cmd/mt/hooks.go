package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/config"
)

// runHook runs a configured hook script in the repository root for the
// ticket in e. An empty script does nothing.
func (a *app) runHook(name, script string, e *board.Entry) error {
	if script == "" {
		return nil
	}
	t := e.Ticket
	env := config.HookEnv{
		TicketID: t.ID,
		Owner:    t.Owner,
		Branch:   t.Branch,
		Status:   string(t.Status),
	}
	a.log.Debug("running hook", zap.String("hook", name), zap.String("id", t.ID))
	if err := config.RunScript(a.root, script, env.Environ()...); err != nil {
		return fmt.Errorf("%s hook for %s: %w", name, t.ID, err)
	}
	return nil
}
