package editor

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/amonks/muontickets/board"
)

// TicketStore is the part of board.Store that ticket editing needs.
type TicketStore interface {
	Show(ctx context.Context, id string) (*board.Entry, error)
	Replace(ctx context.Context, id string, content []byte, force bool) (*board.Entry, error)
}

// EditTicket opens a copy of the ticket file in the editor and stores the
// result through the store's checks. It reports whether anything changed;
// an unchanged file is not rewritten.
func EditTicket(ctx context.Context, store TicketStore, id string, force bool) (*board.Entry, bool, error) {
	e, err := store.Show(ctx, id)
	if err != nil {
		return nil, false, err
	}
	original, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", e.Path, err)
	}

	edited, err := EditContent(original, e.ID()+"-*.md")
	if err != nil {
		return nil, false, err
	}
	if bytes.Equal(original, edited) {
		return e, false, nil
	}

	updated, err := store.Replace(ctx, e.ID(), edited, force)
	if err != nil {
		return nil, false, fmt.Errorf("%s not saved: %w", e.ID(), err)
	}
	return updated, true, nil
}
