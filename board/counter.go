package board

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/amonks/muontickets/ticket"
)

// Allocator hands out ticket IDs. The counter file caches the last
// allocated number; the directories are always rescanned so a lost or
// stale counter heals itself.
type Allocator struct {
	Layout Layout
	Logger *zap.Logger
	// Floor is a number known to be taken, typically Board.MaxID. File
	// names alone miss a ticket whose frontmatter ID disagrees with its
	// file name.
	Floor int
}

// Allocate reserves the next ID and calls create with it while the
// allocation lock is held. The counter is advanced only if create succeeds.
func (a Allocator) Allocate(create func(id string) error) (string, error) {
	var id string
	err := withFileLock(a.Layout.LockPath(), func() error {
		next, err := a.next()
		if err != nil {
			return err
		}
		id = ticket.FormatID(next)
		if err := create(id); err != nil {
			return err
		}
		return writeCounter(a.Layout.CounterPath(), next)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Next returns the ID the next allocation would use without reserving it.
func (a Allocator) Next() (string, error) {
	n, err := a.next()
	if err != nil {
		return "", err
	}
	return ticket.FormatID(n), nil
}

func (a Allocator) next() (int, error) {
	scanned, err := scanMaxID(a.Layout)
	if err != nil {
		return 0, err
	}
	scanned = max(scanned, a.Floor)
	counter, err := readCounter(a.Layout.CounterPath())
	if errors.Is(err, errMissingCounter) {
		a.logger().Debug("rebuilding ticket counter from scan", zap.Error(err), zap.Int("max_id", scanned))
		counter = 0
	} else if err != nil {
		return 0, err
	} else if counter < scanned {
		a.logger().Debug("ticket counter is stale", zap.Int("counter", counter), zap.Int("max_id", scanned))
	}
	return max(counter, scanned) + 1, nil
}

func (a Allocator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// readCounter returns errMissingCounter for absent or unparsable files,
// including counters mangled by a merge.
func readCounter(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, errMissingCounter
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	text := strings.TrimSpace(string(data))
	text = strings.TrimPrefix(strings.TrimPrefix(text, "T-"), "t-")
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", errMissingCounter, text)
	}
	return n, nil
}

func writeCounter(path string, n int) error {
	if err := atomic.WriteFile(path, bytes.NewBufferString(strconv.Itoa(n)+"\n")); err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	return nil
}

// scanMaxID returns the highest ticket number named by a file in any
// location.
func scanMaxID(layout Layout) (int, error) {
	maxID := 0
	for _, loc := range Locations() {
		names, err := ticketFilenames(layout.LocationDir(loc))
		if err != nil {
			return 0, err
		}
		for _, name := range names {
			id, _ := ticket.IDFromFilename(name)
			if n, err := ticket.IDNumber(id); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	return maxID, nil
}
