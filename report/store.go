package report

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

// DefaultPath is the report database location relative to the repo root.
const DefaultPath = ".mt/report.db"

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id TEXT PRIMARY KEY,
	num INTEGER NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	type TEXT NOT NULL,
	effort TEXT NOT NULL,
	owner TEXT NOT NULL DEFAULT '',
	branch TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL,
	ready INTEGER NOT NULL DEFAULT 0,
	created TEXT NOT NULL,
	updated TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner);

CREATE TABLE IF NOT EXISTS labels (
	ticket_id TEXT NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY (ticket_id, label)
);
CREATE INDEX IF NOT EXISTS idx_labels_label ON labels(label);

CREATE TABLE IF NOT EXISTS dependencies (
	ticket_id TEXT NOT NULL,
	depends_on TEXT NOT NULL,
	PRIMARY KEY (ticket_id, depends_on)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_target ON dependencies(depends_on);

CREATE TABLE IF NOT EXISTS build (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is a disposable SQLite projection of the board used for summaries
// and search. It can be deleted at any time and rebuilt from the ticket
// files.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Open opens or creates the report database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open report database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}
	return &Store{db: db, path: path, log: log}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BuildResult counts what Build changed.
type BuildResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Build brings the database in line with the board. Tickets whose content
// hash is unchanged since the last build are skipped.
func (s *Store) Build(ctx context.Context, b *board.Board, root string) (BuildResult, error) {
	var result BuildResult

	existing, err := s.hashes(ctx)
	if err != nil {
		return result, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin build: %w", err)
	}
	defer tx.Rollback()

	g := b.Graph()
	seen := make(map[string]bool, b.Len())
	for _, e := range b.Entries() {
		id := e.ID()
		seen[id] = true

		ready := g.Ready(id)
		hash, err := entryHash(e, ready)
		if err != nil {
			return result, err
		}
		prev, ok := existing[id]
		if ok && prev == hash {
			result.Unchanged++
			continue
		}
		if err := upsert(ctx, tx, e, ready, relPath(root, e.Path), hash); err != nil {
			return result, fmt.Errorf("index %s: %w", id, err)
		}
		if ok {
			result.Updated++
		} else {
			result.Inserted++
		}
	}

	for id := range existing {
		if seen[id] {
			continue
		}
		if err := remove(ctx, tx, id); err != nil {
			return result, fmt.Errorf("remove %s: %w", id, err)
		}
		result.Removed++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO build (key, value) VALUES ('built_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, fmt.Errorf("record build: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit build: %w", err)
	}

	s.log.Debug("report built",
		zap.String("path", s.path),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("removed", result.Removed),
		zap.Int("unchanged", result.Unchanged))
	return result, nil
}

// Reset drops every indexed row so the next Build starts over.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"tickets", "labels", "dependencies", "build"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// BuiltAt returns the time of the last successful build.
func (s *Store) BuiltAt(ctx context.Context) (time.Time, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM build WHERE key = 'built_at'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read build time: %w", err)
	}
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse build time: %w", err)
	}
	return at, true, nil
}

func (s *Store) hashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, hash FROM tickets`)
	if err != nil {
		return nil, fmt.Errorf("read hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		hashes[id] = hash
	}
	return hashes, rows.Err()
}

// indexFormat is mixed into every entry hash so that a change to how rows
// are derived rebuilds databases written by an older binary.
const indexFormat = 2

// searchText is the indexed body: the description followed by the progress
// log, one comment per line.
func searchText(t *ticket.Ticket) string {
	if len(t.Comments) == 0 {
		return t.Body
	}
	var b strings.Builder
	b.WriteString(t.Body)
	for _, c := range t.Comments {
		b.WriteString("\n")
		b.WriteString(c.String())
	}
	return b.String()
}

// entryHash covers the serialized ticket plus the derived columns that do not
// come from the file itself.
func entryHash(e *board.Entry, ready bool) (string, error) {
	data, err := ticket.Serialize(e.Ticket)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", e.ID(), err)
	}
	h := blake3.New()
	h.Write(data)
	fmt.Fprintf(h, "\x00%s\x00%s\x00%t\x00%d", e.Location, e.Path, ready, indexFormat)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func upsert(ctx context.Context, tx *sql.Tx, e *board.Entry, ready bool, path, hash string) error {
	t := e.Ticket
	num, err := ticket.IDNumber(t.ID)
	if err != nil {
		return err
	}
	if err := remove(ctx, tx, t.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tickets (id, num, title, status, priority, type, effort, owner, branch,
			location, ready, created, updated, body, path, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, num, t.Title, string(t.Status), string(t.Priority), t.Type, string(t.Effort),
		t.Owner, t.Branch, string(e.Location), ready,
		t.Created.UTC().Format(time.RFC3339), t.Updated.UTC().Format(time.RFC3339),
		searchText(t), path, hash); err != nil {
		return err
	}
	for _, label := range t.Labels {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO labels (ticket_id, label) VALUES (?, ?)`, t.ID, label); err != nil {
			return err
		}
	}
	for _, dep := range t.DependsOn {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO dependencies (ticket_id, depends_on) VALUES (?, ?)`, t.ID, dep); err != nil {
			return err
		}
	}
	return nil
}

func remove(ctx context.Context, tx *sql.Tx, id string) error {
	for _, stmt := range []string{
		`DELETE FROM tickets WHERE id = ?`,
		`DELETE FROM labels WHERE ticket_id = ?`,
		`DELETE FROM dependencies WHERE ticket_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
