// Package report builds read-only projections of a board: JSON exports,
// dependency graph renderings, status statistics and a SQLite report
// database. Nothing here writes ticket files.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/validation"
)

// ExcerptLines is the number of body lines carried in an export row.
const ExcerptLines = 20

// Format selects the export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ValidFormats returns all export formats.
func ValidFormats() []Format {
	return []Format{FormatJSON, FormatJSONL}
}

// IsValid reports whether f is a known export format.
func (f Format) IsValid() bool {
	return f == FormatJSON || f == FormatJSONL
}

// ErrInvalidFormat is returned for an unknown export format.
var ErrInvalidFormat = errors.New("invalid export format")

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w %q: %s", ErrInvalidFormat, s, validation.FormatValidValues(ValidFormats()))
	}
	return f, nil
}

// Row is one exported ticket.
type Row struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Type      string    `json:"type"`
	Effort    string    `json:"effort"`
	Labels    []string  `json:"labels"`
	Tags      []string  `json:"tags"`
	Owner     *string   `json:"owner"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	DependsOn []string  `json:"depends_on"`
	Branch    *string   `json:"branch"`
	Location  string    `json:"location"`
	Ready     bool      `json:"ready"`
	Excerpt   string    `json:"excerpt"`
	Path      string    `json:"path"`
}

// Rows converts every parsed ticket on the board into an export row, in ID
// order. Paths are made relative to root when possible.
func Rows(b *board.Board, root string) []Row {
	g := b.Graph()
	entries := b.Entries()
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		t := e.Ticket
		rows = append(rows, Row{
			ID:        t.ID,
			Title:     t.Title,
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			Type:      t.Type,
			Effort:    string(t.Effort),
			Labels:    nonNil(t.Labels),
			Tags:      nonNil(t.Tags),
			Owner:     optional(t.Owner),
			Created:   t.Created,
			Updated:   t.Updated,
			DependsOn: nonNil(t.DependsOn),
			Branch:    optional(t.Branch),
			Location:  string(e.Location),
			Ready:     g.Ready(t.ID),
			Excerpt:   t.Excerpt(ExcerptLines),
			Path:      relPath(root, e.Path),
		})
	}
	return rows
}

// ExportOptions configures Export.
type ExportOptions struct {
	Format Format
	Zstd   bool
}

// Export writes rows to w. JSON output is an indented array and JSONL output
// is one compact object per line. With Zstd set the stream is compressed.
func Export(w io.Writer, rows []Row, opts ExportOptions) (err error) {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	if !format.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidFormat, format)
	}

	if opts.Zstd {
		zw, zerr := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zerr != nil {
			return fmt.Errorf("create zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close zstd writer: %w", cerr)
			}
		}()
		w = zw
	}

	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("encode %s: %w", row.ID, err)
			}
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
