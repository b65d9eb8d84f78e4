package report

import (
	"context"
	"fmt"
	"strings"
)

// Count is one group in a summary.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary groups indexed tickets by status, priority and owner.
type Summary struct {
	Total      int     `json:"total"`
	ByStatus   []Count `json:"by_status"`
	ByPriority []Count `json:"by_priority"`
	ByOwner    []Count `json:"by_owner"`
}

// Summary counts the indexed tickets. Owners only include tickets that have
// one, sorted by count with ties broken by name.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&sum.Total); err != nil {
		return sum, fmt.Errorf("count tickets: %w", err)
	}

	var err error
	if sum.ByStatus, err = s.counts(ctx,
		`SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`); err != nil {
		return sum, err
	}
	if sum.ByPriority, err = s.counts(ctx,
		`SELECT priority, COUNT(*) FROM tickets GROUP BY priority ORDER BY priority`); err != nil {
		return sum, err
	}
	if sum.ByOwner, err = s.counts(ctx,
		`SELECT owner, COUNT(*) AS n FROM tickets WHERE owner != '' GROUP BY owner ORDER BY n DESC, owner`); err != nil {
		return sum, err
	}
	return sum, nil
}

func (s *Store) counts(ctx context.Context, query string) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var counts []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// SearchResult is one ticket matched by Search.
type SearchResult struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Location string   `json:"location"`
	Labels   []string `json:"labels"`
	Path     string   `json:"path"`
}

// Search returns tickets whose ID, title, body or progress log contains
// query, ignoring ASCII case, in ID order. A limit of zero or less returns every match.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.status, t.location, t.path,
			COALESCE((SELECT group_concat(label, ',') FROM (
				SELECT label FROM labels WHERE ticket_id = t.id ORDER BY label)), '')
		FROM tickets t
		WHERE t.id LIKE ?1 ESCAPE '\' OR t.title LIKE ?1 ESCAPE '\' OR t.body LIKE ?1 ESCAPE '\'
		ORDER BY t.num
		LIMIT ?2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var labels string
		if err := rows.Scan(&r.ID, &r.Title, &r.Status, &r.Location, &r.Path, &labels); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if labels != "" {
			r.Labels = strings.Split(labels, ",")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
