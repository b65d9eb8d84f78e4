package ticket

import (
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	internalstrings "github.com/amonks/muontickets/internal/strings"
)

// Ticket is one unit of work parsed from a ticket file.
type Ticket struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	Priority   Priority  `json:"priority"`
	Effort     Effort    `json:"effort"`
	Type       string    `json:"type"`
	Labels     []string  `json:"labels"`
	Tags       []string  `json:"tags"`
	Owner      string    `json:"owner,omitempty"`
	Branch     string    `json:"branch,omitempty"`
	DependsOn  []string  `json:"depends_on"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
	ArchivedAt time.Time `json:"archived_at,omitzero"`
	Body       string    `json:"body"`
	Comments   []Comment `json:"comments,omitempty"`

	// meta is the frontmatter mapping the ticket was parsed from. Unknown
	// keys and key order are carried over from it on serialization.
	meta *yaml.Node

	createdDateOnly bool
	updatedDateOnly bool

	// logTail holds sections that follow the progress log.
	logTail    string
	logHeading bool
}

// Comment is one progress log entry.
type Comment struct {
	At     time.Time `json:"at,omitzero"`
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`

	// raw is the original line for entries written in another format.
	raw string
}

// New returns a ready ticket with defaults applied.
func New(id, title string, now time.Time) *Ticket {
	now = now.UTC().Truncate(time.Second)
	return &Ticket{
		ID:       id,
		Title:    internalstrings.NormalizeWhitespace(title),
		Status:   StatusReady,
		Priority: DefaultPriority,
		Effort:   DefaultEffort,
		Type:     DefaultType,
		Created:  now,
		Updated:  now,
	}
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	clone.Labels = slices.Clone(t.Labels)
	clone.Tags = slices.Clone(t.Tags)
	clone.DependsOn = slices.Clone(t.DependsOn)
	clone.Comments = slices.Clone(t.Comments)
	return &clone
}

// Touch sets the updated timestamp.
func (t *Ticket) Touch(now time.Time) {
	t.Updated = now.UTC().Truncate(time.Second)
	t.updatedDateOnly = false
}

// AddComment appends a progress log entry. Whitespace in text is collapsed
// so the entry stays on one line.
func (t *Ticket) AddComment(now time.Time, author, text string) {
	t.Comments = append(t.Comments, Comment{
		At:     now.UTC().Truncate(time.Second),
		Author: internalstrings.NormalizeWhitespace(author),
		Text:   internalstrings.NormalizeWhitespace(text),
	})
}

// HasLabel reports whether the ticket carries label.
func (t *Ticket) HasLabel(label string) bool {
	return slices.Contains(t.Labels, label)
}

// HasAllLabels reports whether the ticket carries every label in labels.
func (t *Ticket) HasAllLabels(labels []string) bool {
	for _, label := range labels {
		if !t.HasLabel(label) {
			return false
		}
	}
	return true
}

// HasAnyLabel reports whether the ticket carries at least one label in labels.
func (t *Ticket) HasAnyLabel(labels []string) bool {
	for _, label := range labels {
		if t.HasLabel(label) {
			return true
		}
	}
	return false
}

// IsArchived reports whether the archiver has marked the ticket.
func (t *Ticket) IsArchived() bool {
	return !t.ArchivedAt.IsZero()
}

// Excerpt returns the first n non-empty-trimmed lines of the body.
func (t *Ticket) Excerpt(n int) string {
	body := strings.TrimSpace(t.Body)
	if body == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(body, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// String formats a comment the way it is written to the progress log.
func (c Comment) String() string {
	if c.raw != "" {
		return c.raw
	}
	var b strings.Builder
	b.WriteString("- ")
	if !c.At.IsZero() {
		b.WriteString(c.At.UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	if c.Author != "" {
		b.WriteString("(")
		b.WriteString(c.Author)
		b.WriteString(") ")
	}
	b.WriteString(c.Text)
	return b.String()
}
