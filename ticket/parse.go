package ticket

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	internalstrings "github.com/amonks/muontickets/internal/strings"
)

const (
	frontmatterBoundary = "---"
	progressLogHeading  = "## Progress Log"
)

// Frontmatter keys in the order new tickets are written.
const (
	keyID         = "id"
	keyTitle      = "title"
	keyStatus     = "status"
	keyPriority   = "priority"
	keyType       = "type"
	keyEffort     = "effort"
	keyLabels     = "labels"
	keyTags       = "tags"
	keyOwner      = "owner"
	keyCreated    = "created"
	keyUpdated    = "updated"
	keyDependsOn  = "depends_on"
	keyBranch     = "branch"
	keyArchivedAt = "archived_at"
)

var fieldOrder = []string{
	keyID, keyTitle, keyStatus, keyPriority, keyType, keyEffort, keyLabels, keyTags,
	keyOwner, keyCreated, keyUpdated, keyDependsOn, keyBranch, keyArchivedAt,
}

var (
	commentPattern  = regexp.MustCompile(`^- (\d{4}-\d{2}-\d{2}T\S+) (?:\(([^)]*)\) )?(.*)$`)
	sectionPattern  = regexp.MustCompile(`^#{1,2}\s`)
	conflictMarkers = []string{"<<<<<<<", ">>>>>>>"}
)

// ParseFile reads and parses the ticket file at path. Schema errors carry
// the path.
func ParseFile(path string) (*Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticket: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		if schemaErr, ok := err.(*SchemaError); ok {
			schemaErr.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Parse converts ticket file content into a Ticket. Every failure is a
// *SchemaError listing all problems found.
func Parse(content []byte) (*Ticket, error) {
	text := internalstrings.NormalizeNewlines(string(content))
	if hasConflictMarkers(text) {
		return nil, schemaErrorf("unresolved merge conflict markers")
	}

	frontmatter, body, schemaErr := splitFrontmatter(text)
	if schemaErr != nil {
		return nil, schemaErr
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(frontmatter), &doc); err != nil {
		return nil, schemaErrorf("frontmatter is not valid YAML: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, schemaErrorf("frontmatter must be a mapping")
	}
	meta := doc.Content[0]

	if problems := checkSchema(meta); len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	t, problems := decodeFields(meta)
	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}
	t.meta = meta
	t.Body, t.Comments, t.logTail, t.logHeading = splitProgressLog(body)
	return t, nil
}

func hasConflictMarkers(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		for _, marker := range conflictMarkers {
			if line == marker || strings.HasPrefix(line, marker+" ") {
				return true
			}
		}
	}
	return false
}

func splitFrontmatter(text string) (string, string, *SchemaError) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterBoundary {
		return "", "", schemaErrorf("missing frontmatter: expected first line to be %q", frontmatterBoundary)
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterBoundary {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", schemaErrorf("unterminated frontmatter: missing closing %q", frontmatterBoundary)
	}
	frontmatter := strings.Join(lines[1:end], "\n")
	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return frontmatter, body, nil
}

func decodeFields(meta *yaml.Node) (*Ticket, []string) {
	var problems []string
	t := &Ticket{
		ID:        scalarValue(meta, keyID),
		Title:     scalarValue(meta, keyTitle),
		Status:    Status(scalarValue(meta, keyStatus)),
		Priority:  Priority(scalarValue(meta, keyPriority)),
		Effort:    Effort(scalarValue(meta, keyEffort)),
		Type:      scalarValue(meta, keyType),
		Labels:    listValue(meta, keyLabels),
		Tags:      listValue(meta, keyTags),
		Owner:     scalarValue(meta, keyOwner),
		Branch:    scalarValue(meta, keyBranch),
		DependsOn: listValue(meta, keyDependsOn),
	}
	if t.Effort == "" {
		t.Effort = DefaultEffort
	}

	var err error
	if t.Created, t.createdDateOnly, err = parseTimestamp(scalarValue(meta, keyCreated)); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", keyCreated, err))
	}
	if t.Updated, t.updatedDateOnly, err = parseTimestamp(scalarValue(meta, keyUpdated)); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", keyUpdated, err))
	}
	if archived := scalarValue(meta, keyArchivedAt); archived != "" {
		if t.ArchivedAt, _, err = parseTimestamp(archived); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", keyArchivedAt, err))
		}
	}
	return t, problems
}

func mappingValue(meta *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(meta.Content); i += 2 {
		if meta.Content[i].Value == key {
			return meta.Content[i+1]
		}
	}
	return nil
}

func scalarValue(meta *yaml.Node, key string) string {
	node := mappingValue(meta, key)
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return ""
	}
	return strings.TrimSpace(node.Value)
}

func listValue(meta *yaml.Node, key string) []string {
	node := mappingValue(meta, key)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	values := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode && item.ShortTag() != "!!null" {
			values = append(values, strings.TrimSpace(item.Value))
		}
	}
	return values
}

func parseTimestamp(value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("missing timestamp")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateTime} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, false, nil
		}
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return parsed, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q", value)
}

func formatTimestamp(t time.Time, dateOnly bool) string {
	if dateOnly {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

// splitProgressLog separates the body text, the progress log entries and any
// sections that follow the log.
func splitProgressLog(body string) (string, []Comment, string, bool) {
	lines := strings.Split(body, "\n")
	heading := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == progressLogHeading {
			heading = i
		}
	}
	if heading < 0 {
		return internalstrings.TrimTrailingWhitespace(body), nil, "", false
	}

	end := len(lines)
	for i := heading + 1; i < len(lines); i++ {
		if sectionPattern.MatchString(lines[i]) {
			end = i
			break
		}
	}

	var comments []Comment
	for _, line := range lines[heading+1 : end] {
		line = internalstrings.TrimTrailingWhitespace(line)
		if line == "" {
			continue
		}
		comments = append(comments, parseComment(line))
	}

	before := internalstrings.TrimTrailingWhitespace(strings.Join(lines[:heading], "\n"))
	tail := internalstrings.TrimTrailingWhitespace(strings.Join(lines[end:], "\n"))
	return before, comments, tail, true
}

func parseComment(line string) Comment {
	comment := Comment{raw: line}
	match := commentPattern.FindStringSubmatch(line)
	if match == nil {
		return comment
	}
	at, err := time.Parse(time.RFC3339Nano, match[1])
	if err != nil {
		return comment
	}
	parsed := Comment{At: at, Author: match[2], Text: match[3]}
	if parsed.String() == line {
		return parsed
	}
	comment.At, comment.Author, comment.Text = parsed.At, parsed.Author, parsed.Text
	return comment
}

// Serialize renders the ticket file. Keys already present in the parsed
// frontmatter keep their position and unknown keys are preserved; missing
// known keys are appended in canonical order.
func Serialize(t *Ticket) ([]byte, error) {
	frontmatter, err := encodeFrontmatter(t)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(frontmatterBoundary + "\n")
	b.Write(frontmatter)
	b.WriteString(frontmatterBoundary + "\n")

	body := internalstrings.TrimTrailingWhitespace(t.Body)
	if body != "" {
		b.WriteString("\n" + body + "\n")
	}
	if len(t.Comments) > 0 || t.logHeading {
		b.WriteString("\n" + progressLogHeading + "\n")
		for _, comment := range t.Comments {
			b.WriteString(comment.String() + "\n")
		}
	}
	if t.logTail != "" {
		b.WriteString("\n" + t.logTail + "\n")
	}
	return b.Bytes(), nil
}

func encodeFrontmatter(t *Ticket) ([]byte, error) {
	fields := fieldNodes(t)
	known := make(map[string]bool, len(fieldOrder))
	for _, key := range fieldOrder {
		known[key] = true
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	written := make(map[string]bool, len(fieldOrder))
	if t.meta != nil {
		for i := 0; i+1 < len(t.meta.Content); i += 2 {
			keyNode := t.meta.Content[i]
			key := keyNode.Value
			if !known[key] {
				mapping.Content = append(mapping.Content, keyNode, t.meta.Content[i+1])
				continue
			}
			value, ok := fields[key]
			if !ok || written[key] {
				continue
			}
			mapping.Content = append(mapping.Content, keyNode, value)
			written[key] = true
		}
	}
	for _, key := range fieldOrder {
		value, ok := fields[key]
		if !ok || written[key] {
			continue
		}
		mapping.Content = append(mapping.Content, strNode(key), value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	return buf.Bytes(), nil
}

func fieldNodes(t *Ticket) map[string]*yaml.Node {
	fields := map[string]*yaml.Node{
		keyID:        strNode(t.ID),
		keyTitle:     strNode(t.Title),
		keyStatus:    strNode(string(t.Status)),
		keyPriority:  strNode(string(t.Priority)),
		keyType:      strNode(t.Type),
		keyEffort:    strNode(string(t.Effort)),
		keyLabels:    listNode(t.Labels),
		keyTags:      listNode(t.Tags),
		keyOwner:     optionalNode(t.Owner),
		keyCreated:   timestampNode(t.Created, t.createdDateOnly),
		keyUpdated:   timestampNode(t.Updated, t.updatedDateOnly),
		keyDependsOn: listNode(t.DependsOn),
		keyBranch:    optionalNode(t.Branch),
	}
	if !t.ArchivedAt.IsZero() {
		fields[keyArchivedAt] = timestampNode(t.ArchivedAt, false)
	}
	return fields
}

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func optionalNode(value string) *yaml.Node {
	if value == "" {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return strNode(value)
}

func timestampNode(value time.Time, dateOnly bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: formatTimestamp(value, dateOnly)}
}

func listNode(values []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, value := range values {
		node.Content = append(node.Content, strNode(value))
	}
	return node
}
