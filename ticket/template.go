package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	internalstrings "github.com/amonks/muontickets/internal/strings"
)

// DefaultTemplate is written to ticket.template by init.
const DefaultTemplate = `---
priority: p1
type: code
effort: s
labels: []
tags: []
---

## Goal
{{ if .Goal }}{{ .Goal }}{{ else }}Write a single-sentence goal.{{ end }}

## Acceptance Criteria
- [ ] Define clear, testable checks (2-5 items)

## Notes
`

// ExampleBody is the body of the example ticket created by init.
const ExampleBody = `## Goal
Replace this example with a real task.

## Acceptance Criteria
- [ ] Delete or edit this ticket
- [ ] Create at least one real ticket with ` + "`mt new`" + `

## Notes
This repository uses MuonTickets for agent-friendly coordination.
`

// Template holds the defaults and body skeleton for new tickets.
type Template struct {
	Priority Priority
	Type     string
	Effort   Effort
	Labels   []string
	Tags     []string

	body *template.Template
}

// TemplateData is available to the template body.
type TemplateData struct {
	ID    string
	Title string
	Goal  string
}

type templateFrontmatter struct {
	Priority string   `yaml:"priority"`
	Type     string   `yaml:"type"`
	Effort   string   `yaml:"effort"`
	Labels   []string `yaml:"labels"`
	Tags     []string `yaml:"tags"`
}

// ParseTemplate parses a ticket.template file. The frontmatter is optional;
// without it the whole file is the body skeleton.
func ParseTemplate(content []byte) (*Template, error) {
	text := internalstrings.NormalizeNewlines(string(content))
	body := text
	var fm templateFrontmatter
	if strings.HasPrefix(strings.TrimSpace(text), frontmatterBoundary) {
		frontmatter, rest, schemaErr := splitFrontmatter(strings.TrimLeft(text, "\n"))
		if schemaErr != nil {
			return nil, fmt.Errorf("parse template: %w", schemaErr)
		}
		if err := yaml.Unmarshal([]byte(frontmatter), &fm); err != nil {
			return nil, fmt.Errorf("parse template frontmatter: %w", err)
		}
		body = rest
	}

	tpl := &Template{
		Priority: Priority(fm.Priority),
		Type:     strings.TrimSpace(fm.Type),
		Effort:   Effort(fm.Effort),
		Labels:   fm.Labels,
		Tags:     fm.Tags,
	}
	if tpl.Priority == "" {
		tpl.Priority = DefaultPriority
	}
	if tpl.Effort == "" {
		tpl.Effort = DefaultEffort
	}
	if tpl.Type == "" {
		tpl.Type = DefaultType
	}
	if !tpl.Priority.IsValid() {
		return nil, fmt.Errorf("template: %w %q", ErrInvalidPriority, tpl.Priority)
	}
	if !tpl.Effort.IsValid() {
		return nil, fmt.Errorf("template: %w %q", ErrInvalidEffort, tpl.Effort)
	}

	parsed, err := template.New("ticket").Option("missingkey=zero").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template body: %w", err)
	}
	tpl.body = parsed
	return tpl, nil
}

// MustDefaultTemplate returns the parsed DefaultTemplate.
func MustDefaultTemplate() *Template {
	tpl, err := ParseTemplate([]byte(DefaultTemplate))
	if err != nil {
		panic(err)
	}
	return tpl
}

// Render executes the body skeleton.
func (t *Template) Render(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
