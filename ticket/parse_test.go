package ticket

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const canonicalTicket = `---
id: T-000001
title: Example ticket
status: ready
priority: p1
type: code
effort: s
labels: [parser, core]
tags: []
owner: null
created: 2026-01-02T15:04:05Z
updated: 2026-01-02T15:04:05Z
depends_on: [T-000002]
branch: null
---

## Goal
Parse things.

## Progress Log
- 2026-01-03T10:00:00Z (agent-1) started
`

func TestParse_Canonical(t *testing.T) {
	parsed, err := Parse([]byte(canonicalTicket))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	created := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if parsed.ID != "T-000001" {
		t.Errorf("ID = %q", parsed.ID)
	}
	if parsed.Title != "Example ticket" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if parsed.Status != StatusReady || parsed.Priority != PriorityP1 || parsed.Effort != EffortS {
		t.Errorf("unexpected enums: %s %s %s", parsed.Status, parsed.Priority, parsed.Effort)
	}
	if diff := cmp.Diff([]string{"parser", "core"}, parsed.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"T-000002"}, parsed.DependsOn); diff != "" {
		t.Errorf("depends_on mismatch (-want +got):\n%s", diff)
	}
	if parsed.Owner != "" || parsed.Branch != "" {
		t.Errorf("expected null owner and branch, got %q %q", parsed.Owner, parsed.Branch)
	}
	if !parsed.Created.Equal(created) || !parsed.Updated.Equal(created) {
		t.Errorf("timestamps = %v %v", parsed.Created, parsed.Updated)
	}
	if parsed.Body != "## Goal\nParse things." {
		t.Errorf("Body = %q", parsed.Body)
	}
	if len(parsed.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(parsed.Comments))
	}
	comment := parsed.Comments[0]
	if comment.Author != "agent-1" || comment.Text != "started" {
		t.Errorf("comment = %+v", comment)
	}
}

func TestSerialize_RoundTripIsByteStable(t *testing.T) {
	parsed, err := Parse([]byte(canonicalTicket))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out, err := Serialize(parsed)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if diff := cmp.Diff(canonicalTicket, string(out)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_NewTicketRoundTrips(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	tk := New("T-000042", "  Write   the docs ", now)
	tk.Labels = []string{"docs"}
	tk.Body = "## Goal\nDocument it."
	tk.AddComment(now, "agent-1", "first\nnote")

	first, err := Serialize(tk)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	reparsed, err := Parse(first)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, first)
	}
	second, err := Serialize(reparsed)
	if err != nil {
		t.Fatalf("serialize again: %v", err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Fatalf("second serialization differs (-first +second):\n%s", diff)
	}

	if reparsed.Title != "Write the docs" {
		t.Errorf("title = %q", reparsed.Title)
	}
	if !strings.Contains(string(first), "- 2026-03-04T05:06:07Z (agent-1) first note\n") {
		t.Errorf("expected formatted comment, got:\n%s", first)
	}
	if !strings.Contains(string(first), "depends_on: []\n") {
		t.Errorf("expected empty depends_on list, got:\n%s", first)
	}
}

func TestSerialize_PreservesUnknownKeysAndLegacyValues(t *testing.T) {
	legacy := `---
id: T-000007
title: Legacy ticket
status: claimed
priority: p2
type: chore
labels:
- old
owner: agent-9
created: 2024-01-02
updated: 2024-01-05
depends_on: []
branch: bug/t-000007-legacy
score: 312.5
---

Body text.

## Progress Log
- 2024-01-03: did a thing
`
	parsed, err := Parse([]byte(legacy))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Effort != EffortS {
		t.Errorf("expected default effort s, got %q", parsed.Effort)
	}
	if len(parsed.Comments) != 1 || parsed.Comments[0].String() != "- 2024-01-03: did a thing" {
		t.Fatalf("legacy comment not preserved: %+v", parsed.Comments)
	}

	out, err := Serialize(parsed)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"created: 2024-01-02\n",
		"updated: 2024-01-05\n",
		"score: 312.5\n",
		"labels: [old]\n",
		"effort: s\n",
		"- 2024-01-03: did a thing\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Index(text, "score:") > strings.Index(text, "effort:") {
		t.Errorf("expected unknown key to keep its position before appended keys:\n%s", text)
	}

	parsed.Touch(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	out, err = Serialize(parsed)
	if err != nil {
		t.Fatalf("serialize touched: %v", err)
	}
	if !strings.Contains(string(out), "updated: 2024-02-01T00:00:00Z\n") {
		t.Errorf("expected touched timestamp in RFC3339, got:\n%s", out)
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	valid := func(replace, with string) string {
		return strings.Replace(canonicalTicket, replace, with, 1)
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing frontmatter", "# just markdown\n", "missing frontmatter"},
		{"unterminated frontmatter", "---\nid: T-000001\n", "unterminated frontmatter"},
		{"not a mapping", "---\n- a\n- b\n---\n", "must be a mapping"},
		{"invalid yaml", "---\nid: [\n---\n", "not valid YAML"},
		{"missing title", valid("title: Example ticket\n", ""), "title"},
		{"unknown status", valid("status: ready", "status: started"), "status"},
		{"unknown priority", valid("priority: p1", "priority: p9"), "priority"},
		{"unknown effort", valid("effort: s", "effort: huge"), "effort"},
		{"malformed dependency", valid("[T-000002]", "[T-2]"), "depends_on"},
		{"bad timestamp", valid("created: 2026-01-02T15:04:05Z", "created: yesterday"), "created"},
		{"merge conflict", valid("status: ready\n", "<<<<<<< HEAD\nstatus: ready\n=======\nstatus: claimed\n>>>>>>> other\n"), "merge conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	content := strings.Replace(canonicalTicket, "status: ready", "status: started", 1)
	content = strings.Replace(content, "priority: p1", "priority: p9", 1)

	_, err := Parse([]byte(content))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if len(schemaErr.Problems) < 2 {
		t.Fatalf("expected at least 2 problems, got %v", schemaErr.Problems)
	}
}

func TestParseFile_SetsPath(t *testing.T) {
	path := t.TempDir() + "/T-000001.md"
	writeFile(t, path, "not a ticket")

	_, err := ParseFile(path)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if schemaErr.Path != path {
		t.Fatalf("Path = %q, want %q", schemaErr.Path, path)
	}
}

func TestSplitProgressLog_KeepsTrailingSections(t *testing.T) {
	body := "Intro\n\n## Progress Log\n- 2026-01-01T00:00:00Z (a) one\nfree text line\n\n## Appendix\nmore"
	before, comments, tail, heading := splitProgressLog(body)

	if before != "Intro" {
		t.Errorf("before = %q", before)
	}
	if !heading {
		t.Error("expected heading to be detected")
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(comments))
	}
	if comments[1].String() != "free text line" {
		t.Errorf("raw entry = %q", comments[1].String())
	}
	if tail != "## Appendix\nmore" {
		t.Errorf("tail = %q", tail)
	}
}
