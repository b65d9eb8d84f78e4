package ticket

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTemplate_Render(t *testing.T) {
	tpl := MustDefaultTemplate()
	if tpl.Priority != PriorityP1 || tpl.Effort != EffortS || tpl.Type != "code" {
		t.Fatalf("unexpected defaults: %+v", tpl)
	}

	body, err := tpl.Render(TemplateData{ID: "T-000001", Title: "x", Goal: "Ship the parser."})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "## Goal\nShip the parser.\n") {
		t.Fatalf("expected goal in body, got:\n%s", body)
	}

	body, err = tpl.Render(TemplateData{ID: "T-000001", Title: "x"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Write a single-sentence goal.") {
		t.Fatalf("expected placeholder goal, got:\n%s", body)
	}
}

func TestParseTemplate_CustomDefaults(t *testing.T) {
	tpl, err := ParseTemplate([]byte("---\npriority: p0\ntype: docs\neffort: xs\nlabels: [team-a]\n---\n\n# {{ .ID }} {{ .Title }}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tpl.Priority != PriorityP0 || tpl.Type != "docs" || tpl.Effort != EffortXS {
		t.Fatalf("unexpected defaults: %+v", tpl)
	}
	if diff := cmp.Diff([]string{"team-a"}, tpl.Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	body, err := tpl.Render(TemplateData{ID: "T-000009", Title: "Docs"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if body != "# T-000009 Docs\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestParseTemplate_WithoutFrontmatter(t *testing.T) {
	tpl, err := ParseTemplate([]byte("Just a body.\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tpl.Priority != DefaultPriority {
		t.Fatalf("expected default priority, got %q", tpl.Priority)
	}
}

func TestParseTemplate_RejectsBadEnums(t *testing.T) {
	_, err := ParseTemplate([]byte("---\npriority: urgent\n---\nbody\n"))
	if !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}
