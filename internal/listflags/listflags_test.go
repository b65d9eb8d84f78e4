package listflags

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/amonks/muontickets/ticket"
)

func TestEnumFlags(t *testing.T) {
	var (
		status   ticket.Status
		priority ticket.Priority
		effort   ticket.Effort
		statuses []ticket.Status
	)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	StatusVar(flags, &status, "state", "")
	PriorityVar(flags, &priority, "priority", "")
	EffortVar(flags, &effort, "effort", "")
	StatusesVar(flags, &statuses, "status", "")

	err := flags.Parse([]string{"--state", "Needs_Review", "--priority", "p0", "--effort", "XL", "--status", "ready,claimed", "--status", "done"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != ticket.StatusNeedsReview || priority != ticket.PriorityP0 || effort != ticket.EffortXL {
		t.Fatalf("unexpected values %q %q %q", status, priority, effort)
	}
	want := []ticket.Status{ticket.StatusReady, ticket.StatusClaimed, ticket.StatusDone}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumFlags_Invalid(t *testing.T) {
	var (
		priority ticket.Priority
		statuses []ticket.Status
	)
	tests := []struct {
		name  string
		value pflag.Value
		arg   string
	}{
		{name: "priority", value: &enumValue[ticket.Priority]{target: &priority, valid: ticket.ValidPriorities(), kind: "priority"}, arg: "p9"},
		{name: "status", value: &statusSliceValue{target: &statuses}, arg: "ready,open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.value.Set(tt.arg); !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue, got %v", err)
			}
		})
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	PriorityVar(flags, &priority, "priority", "")
	if err := flags.Parse([]string{"--priority", "p9"}); err == nil {
		t.Fatal("expected parse error")
	}
}
