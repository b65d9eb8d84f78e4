package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		hidden  []string
	}{
		{name: "default", want: []string{"warn\tforced transition"}, hidden: []string{"loaded board"}},
		{name: "verbose", verbose: true, want: []string{"debug\tloaded board", "warn\tforced transition"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Options{Verbose: tt.verbose, Writer: &buf})
			log.Debug("loaded board", zap.Int("tickets", 3))
			log.Warn("forced transition", zap.Bool("override", true))

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}
			for _, hidden := range tt.hidden {
				if strings.Contains(out, hidden) {
					t.Errorf("did not expect %q in %q", hidden, out)
				}
			}
			if !strings.Contains(out, `{"override": true}`) {
				t.Errorf("expected structured fields in %q", out)
			}
		})
	}
}
