package report

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amonks/muontickets/board"
)

func TestWriteGraph(t *testing.T) {
	tb := newTestBoard(t)
	tb.add(board.LocationActive, 1, "Base", done)
	tb.add(board.LocationActive, 2, "Middle", dependsOn(1), done)
	tb.add(board.LocationActive, 3, "Top", dependsOn(1, 2))
	b := tb.load()

	tests := []struct {
		name string
		opts GraphOptions
		want string
	}{
		{
			name: "text",
			want: "T-000001 -> T-000002\nT-000001 -> T-000003\nT-000002 -> T-000003\n",
		},
		{
			name: "open only",
			opts: GraphOptions{OpenOnly: true},
			want: "T-000001 -> T-000003\nT-000002 -> T-000003\n",
		},
		{
			name: "mermaid",
			opts: GraphOptions{Mermaid: true, OpenOnly: true},
			want: "```mermaid\ngraph TD\n  T-000001 --> T-000003\n  T-000002 --> T-000003\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteGraph(&buf, b, tt.opts); err != nil {
				t.Fatalf("write graph: %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Fatalf("graph mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
