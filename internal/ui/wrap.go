package ui

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Wrap word-wraps text to width and indents every line by pad spaces.
// Lines only break at spaces, so ticket IDs stay whole.
func Wrap(text string, width int, pad uint) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if width > int(pad) {
		w := wordwrap.NewWriter(width - int(pad))
		w.Breakpoints = nil
		_, _ = w.Write([]byte(text))
		_ = w.Close()
		text = w.String()
	}
	return indent.String(text, pad)
}
