package ticket

import (
	"os"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testTicket(id string) *Ticket {
	return New(id, "Ticket "+id, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}
