package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/amonks/muontickets/report"
)

var (
	buildOnce sync.Once
	mtPath    string
	buildErr  error
)

// BuildMT builds the mt binary once and returns its path.
func BuildMT(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "mt-bin-")
		if err != nil {
			buildErr = err
			return
		}

		mtPath = filepath.Join(binDir, "mt")
		cmd := exec.Command("go", "build", "-o", mtPath, "./cmd/mt")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build mt: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return mtPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("MT", BuildMT(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("MT_OWNER", "")
	env.Setenv("MT_ROOT", "")
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTicketID finds a ticket by title in `mt ls --json` output and stores
// its ID in an env var.
func CmdTicketID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("ticketid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: ticketid FILE TITLE VAR")
	}

	var rows []report.Row
	data := ts.ReadFile(args[0])
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		ts.Fatalf("parse ticket list: %v", err)
	}

	title := args[1]
	for _, row := range rows {
		if row.Title == title {
			ts.Setenv(args[2], row.ID)
			return
		}
	}

	ts.Fatalf("ticket with title %q not found", title)
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
