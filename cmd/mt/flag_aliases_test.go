package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestDependencyAliasUsesSingleFlag(t *testing.T) {
	var deps []string
	cmd := &cobra.Command{Use: "example"}
	addDependencyFlagAliases(cmd)
	cmd.Flags().StringArrayVar(&deps, "depends-on", nil, "Example dependency")

	if err := cmd.Flags().Set("dep", "T-000001"); err != nil {
		t.Fatalf("set dep alias: %v", err)
	}
	if err := cmd.Flags().Set("deps", "2"); err != nil {
		t.Fatalf("set deps alias: %v", err)
	}
	if len(deps) != 2 || deps[0] != "T-000001" || deps[1] != "2" {
		t.Fatalf("expected both values via aliases, got %q", deps)
	}
	if !cmd.Flags().Changed("depends-on") {
		t.Fatal("expected depends-on flag to be marked as changed")
	}

	usage := cmd.Flags().FlagUsages()
	if strings.Contains(usage, "--dep ") {
		t.Fatalf("did not expect alias to appear in usage, got %q", usage)
	}
}
