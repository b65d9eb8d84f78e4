package ticketenv

import "testing"

func TestOwner(t *testing.T) {
	t.Setenv(OwnerEnvVar, "  agent-7 ")
	if got := Owner(); got != "agent-7" {
		t.Fatalf("Owner() = %q, want agent-7", got)
	}

	t.Setenv(OwnerEnvVar, "")
	if got := Owner(); got != "" {
		t.Fatalf("Owner() = %q, want empty", got)
	}
}

func TestRoot(t *testing.T) {
	t.Setenv(RootEnvVar, "/srv/repo")
	if got := Root(); got != "/srv/repo" {
		t.Fatalf("Root() = %q, want /srv/repo", got)
	}
}
