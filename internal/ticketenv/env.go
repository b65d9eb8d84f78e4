// Package ticketenv reads defaults for mt from the environment.
package ticketenv

import (
	"os"
	"strings"
)

const (
	// OwnerEnvVar names the agent that claims and comments by default.
	OwnerEnvVar = "MT_OWNER"

	// RootEnvVar overrides the repository root.
	RootEnvVar = "MT_ROOT"
)

// Owner returns the default owner, or "" when unset.
func Owner() string {
	return strings.TrimSpace(os.Getenv(OwnerEnvVar))
}

// Root returns the configured repository root, or "" when unset.
func Root() string {
	return strings.TrimSpace(os.Getenv(RootEnvVar))
}
