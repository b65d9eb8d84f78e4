package main

import (
	"github.com/spf13/cobra"

	"github.com/amonks/muontickets/internal/ticketenv"
)

func hasChangedFlags(cmd *cobra.Command, flags ...string) bool {
	for _, flag := range flags {
		if cmd.Flags().Changed(flag) {
			return true
		}
	}
	return false
}

// addOwnerFlag registers --owner defaulting to $MT_OWNER.
func addOwnerFlag(cmd *cobra.Command, target *string, usage string) {
	cmd.Flags().StringVar(target, "owner", "", usage+" (default: $"+ticketenv.OwnerEnvVar+")")
}

// ownerOrEnv returns the flag value, or $MT_OWNER when the flag is unset.
func ownerOrEnv(cmd *cobra.Command, flagValue string) string {
	if hasChangedFlags(cmd, "owner") {
		return flagValue
	}
	return ticketenv.Owner()
}
