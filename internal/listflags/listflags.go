// Package listflags defines flags shared by commands that filter tickets.
package listflags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amonks/muontickets/ticket"
	"github.com/amonks/muontickets/internal/validation"
)

// AddAllFlag adds a shared --all flag to list commands.
func AddAllFlag(cmd *cobra.Command, target *bool) {
	if target == nil {
		cmd.Flags().Bool("all", false, "Include backlog and archive")
		return
	}

	cmd.Flags().BoolVar(target, "all", false, "Include backlog and archive")
}

// AddLabelFlag adds a repeatable --label flag.
func AddLabelFlag(cmd *cobra.Command, target *[]string, usage string) {
	cmd.Flags().StringArrayVar(target, "label", nil, usage)
}

// AddJSONFlag adds a shared --json flag.
func AddJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Output JSON")
}

// enumValue is a pflag.Value accepting one of a fixed set of values,
// matched case-insensitively.
type enumValue[T ~string] struct {
	target *T
	valid  []T
	kind   string
}

var _ pflag.Value = (*enumValue[ticket.Status])(nil)

func (v *enumValue[T]) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *enumValue[T]) Set(s string) error {
	parsed, ok := validation.ParseEnum(s, v.valid)
	if !ok {
		return validation.FormatInvalidValueError(errInvalid(v.kind), T(s), v.valid)
	}
	*v.target = parsed
	return nil
}

func (v *enumValue[T]) Type() string {
	return v.kind
}

// StatusVar registers a status flag.
func StatusVar(flags *pflag.FlagSet, target *ticket.Status, name, usage string) {
	flags.Var(&enumValue[ticket.Status]{target: target, valid: ticket.ValidStatuses(), kind: "status"}, name, usage)
}

// PriorityVar registers a priority flag.
func PriorityVar(flags *pflag.FlagSet, target *ticket.Priority, name, usage string) {
	flags.Var(&enumValue[ticket.Priority]{target: target, valid: ticket.ValidPriorities(), kind: "priority"}, name, usage)
}

// EffortVar registers an effort flag.
func EffortVar(flags *pflag.FlagSet, target *ticket.Effort, name, usage string) {
	flags.Var(&enumValue[ticket.Effort]{target: target, valid: ticket.ValidEfforts(), kind: "effort"}, name, usage)
}

// statusSliceValue collects repeated or comma-separated statuses.
type statusSliceValue struct {
	target *[]ticket.Status
}

func (v *statusSliceValue) String() string {
	if v.target == nil {
		return ""
	}
	return validation.FormatValidValues(*v.target)
}

func (v *statusSliceValue) Set(s string) error {
	values, err := readCSV(s)
	if err != nil {
		return err
	}
	for _, value := range values {
		parsed, ok := validation.ParseEnum(value, ticket.ValidStatuses())
		if !ok {
			return validation.FormatInvalidValueError(errInvalid("status"), ticket.Status(value), ticket.ValidStatuses())
		}
		*v.target = append(*v.target, parsed)
	}
	return nil
}

func (v *statusSliceValue) Type() string {
	return "statuses"
}

// StatusesVar registers a repeatable status filter flag.
func StatusesVar(flags *pflag.FlagSet, target *[]ticket.Status, name, usage string) {
	flags.Var(&statusSliceValue{target: target}, name, usage)
}
