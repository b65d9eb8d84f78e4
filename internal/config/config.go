// Package config handles loading muontickets.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/internal/paths"
	"github.com/amonks/muontickets/internal/validation"
	"github.com/amonks/muontickets/report"
)

// ProjectFile is the name of the per-repository config file.
const ProjectFile = "muontickets.toml"

// ErrInvalidConfig is returned when a config value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the muontickets.toml configuration file.
type Config struct {
	Tickets  Tickets  `toml:"tickets"`
	WIP      WIP      `toml:"wip"`
	Pick     Pick     `toml:"pick"`
	Claim    Claim    `toml:"claim"`
	Validate Validate `toml:"validate"`
	Report   Report   `toml:"report"`
	Hooks    Hooks    `toml:"hooks"`
}

// Tickets configures where tickets live and which types they may have.
type Tickets struct {
	// Dir is the tickets directory, relative to the repo root.
	Dir   string   `toml:"dir"`
	Types []string `toml:"types"`
}

// WIP configures the claimed-ticket limit.
type WIP struct {
	// Limit is the maximum number of claimed tickets per bucket. Zero or
	// less disables the limit.
	Limit int    `toml:"limit"`
	Scope string `toml:"scope"`
}

// Pick configures the scoring weights.
type Pick struct {
	PriorityWeight float64 `toml:"priority-weight"`
	EffortWeight   float64 `toml:"effort-weight"`
	AgeWeight      float64 `toml:"age-weight"`
	AgeCapDays     float64 `toml:"age-cap-days"`
}

// Claim configures claiming.
type Claim struct {
	BranchPrefix string `toml:"branch-prefix"`
}

// Validate configures validation defaults.
type Validate struct {
	EnforceDoneDeps bool `toml:"enforce-done-deps"`
}

// Report configures the report database.
type Report struct {
	Path string `toml:"path"`
}

// Hooks are scripts run after successful commands.
type Hooks struct {
	// OnClaim runs after a ticket is claimed.
	// Can include a shebang line; defaults to bash if not specified.
	OnClaim string `toml:"on-claim"`

	// OnDone runs after a ticket is marked done.
	OnDone string `toml:"on-done"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	w := board.DefaultWeights()
	return &Config{
		Tickets: Tickets{Dir: board.DefaultTicketsDir},
		WIP:     WIP{Limit: board.DefaultWIPLimit, Scope: string(board.WIPScopeOwner)},
		Pick: Pick{
			PriorityWeight: w.Priority,
			EffortWeight:   w.Effort,
			AgeWeight:      w.Age,
			AgeCapDays:     w.AgeCapDays,
		},
		Claim:  Claim{BranchPrefix: board.DefaultBranchPrefix},
		Report: Report{Path: report.DefaultPath},
	}
}

// Load loads configuration from the repo root and the global config file.
// Values come from the project file when it defines them, then the global
// file, then Default.
func Load(repoPath string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(repoPath, ProjectFile))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := merged.check(); err != nil {
		return nil, err
	}
	return merged, nil
}

func globalConfigPath() (string, error) {
	dir, err := paths.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, toml.MetaData{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	return &cfg, meta, nil
}

type layer struct {
	cfg  *Config
	meta toml.MetaData
}

func (l layer) defined(key ...string) bool {
	return l.meta.IsDefined(key...)
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}
	// Later layers win.
	layers := []layer{{globalCfg, globalMeta}, {projectCfg, projectMeta}}

	merged := Default()
	for _, l := range layers {
		c := l.cfg
		mergeString(&merged.Tickets.Dir, l.defined("tickets", "dir"), c.Tickets.Dir)
		if l.defined("tickets", "types") {
			merged.Tickets.Types = slices.Clone(c.Tickets.Types)
		}
		mergeValue(&merged.WIP.Limit, l.defined("wip", "limit"), c.WIP.Limit)
		mergeString(&merged.WIP.Scope, l.defined("wip", "scope"), c.WIP.Scope)
		mergeValue(&merged.Pick.PriorityWeight, l.defined("pick", "priority-weight"), c.Pick.PriorityWeight)
		mergeValue(&merged.Pick.EffortWeight, l.defined("pick", "effort-weight"), c.Pick.EffortWeight)
		mergeValue(&merged.Pick.AgeWeight, l.defined("pick", "age-weight"), c.Pick.AgeWeight)
		mergeValue(&merged.Pick.AgeCapDays, l.defined("pick", "age-cap-days"), c.Pick.AgeCapDays)
		mergeString(&merged.Claim.BranchPrefix, l.defined("claim", "branch-prefix"), c.Claim.BranchPrefix)
		mergeValue(&merged.Validate.EnforceDoneDeps, l.defined("validate", "enforce-done-deps"), c.Validate.EnforceDoneDeps)
		mergeString(&merged.Report.Path, l.defined("report", "path"), c.Report.Path)
		mergeString(&merged.Hooks.OnClaim, l.defined("hooks", "on-claim"), c.Hooks.OnClaim)
		mergeString(&merged.Hooks.OnDone, l.defined("hooks", "on-done"), c.Hooks.OnDone)
	}
	return merged
}

func mergeString(dst *string, defined bool, value string) {
	if defined {
		*dst = strings.TrimSpace(value)
	}
}

func mergeValue[T any](dst *T, defined bool, value T) {
	if defined {
		*dst = value
	}
}

func (c *Config) check() error {
	if c.Tickets.Dir == "" {
		return fmt.Errorf("%w: tickets.dir is empty", ErrInvalidConfig)
	}
	if filepath.IsAbs(c.Tickets.Dir) {
		return fmt.Errorf("%w: tickets.dir %q must be relative to the repo root", ErrInvalidConfig, c.Tickets.Dir)
	}
	if !board.WIPScope(c.WIP.Scope).IsValid() {
		return fmt.Errorf("%w: wip.scope %q (valid: %s)", ErrInvalidConfig, c.WIP.Scope,
			validation.FormatValidValues(board.ValidWIPScopes()))
	}
	if err := c.Weights().Check(); err != nil {
		return fmt.Errorf("%w: [pick]: %w", ErrInvalidConfig, err)
	}
	for _, typ := range c.Tickets.Types {
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("%w: tickets.types contains an empty type", ErrInvalidConfig)
		}
	}
	return nil
}

// TicketsDir returns the tickets directory under repoPath.
func (c *Config) TicketsDir(repoPath string) string {
	return filepath.Join(repoPath, c.Tickets.Dir)
}

// ReportPath returns the report database path under repoPath.
func (c *Config) ReportPath(repoPath string) string {
	if filepath.IsAbs(c.Report.Path) {
		return c.Report.Path
	}
	return filepath.Join(repoPath, c.Report.Path)
}

// Weights returns the configured pick weights.
func (c *Config) Weights() board.Weights {
	return board.Weights{
		Priority:   c.Pick.PriorityWeight,
		Effort:     c.Pick.EffortWeight,
		Age:        c.Pick.AgeWeight,
		AgeCapDays: c.Pick.AgeCapDays,
	}
}

// StoreOptions returns the board options the config describes.
func (c *Config) StoreOptions() board.Options {
	return board.Options{
		Types:           slices.Clone(c.Tickets.Types),
		WIP:             board.WIPPolicy{Limit: c.WIP.Limit, Scope: board.WIPScope(c.WIP.Scope)},
		Weights:         c.Weights(),
		BranchPrefix:    c.Claim.BranchPrefix,
		EnforceDoneDeps: c.Validate.EnforceDoneDeps,
	}
}

// HookEnv is the environment passed to hook scripts.
type HookEnv struct {
	TicketID string
	Owner    string
	Branch   string
	Status   string
}

// Environ returns the variables as KEY=value pairs.
func (e HookEnv) Environ() []string {
	return []string{
		"MT_TICKET_ID=" + e.TicketID,
		"MT_OWNER=" + e.Owner,
		"MT_BRANCH=" + e.Branch,
		"MT_STATUS=" + e.Status,
	}
}

// RunScript executes a script in the given directory with extra environment
// variables appended to the process environment.
// If the script starts with a shebang (#!), that interpreter is used.
// Otherwise, the script is run with /bin/bash.
func RunScript(dir, script string, env ...string) error {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil
	}

	var interpreter string
	var scriptBody string

	if strings.HasPrefix(script, "#!") {
		lines := strings.SplitN(script, "\n", 2)
		interpreter = strings.TrimSpace(strings.TrimPrefix(lines[0], "#!"))
		if len(lines) > 1 {
			scriptBody = lines[1]
		}
	} else {
		interpreter = "/bin/bash"
		scriptBody = script
	}

	// Parse interpreter and args (e.g., "/usr/bin/env python3" or "/bin/bash -e")
	parts := strings.Fields(interpreter)
	if len(parts) == 0 {
		return fmt.Errorf("empty interpreter in shebang")
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = strings.NewReader(scriptBody)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
