package config

import (
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

const FileName = ".sanctify.yml"

// DefaultApproachingThreshold is the fraction of the ledger limit at which a
// size warning is raised; strict mode lowers it.
const (
	DefaultLedgerLimit          = 64000
	DefaultApproachingThreshold = 0.9
	StrictApproachingThreshold  = 0.8
)

// CustomRule is a user-supplied regex matched against source lines.
type CustomRule struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// Config is the resolved analysis configuration. It is constructed once per
// run and read-only afterwards.
type Config struct {
	IgnorePaths          []string     `yaml:"ignore_paths" json:"ignore_paths"`
	EnabledRules         []string     `yaml:"enabled_rules" json:"enabled_rules"`
	LedgerLimit          int          `yaml:"ledger_limit" json:"ledger_limit"`
	ApproachingThreshold float64      `yaml:"approaching_threshold" json:"approaching_threshold"`
	StrictMode           bool         `yaml:"strict_mode" json:"strict_mode"`
	CustomRules          []CustomRule `yaml:"custom_rules" json:"custom_rules"`
}

func Default() Config {
	return Config{
		IgnorePaths:          []string{"target", ".git"},
		LedgerLimit:          DefaultLedgerLimit,
		ApproachingThreshold: DefaultApproachingThreshold,
	}
}

// Load searches upwards from startDir for a .sanctify.yml and merges it over
// the defaults. A missing file is not an error; a malformed one is.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, &model.IOError{Path: candidate, Cause: err}
			}
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, candidate, &model.ConfigError{Reason: "invalid " + FileName, Cause: err}
			}
			return cfg, candidate, cfg.Validate()
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached root
			break
		}
		dir = parent
	}
	return cfg, "", nil
}

// Validate checks invariants the engine relies on.
func (c Config) Validate() error {
	if c.LedgerLimit <= 0 {
		return &model.ConfigError{Reason: "ledger_limit must be positive"}
	}
	if c.ApproachingThreshold <= 0 || c.ApproachingThreshold > 1 {
		return &model.ConfigError{Reason: "approaching_threshold must be in (0, 1]"}
	}
	for _, r := range c.CustomRules {
		if r.Name == "" {
			return &model.ConfigError{Reason: "custom rule without a name"}
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return &model.ConfigError{Reason: "custom rule " + r.Name + " has an invalid pattern", Cause: err}
		}
	}
	return nil
}

// RuleEnabled reports whether the named analyzer should run. An empty
// enabled_rules list means every analyzer keeps its registered default.
func (c Config) RuleEnabled(name string, defaultEnabled bool) bool {
	if len(c.EnabledRules) == 0 {
		return defaultEnabled
	}
	for _, n := range c.EnabledRules {
		if n == name {
			return true
		}
	}
	return false
}

// SizeRatio is the effective approaching-limit ratio for ledger warnings.
func (c Config) SizeRatio() float64 {
	ratio := c.ApproachingThreshold
	if ratio == 0 {
		ratio = DefaultApproachingThreshold
	}
	if c.StrictMode && ratio > StrictApproachingThreshold {
		ratio = StrictApproachingThreshold
	}
	return ratio
}

// Ignored reports whether a path matches any ignore glob. Globs match the
// path itself or any of its ancestor components.
func (c Config) Ignored(path string) bool {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range c.IgnorePaths {
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
		for _, part := range splitPath(clean) {
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

func splitPath(p string) []string {
	var parts []string
	cur := p
	for cur != "." && cur != "/" && cur != "" {
		parts = append(parts, filepath.Base(cur))
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return parts
}
