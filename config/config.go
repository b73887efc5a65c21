// Package config provides configuration loading and management for proplint.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Error marks a configuration problem. No meaningful validation can proceed
// without a usable configuration, so callers abort the whole run on it.
type Error struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Config represents the complete proplint configuration
type Config struct {
	Proposals ProposalsConfig `yaml:"proposals"`
	Rules     RulesConfig     `yaml:"rules"`
	Spelling  SpellingConfig  `yaml:"spelling"`
	Style     StyleConfig     `yaml:"style"`
	Lint      LintConfig      `yaml:"lint"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ProposalsConfig locates the proposal documents
type ProposalsConfig struct {
	// Root is the repository root path (auto-detected from git if empty)
	Root string `yaml:"root"`
	// Include lists glob patterns for proposal files, relative to Root
	Include []string `yaml:"include"`
	// Exclude lists glob patterns to skip
	Exclude []string `yaml:"exclude"`
}

// RulesConfig tunes the validation rules
type RulesConfig struct {
	// Unchecked lists proposal ids exempt from reference checks
	Unchecked []int `yaml:"unchecked"`
	// UncheckedFile is an optional file of additional exempt ids, one per line
	UncheckedFile string `yaml:"unchecked_file"`
	// Links controls body link checking
	Links bool `yaml:"links"`
}

// SpellingConfig configures the body spell checker
type SpellingConfig struct {
	// Dictionary is the path to the base wordlist (empty = disabled)
	Dictionary string `yaml:"dictionary"`
	// Accepted lists extra accepted spellings
	Accepted []string `yaml:"accepted"`
	// Severity is "warning" or "error"
	Severity string `yaml:"severity"`
}

// StyleConfig configures the prose formatting rules
type StyleConfig struct {
	// MaxLineLength flags body lines longer than this (0 = disabled)
	MaxLineLength int `yaml:"max_line_length"`
	// NoTrailingWhitespace flags trailing spaces and tabs
	NoTrailingWhitespace bool `yaml:"no_trailing_whitespace"`
	// RequireTopHeading requires bodies to open with a level-one heading
	RequireTopHeading bool `yaml:"require_top_heading"`
}

// LintConfig tunes the validation run
type LintConfig struct {
	// Workers is the parallel validation fan-out (0 = number of CPUs)
	Workers int `yaml:"workers"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before revalidating
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	// ExcludeDirs lists directory names to skip
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Proposals: ProposalsConfig{
			Root:    "", // Auto-detect
			Include: []string{"proposals/**/*.md"},
			Exclude: nil,
		},
		Rules: RulesConfig{
			Unchecked: nil,
			Links:     true,
		},
		Spelling: SpellingConfig{
			Dictionary: "",
			Accepted:   nil,
			Severity:   "warning",
		},
		Style: StyleConfig{
			MaxLineLength:        0,
			NoTrailingWhitespace: true,
			RequireTopHeading:    false,
		},
		Lint: LintConfig{
			Workers: 0, // Number of CPUs
		},
		Watch: WatchConfig{
			DebounceDelay: 500 * time.Millisecond,
			ExcludeDirs:   []string{".git", "node_modules", "vendor"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Proposals.Include) == 0 {
		return &Error{Err: fmt.Errorf("proposals.include must list at least one pattern")}
	}
	if c.Spelling.Severity != "warning" && c.Spelling.Severity != "error" {
		return &Error{Err: fmt.Errorf("spelling.severity must be %q or %q, got %q", "warning", "error", c.Spelling.Severity)}
	}
	if c.Lint.Workers < 0 {
		return &Error{Err: fmt.Errorf("lint.workers must not be negative")}
	}
	if c.Watch.DebounceDelay < 0 {
		return &Error{Err: fmt.Errorf("watch.debounce_delay must not be negative")}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Proposals
	if other.Proposals.Root != "" {
		c.Proposals.Root = other.Proposals.Root
	}
	if len(other.Proposals.Include) > 0 {
		c.Proposals.Include = other.Proposals.Include
	}
	if len(other.Proposals.Exclude) > 0 {
		c.Proposals.Exclude = other.Proposals.Exclude
	}

	// Rules
	if len(other.Rules.Unchecked) > 0 {
		c.Rules.Unchecked = other.Rules.Unchecked
	}
	if other.Rules.UncheckedFile != "" {
		c.Rules.UncheckedFile = other.Rules.UncheckedFile
	}
	c.Rules.Links = other.Rules.Links

	// Spelling
	if other.Spelling.Dictionary != "" {
		c.Spelling.Dictionary = other.Spelling.Dictionary
	}
	if len(other.Spelling.Accepted) > 0 {
		c.Spelling.Accepted = other.Spelling.Accepted
	}
	if other.Spelling.Severity != "" {
		c.Spelling.Severity = other.Spelling.Severity
	}

	// Style
	if other.Style.MaxLineLength != 0 {
		c.Style.MaxLineLength = other.Style.MaxLineLength
	}
	c.Style.NoTrailingWhitespace = other.Style.NoTrailingWhitespace
	c.Style.RequireTopHeading = other.Style.RequireTopHeading

	// Lint
	if other.Lint.Workers != 0 {
		c.Lint.Workers = other.Lint.Workers
	}

	// Watch
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}
}
