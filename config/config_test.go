package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Proposals.Include) == 0 {
		t.Fatal("expected default include patterns")
	}
	if cfg.Proposals.Include[0] != "proposals/**/*.md" {
		t.Errorf("expected default include proposals/**/*.md, got %s", cfg.Proposals.Include[0])
	}
	if !cfg.Rules.Links {
		t.Error("expected link checking enabled by default")
	}
	if cfg.Spelling.Severity != "warning" {
		t.Errorf("expected default spelling severity warning, got %s", cfg.Spelling.Severity)
	}
	if cfg.Watch.DebounceDelay != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %s", cfg.Watch.DebounceDelay)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "no include patterns",
			modify:  func(c *Config) { c.Proposals.Include = nil },
			wantErr: true,
		},
		{
			name:    "bad spelling severity",
			modify:  func(c *Config) { c.Spelling.Severity = "fatal" },
			wantErr: true,
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Lint.Workers = -1 },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.DebounceDelay = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cerr *Error
				if !errors.As(err, &cerr) {
					t.Errorf("expected *config.Error, got %T", err)
				}
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := DefaultConfig()
	other.Proposals.Root = "/somewhere"
	other.Proposals.Include = []string{"docs/*.md"}
	other.Rules.Unchecked = []int{1, 2}
	other.Spelling.Severity = "error"
	other.Lint.Workers = 4

	base.Merge(other)

	if base.Proposals.Root != "/somewhere" {
		t.Errorf("expected merged root /somewhere, got %s", base.Proposals.Root)
	}
	if len(base.Proposals.Include) != 1 || base.Proposals.Include[0] != "docs/*.md" {
		t.Errorf("expected merged include docs/*.md, got %v", base.Proposals.Include)
	}
	if len(base.Rules.Unchecked) != 2 {
		t.Errorf("expected merged unchecked ids, got %v", base.Rules.Unchecked)
	}
	if base.Spelling.Severity != "error" {
		t.Errorf("expected merged severity error, got %s", base.Spelling.Severity)
	}
	if base.Lint.Workers != 4 {
		t.Errorf("expected merged workers 4, got %d", base.Lint.Workers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proplint.yaml")
	content := `proposals:
  root: /repo
  include:
    - "specs/**/*.md"
rules:
  unchecked: [1234]
  links: false
spelling:
  dictionary: dictionary.txt
  severity: error
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Proposals.Root != "/repo" {
		t.Errorf("expected root /repo, got %s", cfg.Proposals.Root)
	}
	if cfg.Rules.Links {
		t.Error("expected links disabled")
	}
	if len(cfg.Rules.Unchecked) != 1 || cfg.Rules.Unchecked[0] != 1234 {
		t.Errorf("expected unchecked [1234], got %v", cfg.Rules.Unchecked)
	}
	if cfg.Spelling.Dictionary != "dictionary.txt" {
		t.Errorf("expected dictionary path, got %s", cfg.Spelling.Dictionary)
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proplint.yaml")
	if err := os.WriteFile(path, []byte("proposals: [not: a: mapping\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Errorf("expected *config.Error, got %T", err)
	}
}

func TestUncheckedIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unchecked.txt")
	if err := os.WriteFile(path, []byte("# exempt ids\n1234\n\n5678\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Proposals.Root = dir
	cfg.Rules.Unchecked = []int{42}
	cfg.Rules.UncheckedFile = "unchecked.txt"

	ids, err := cfg.UncheckedIDs()
	if err != nil {
		t.Fatalf("UncheckedIDs() error = %v", err)
	}
	want := []int{42, 1234, 5678}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
		}
	}
}

func TestUncheckedIDs_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unchecked.txt")
	if err := os.WriteFile(path, []byte("not-a-number\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Proposals.Root = dir
	cfg.Rules.UncheckedFile = "unchecked.txt"

	if _, err := cfg.UncheckedIDs(); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}
