package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "proplint.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/proplint"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/proplint/config.yaml)
// 3. Project config (proplint.yaml in current or parent directories)
//
// When explicitPath is non-empty the layering is skipped and only that file
// is applied on top of the defaults; a missing explicit file is an Error.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	if explicitPath != "" {
		explicit, err := LoadFromFile(explicitPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &Error{Path: explicitPath, Err: err}
			}
			return nil, err
		}
		config.Merge(explicit)
	} else {
		// Load user config
		userConfigPath := l.userConfigPath()
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		// Load project config
		projectConfigPath := l.findProjectConfig()
		if projectConfigPath != "" {
			projectConfig, err := LoadFromFile(projectConfigPath)
			if err != nil {
				return nil, err
			}
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Debug("No project config found")
		}
	}

	// Auto-detect repo root if not set
	if config.Proposals.Root == "" {
		if gitRoot := l.detectGitRoot(); gitRoot != "" {
			config.Proposals.Root = gitRoot
			l.logger.Debug("Auto-detected git root", slog.String("path", gitRoot))
		} else {
			// Fall back to current directory
			if cwd, err := os.Getwd(); err == nil {
				config.Proposals.Root = cwd
				l.logger.Debug("Using current directory as root", slog.String("path", cwd))
			}
		}
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// UncheckedIDs returns the complete set of ids exempt from reference
// checks: the inline list plus the optional unchecked file.
func (c *Config) UncheckedIDs() ([]int, error) {
	ids := append([]int(nil), c.Rules.Unchecked...)

	if c.Rules.UncheckedFile == "" {
		return ids, nil
	}

	path := c.Rules.UncheckedFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Proposals.Root, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("line %d: %q is not a proposal id", lineNo, line)}
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return ids, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for proplint.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// detectGitRoot finds the git repository root from current directory
func (l *Loader) detectGitRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
