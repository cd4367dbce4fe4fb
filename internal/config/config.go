// Package config loads git-changed configuration from YAML, git config and CLI overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// keyPrefix namespaces git-changed keys in git config and --config overrides.
const keyPrefix = "changed."

// DefaultWatchInterval is the debounce applied to filesystem events in watch mode.
const DefaultWatchInterval = 300 * time.Millisecond

// AppConfig defines the git-changed configuration options.
type AppConfig struct {
	GitBinary        string        // git executable, looked up on PATH
	IncludeDeleted   bool          // List entries whose status denotes a deletion (default: true)
	IncludeUntracked bool          // List "??" entries (default: true)
	QuoteOutput      bool          // Wrap each printed path in double quotes (default: true)
	NullTerminated   bool          // Separate entries with NUL instead of newline
	WatchInterval    time.Duration // Debounce for watch mode
	DebugLog         string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		GitBinary:        "git",
		IncludeDeleted:   true,
		IncludeUntracked: true,
		QuoteOutput:      true,
		WatchInterval:    DefaultWatchInterval,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// applyConfig overlays the keys present in data onto cfg. Absent keys keep their value.
func applyConfig(cfg *AppConfig, data map[string]any) {
	if bin, ok := data["git_binary"].(string); ok {
		if bin = strings.TrimSpace(bin); bin != "" {
			cfg.GitBinary = bin
		}
	}
	if debugLog, ok := data["debug_log"].(string); ok {
		if debugLog = strings.TrimSpace(debugLog); debugLog != "" {
			cfg.DebugLog = debugLog
		}
	}

	cfg.IncludeDeleted = coerceBool(data["include_deleted"], cfg.IncludeDeleted)
	cfg.IncludeUntracked = coerceBool(data["include_untracked"], cfg.IncludeUntracked)
	cfg.QuoteOutput = coerceBool(data["quote_output"], cfg.QuoteOutput)
	cfg.NullTerminated = coerceBool(data["null_terminated"], cfg.NullTerminated)

	// watch_interval is in milliseconds; non-positive values are ignored
	if ms := coerceInt(data["watch_interval"], 0); ms > 0 {
		cfg.WatchInterval = time.Duration(ms) * time.Millisecond
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	applyConfig(cfg, data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the YAML configuration file, then layers global and
// repository-local git config (changed.* keys) found from workDir on top.
// Git config is read with gitBinary, or with the git_binary the YAML layer
// settles on when gitBinary is empty.
// A missing file is not an error; an unreadable or invalid one is reported
// together with the defaults.
func LoadConfig(configPath, workDir, gitBinary string) (*AppConfig, error) {
	configBase := filepath.Clean(filepath.Join(getConfigDir(), "git-changed"))

	var paths []string
	if configPath != "" {
		expanded, err := expandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	cfg := DefaultConfig()
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
		applyConfig(cfg, yamlData)
		break
	}

	if gitBinary == "" {
		gitBinary = cfg.GitBinary
	}
	globalCfg, err := loadGitConfig(gitBinary, true, "")
	if err != nil {
		return cfg, fmt.Errorf("failed to read global git config: %w", err)
	}
	applyConfig(cfg, globalCfg)

	if repoPath := determineRepoPath(gitBinary, workDir); repoPath != "" {
		localCfg, err := loadGitConfig(gitBinary, false, repoPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read local git config: %w", err)
		}
		applyConfig(cfg, localCfg)
	}

	return cfg, nil
}

// ApplyCLIOverrides applies --config=changed.key=value overrides, the highest precedence layer.
func (c *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	applyConfig(c, data)
	return nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

// ExpandPath resolves a leading ~ and environment variables in path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
