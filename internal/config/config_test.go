package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withGitConfig installs a git config mock for the duration of the test.
func withGitConfig(t *testing.T, global, local string) {
	t.Helper()
	gitConfigMock = func(_ string, args []string, _ string) (string, error) {
		for _, a := range args {
			switch a {
			case "--global":
				return global, nil
			case "--local":
				return local, nil
			}
		}
		// rev-parse --git-dir from isInGitRepo
		return ".git", nil
	}
	t.Cleanup(func() { gitConfigMock = nil })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "git", cfg.GitBinary)
	assert.True(t, cfg.IncludeDeleted)
	assert.True(t, cfg.IncludeUntracked)
	assert.True(t, cfg.QuoteOutput)
	assert.False(t, cfg.NullTerminated)
	assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
	assert.Empty(t, cfg.DebugLog)
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		def      bool
		expected bool
	}{
		{"nil keeps default", nil, true, true},
		{"bool", false, true, false},
		{"int zero", 0, true, false},
		{"string yes", "yes", false, true},
		{"string off", " OFF ", true, false},
		{"garbage keeps default", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceBool(tt.input, tt.def))
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"git_binary":        " /opt/git/bin/git ",
		"include_deleted":   false,
		"include_untracked": "no",
		"quote_output":      false,
		"null_terminated":   true,
		"watch_interval":    750,
		"debug_log":         "/tmp/changed.log",
	})

	assert.Equal(t, "/opt/git/bin/git", cfg.GitBinary)
	assert.False(t, cfg.IncludeDeleted)
	assert.False(t, cfg.IncludeUntracked)
	assert.False(t, cfg.QuoteOutput)
	assert.True(t, cfg.NullTerminated)
	assert.Equal(t, 750*time.Millisecond, cfg.WatchInterval)
	assert.Equal(t, "/tmp/changed.log", cfg.DebugLog)
}

func TestParseConfigIgnoresInvalidValues(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"git_binary":     "   ",
		"watch_interval": -5,
	})

	assert.Equal(t, "git", cfg.GitBinary)
	assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		withGitConfig(t, "", "")

		cfg, err := LoadConfig("", "", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml file is applied", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		withGitConfig(t, "", "")

		dir := filepath.Join(tmpDir, "git-changed")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("quote_output: false\ninclude_deleted: false\n"), 0o600))

		cfg, err := LoadConfig("", "", "")
		require.NoError(t, err)
		assert.False(t, cfg.QuoteOutput)
		assert.False(t, cfg.IncludeDeleted)
		assert.True(t, cfg.IncludeUntracked)
	})

	t.Run("invalid yaml is reported", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		withGitConfig(t, "", "")

		dir := filepath.Join(tmpDir, "git-changed")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("quote_output: [\n"), 0o600))

		cfg, err := LoadConfig("", "", "")
		require.Error(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("config file outside config dir is rejected", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		withGitConfig(t, "", "")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"), "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must reside inside")
	})

	t.Run("git config layers over yaml, local over global", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		withGitConfig(t,
			"changed.quote_output true\nchanged.include_untracked false\n",
			"changed.include_untracked true\n",
		)

		dir := filepath.Join(tmpDir, "git-changed")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("quote_output: false\n"), 0o600))

		cfg, err := LoadConfig("", t.TempDir(), "")
		require.NoError(t, err)
		assert.True(t, cfg.QuoteOutput)
		assert.True(t, cfg.IncludeUntracked)
	})
}

func TestLoadConfigGitBinary(t *testing.T) {
	record := func(t *testing.T) *[]string {
		t.Helper()
		var binaries []string
		gitConfigMock = func(binary string, _ []string, _ string) (string, error) {
			binaries = append(binaries, binary)
			return "", nil
		}
		t.Cleanup(func() { gitConfigMock = nil })
		return &binaries
	}

	t.Run("explicit binary", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		binaries := record(t)

		_, err := LoadConfig("", t.TempDir(), "/opt/git/bin/git")
		require.NoError(t, err)
		require.NotEmpty(t, *binaries)
		for _, b := range *binaries {
			assert.Equal(t, "/opt/git/bin/git", b)
		}
	})

	t.Run("binary from yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		binaries := record(t)

		dir := filepath.Join(tmpDir, "git-changed")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("git_binary: /usr/local/bin/git\n"), 0o600))

		_, err := LoadConfig("", "", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"/usr/local/bin/git"}, *binaries)
	})

	t.Run("default binary", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		binaries := record(t)

		_, err := LoadConfig("", "", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"git"}, *binaries)
	})
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyCLIOverrides([]string{
		"changed.quote_output=false",
		"changed.git_binary=/usr/local/bin/git",
		"changed.quote_output=true",
	}))

	assert.True(t, cfg.QuoteOutput)
	assert.Equal(t, "/usr/local/bin/git", cfg.GitBinary)

	err := cfg.ApplyCLIOverrides([]string{"quote_output=false"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with 'changed.'")
}

func TestIsPathWithin(t *testing.T) {
	base := filepath.Join(string(os.PathSeparator), "home", "user", ".config", "git-changed")

	assert.True(t, isPathWithin(base, base))
	assert.True(t, isPathWithin(base, filepath.Join(base, "config.yaml")))
	assert.False(t, isPathWithin(base, filepath.Join(base, "..", "other.yaml")))
}
