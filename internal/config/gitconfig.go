package config

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// gitConfigMock allows tests to mock git config output.
var gitConfigMock func(binary string, args []string, repoPath string) (string, error)

// runGitConfig executes a git config command with binary and returns raw output.
func runGitConfig(binary string, args []string, repoPath string) (string, error) {
	if binary == "" {
		binary = DefaultConfig().GitBinary
	}
	if gitConfigMock != nil {
		return gitConfigMock(binary, args, repoPath)
	}

	if _, err := exec.LookPath(binary); err != nil {
		// No git means no git config layer; the pipeline reports the missing binary itself.
		return "", nil
	}

	cmd := exec.Command(binary, args...) // #nosec G204 -- binary is the configured git executable
	if repoPath != "" {
		cmd.Dir = repoPath
	}

	output, err := cmd.Output()
	if err != nil {
		// git config returns exit code 1 when key not found (not an error)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// parseGitConfigOutput parses git config output into multi-value map.
// Input format: "changed.include_deleted false\nchanged.git_binary /usr/bin/git\n"
func parseGitConfigOutput(output string) map[string][]string {
	configMap := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// values may contain spaces
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], keyPrefix)
		configMap[key] = append(configMap[key], parts[1])
	}
	return configMap
}

// convertGitConfigToParseConfig keeps the last value of each key, matching git's own precedence.
func convertGitConfigToParseConfig(gitCfg map[string][]string) map[string]any {
	result := make(map[string]any, len(gitCfg))
	for key, values := range gitCfg {
		if len(values) == 0 {
			continue
		}
		result[key] = values[len(values)-1]
	}
	return result
}

// loadGitConfig reads git config values and returns map for applyConfig.
func loadGitConfig(binary string, globalOnly bool, repoPath string) (map[string]any, error) {
	args := []string{"config", "--get-regexp", "^changed\\."}
	if globalOnly {
		args = append(args, "--global")
	} else {
		args = append(args, "--local")
	}

	output, err := runGitConfig(binary, args, repoPath)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return map[string]any{}, nil
	}
	return convertGitConfigToParseConfig(parseGitConfigOutput(output)), nil
}

// isInGitRepo checks if path is in a git repository.
func isInGitRepo(binary, path string) bool {
	if path == "" {
		return false
	}
	if binary == "" {
		binary = DefaultConfig().GitBinary
	}
	if gitConfigMock != nil {
		_, err := gitConfigMock(binary, []string{"rev-parse", "--git-dir"}, path)
		return err == nil
	}
	cmd := exec.Command(binary, "rev-parse", "--git-dir") // #nosec G204 -- binary is the configured git executable
	cmd.Dir = path
	return cmd.Run() == nil
}

// determineRepoPath returns repo path for local git config lookup.
func determineRepoPath(binary, workDir string) string {
	if isInGitRepo(binary, workDir) {
		return workDir
	}
	return ""
}

// parseCLIConfigOverrides parses --config=changed.key=value format.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any, len(overrides))
	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: changed.key=value (note: use = not space)", override)
		}

		fullKey := parts[0]
		if !strings.HasPrefix(fullKey, keyPrefix) {
			return nil, fmt.Errorf("config override key must start with 'changed.': %q", fullKey)
		}

		key := strings.TrimPrefix(fullKey, keyPrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}
		// later overrides win
		result[key] = parts[1]
	}
	return result, nil
}
