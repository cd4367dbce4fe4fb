// Package git runs the git binary and exposes the few queries git-changed needs.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	log "github.com/chmouel/git-changed/internal/log"
)

// DefaultBinary is the git executable looked up on PATH when none is configured.
const DefaultBinary = "git"

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// Runner executes a git command in dir and returns its trimmed standard output.
// Implementations return ErrNoResult when the command fails or prints nothing.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner executes the configured git binary.
type ExecRunner struct {
	Binary string
}

// NewExecRunner returns a runner for binary, falling back to DefaultBinary.
func NewExecRunner(binary string) *ExecRunner {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{Binary: strings.TrimSpace(binary)}
}

// Run implements Runner.
func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	command := strings.TrimSpace(e.Binary + " " + strings.Join(args, " "))
	log.Printf("run: %s (cwd=%s)", command, dir)

	bin, err := LookupPath(e.Binary)
	if err != nil {
		log.Printf("error: command not found: %s", e.Binary)
		return "", fmt.Errorf("%w: %s: %w", ErrCommandNotFound, e.Binary, err)
	}

	// #nosec G204 -- binary comes from local config and arguments from internal callers
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.Printf("error: %s: %v", command, err)
			return "", fmt.Errorf("%w: %s: %w", ErrCommandNotFound, e.Binary, err)
		}
		suffix := fmt.Sprintf(" (exit %d)", exitErr.ExitCode())
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			suffix += ": " + detail
		}
		log.Printf("error: %s%s", command, suffix)
		return "", fmt.Errorf("%w: %s%s", ErrNoResult, command, suffix)
	}

	if !utf8.Valid(stdout.Bytes()) {
		log.Printf("error: %s: invalid UTF-8 output", command)
		return "", fmt.Errorf("%w: %s", ErrInvalidOutput, command)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		log.Printf("ok: %s (empty)", command)
		return "", fmt.Errorf("%w: %s: empty output", ErrNoResult, command)
	}
	log.Printf("ok: %s", command)
	return out, nil
}
