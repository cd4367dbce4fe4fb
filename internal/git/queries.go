package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ShowToplevel returns the absolute path of the repository containing dir.
func ShowToplevel(ctx context.Context, r Runner, dir string) (string, error) {
	root, err := r.Run(ctx, dir, "rev-parse", "--show-toplevel")
	if errors.Is(err, ErrNoResult) {
		return "", fmt.Errorf("%w: %w", ErrNotRepository, err)
	}
	if err != nil {
		return "", err
	}
	return root, nil
}

// GitDirs returns the git directory of the repository containing dir and the
// common directory it shares with linked worktrees. Both are absolute; they are
// equal for a plain clone. A worktree or submodule keeps its index and HEAD in
// gitDir and its refs in commonDir.
func GitDirs(ctx context.Context, r Runner, dir string) (gitDir, commonDir string, err error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--absolute-git-dir", "--git-common-dir")
	if errors.Is(err, ErrNoResult) {
		return "", "", fmt.Errorf("%w: %w", ErrNotRepository, err)
	}
	if err != nil {
		return "", "", err
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		return "", "", fmt.Errorf("%w: rev-parse printed %d lines, want 2", ErrInvalidOutput, len(lines))
	}
	gitDir = strings.TrimSpace(lines[0])
	commonDir = strings.TrimSpace(lines[1])
	// --git-common-dir is relative to dir unless the repository is elsewhere
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}
	return filepath.Clean(gitDir), filepath.Clean(commonDir), nil
}

// StatusPorcelain returns the porcelain status of the repository containing dir.
// A failing or silent status is reported as an empty string: there is nothing to list.
func StatusPorcelain(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain")
	if errors.Is(err, ErrNoResult) {
		return "", nil
	}
	return out, err
}
