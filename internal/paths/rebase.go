// Package paths converts repository-relative paths into paths relative to the working directory.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnrelated is returned when two paths share no common base.
var ErrUnrelated = errors.New("paths cannot be related")

// Rebase expresses path, relative to the repository root, relative to offset instead.
// offset is the working directory relative to the same root; "" and "." mean the root itself.
func Rebase(path, offset string) (string, error) {
	if offset == "" {
		offset = "."
	}
	rel, err := filepath.Rel(offset, path)
	if err != nil {
		return "", fmt.Errorf("%w: %q from %q: %w", ErrUnrelated, path, offset, err)
	}
	return rel, nil
}

// Offset returns cwd relative to root. Both must be absolute and cwd must lie
// inside root. Symlinks are resolved first since git reports the physical toplevel.
func Offset(root, cwd string) (string, error) {
	if !filepath.IsAbs(root) || !filepath.IsAbs(cwd) {
		return "", fmt.Errorf("%w: %q and %q must both be absolute", ErrUnrelated, root, cwd)
	}
	rel, err := filepath.Rel(resolve(root), resolve(cwd))
	if err != nil {
		return "", fmt.Errorf("%w: %q from %q: %w", ErrUnrelated, cwd, root, err)
	}
	if escapes(rel) {
		return "", fmt.Errorf("%w: %q is outside %q", ErrUnrelated, cwd, root)
	}
	return rel, nil
}

// Within returns path relative to base and whether path is base or lies below it.
// No symlinks are resolved.
func Within(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || escapes(rel) {
		return "", false
	}
	return rel, true
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Join re-expresses a rebased path relative to the repository root.
func Join(offset, rel string) string {
	return filepath.Join(offset, rel)
}

func resolve(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}
