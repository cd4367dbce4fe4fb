// Package models defines the data objects shared across git-changed packages.
package models

// StatusFile represents a file entry from git status --porcelain.
type StatusFile struct {
	Filename     string // Repo-relative path; the destination for renames and copies
	OrigFilename string // Source path for renames and copies, empty otherwise
	Status       string // Porcelain status code, trimmed (e.g. "M", "MM", "R", "??")
}

// IsRename reports whether the entry carries a source path.
func (f StatusFile) IsRename() bool {
	return f.OrigFilename != ""
}
