// Package status parses git status --porcelain output into StatusFile entries.
package status

import "strings"

// Code is a porcelain status code such as "M", "R", "AD" or "??".
type Code string

// IsRenameOrCopy reports whether the file field carries an "old -> new" pair.
func (c Code) IsRenameOrCopy() bool {
	return strings.ContainsAny(string(c), "RC")
}

// IsUnmerged reports whether the code describes a merge conflict.
func (c Code) IsUnmerged() bool {
	return strings.ContainsRune(string(c), 'U') || c == "AA" || c == "DD"
}

// IsDeleted reports whether the file no longer exists in the working tree or index.
// "DD" (both deleted) counts; other unmerged combinations do not.
func (c Code) IsDeleted() bool {
	if c == "DD" {
		return true
	}
	return !c.IsUnmerged() && strings.ContainsRune(string(c), 'D')
}

// IsUntracked reports whether the file is not known to git.
func (c Code) IsUntracked() bool {
	return c == "??"
}
