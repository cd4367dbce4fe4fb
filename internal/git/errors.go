package git

import "errors"

var (
	ErrNoResult        = errors.New("command produced no result")
	ErrCommandNotFound = errors.New("command not found")
	ErrInvalidOutput   = errors.New("command output is not valid UTF-8")
	ErrNotRepository   = errors.New("not in git repo")
)
