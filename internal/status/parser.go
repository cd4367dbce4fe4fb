package status

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/chmouel/git-changed/internal/models"
)

// renameSeparator joins source and destination of a rename or copy entry.
const renameSeparator = " -> "

var (
	// ErrMalformedLine is returned for a line without a code/path separator.
	ErrMalformedLine = errors.New("malformed status line")
	// ErrAmbiguousRename is returned when a rename entry does not split into exactly two paths,
	// which happens when a filename itself contains " -> ".
	ErrAmbiguousRename = errors.New("ambiguous rename: file with '->' in the name")
)

// ParseLine extracts the affected file from a single porcelain status line.
// For renames and copies the destination becomes Filename and the source OrigFilename.
func ParseLine(line string) (models.StatusFile, error) {
	trimmed := strings.TrimSpace(line)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return models.StatusFile{}, fmt.Errorf("%w: no whitespace in %q", ErrMalformedLine, line)
	}

	code := Code(trimmed[:idx])
	field := strings.TrimSpace(trimmed[idx:])

	if !code.IsRenameOrCopy() {
		return models.StatusFile{
			Filename: unquote(field),
			Status:   string(code),
		}, nil
	}

	parts := strings.Split(field, renameSeparator)
	if len(parts) != 2 {
		return models.StatusFile{}, fmt.Errorf("%w: %q", ErrAmbiguousRename, field)
	}
	return models.StatusFile{
		Filename:     unquote(parts[1]),
		OrigFilename: unquote(parts[0]),
		Status:       string(code),
	}, nil
}

// ParseLines parses every non-blank line of text, preserving order.
func ParseLines(text string) ([]models.StatusFile, error) {
	lines := strings.Split(text, "\n")
	files := make([]models.StatusFile, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		file, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// unquote drops a single pair of surrounding double quotes; git's C-style escapes are left as is.
func unquote(path string) string {
	path = strings.TrimPrefix(path, `"`)
	return strings.TrimSuffix(path, `"`)
}
