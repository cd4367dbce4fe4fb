// Package cli drives the git-changed pipeline: locate the repository, read its
// status, rebase each path onto the working directory and print it.
package cli

import (
	"context"
	"io"

	"github.com/chmouel/git-changed/internal/config"
	"github.com/chmouel/git-changed/internal/git"
	"github.com/chmouel/git-changed/internal/log"
	"github.com/chmouel/git-changed/internal/models"
	"github.com/chmouel/git-changed/internal/paths"
	"github.com/chmouel/git-changed/internal/status"
)

// Env carries the process state the pipeline depends on.
type Env struct {
	WorkDir string // Absolute current working directory
}

// Options controls which entries are listed and how they are printed.
type Options struct {
	IncludeDeleted   bool
	IncludeUntracked bool
	Quote            bool
	NullTerminated   bool
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		IncludeDeleted:   cfg.IncludeDeleted,
		IncludeUntracked: cfg.IncludeUntracked,
		Quote:            cfg.QuoteOutput,
		NullTerminated:   cfg.NullTerminated,
	}
}

// Changed returns the changed files of the repository containing env.WorkDir,
// relative to env.WorkDir and in status order. A clean tree yields no paths.
func Changed(ctx context.Context, r git.Runner, env Env, opts Options) ([]string, error) {
	root, err := git.ShowToplevel(ctx, r, env.WorkDir)
	if err != nil {
		return nil, err
	}

	offset, err := paths.Offset(root, env.WorkDir)
	if err != nil {
		return nil, err
	}
	log.Printf("repository root %s, offset %s", root, offset)

	raw, err := git.StatusPorcelain(ctx, r, env.WorkDir)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	files, err := status.ParseLines(raw)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(files))
	for _, file := range files {
		if !opts.keep(file) {
			log.Printf("skip: %s %s", file.Status, file.Filename)
			continue
		}
		rel, err := paths.Rebase(file.Filename, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// ListChanged writes the changed files to w, one per entry.
func ListChanged(ctx context.Context, r git.Runner, env Env, opts Options, w io.Writer) error {
	files, err := Changed(ctx, r, env, opts)
	if err != nil {
		return err
	}
	return writePaths(w, files, opts)
}

func (o Options) keep(file models.StatusFile) bool {
	code := status.Code(file.Status)
	if !o.IncludeDeleted && code.IsDeleted() {
		return false
	}
	if !o.IncludeUntracked && code.IsUntracked() {
		return false
	}
	return true
}

func writePaths(w io.Writer, files []string, opts Options) error {
	sep := "\n"
	if opts.NullTerminated {
		sep = "\x00"
	}
	for _, f := range files {
		if opts.Quote {
			f = `"` + f + `"`
		}
		if _, err := io.WriteString(w, f+sep); err != nil {
			return err
		}
	}
	return nil
}
