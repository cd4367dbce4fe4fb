package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chmouel/git-changed/internal/config"
	"github.com/chmouel/git-changed/internal/git"
	"github.com/chmouel/git-changed/internal/log"
	"github.com/chmouel/git-changed/internal/paths"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\x1b[H\x1b[2J"

// WatchOptions tunes watch mode.
type WatchOptions struct {
	Interval    time.Duration // Debounce applied to filesystem events
	ClearScreen bool          // Clear the terminal before each listing
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// Watch prints the changed files, then reprints them whenever the working tree,
// the index, HEAD or a ref changes and the listing differs. It returns nil when
// ctx is done.
func Watch(ctx context.Context, r git.Runner, env Env, opts Options, w io.Writer, wopts WatchOptions) error {
	root, err := git.ShowToplevel(ctx, r, env.WorkDir)
	if err != nil {
		return err
	}
	gitDir, commonDir, err := git.GitDirs(ctx, r, root)
	if err != nil {
		return err
	}
	if wopts.Interval <= 0 {
		wopts.Interval = config.DefaultWatchInterval
	}
	gw := gitWatch{gitDir: gitDir, commonDir: commonDir}
	log.Printf("watching %s, git dir %s, common dir %s", root, gitDir, commonDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	addWatchTree(watcher, root)
	addWatchDir(watcher, gitDir)
	addWatchDir(watcher, commonDir)
	addWatchTree(watcher, filepath.Join(commonDir, "refs"))

	var (
		last     []byte
		rendered bool
		index    fileStamp
	)
	render := func() error {
		var buf bytes.Buffer
		err := ListChanged(ctx, r, env, opts, &buf)
		// git status may refresh the index; that write is ours, not a change.
		index = stampOf(gw.index())
		if err != nil {
			if ctx.Err() != nil {
				// git was killed by the cancellation, not a real failure
				return nil
			}
			return err
		}
		if rendered && bytes.Equal(buf.Bytes(), last) {
			return nil
		}
		last, rendered = buf.Bytes(), true
		if wopts.ClearScreen {
			if _, err := io.WriteString(w, clearScreen); err != nil {
				return err
			}
		}
		_, err = w.Write(last)
		return err
	}

	if err := render(); err != nil {
		return err
	}

	// Armed by the first event.
	timer := time.NewTimer(wopts.Interval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if gw.owns(event.Name) {
				if !gw.triggers(event.Name) {
					continue
				}
				if event.Name == gw.index() && stampOf(event.Name).same(index) {
					continue
				}
			}
			if event.Op&fsnotify.Create != 0 && (!gw.owns(event.Name) || gw.isRef(event.Name)) {
				addWatchTree(watcher, event.Name)
			}
			timer.Reset(wopts.Interval)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case <-timer.C:
			if err := render(); err != nil {
				return err
			}
		}
	}
}

// gitWatch classifies events under the repository's git directories.
type gitWatch struct {
	gitDir    string // index and HEAD
	commonDir string // refs and packed-refs
}

func (g gitWatch) index() string {
	return filepath.Join(g.gitDir, "index")
}

// owns reports whether path lies in either git directory.
func (g gitWatch) owns(path string) bool {
	if _, ok := paths.Within(g.gitDir, path); ok {
		return true
	}
	_, ok := paths.Within(g.commonDir, path)
	return ok
}

// triggers reports whether a change to path can alter the listing.
// Lock files come and go with every git command, git status included.
func (g gitWatch) triggers(path string) bool {
	if strings.HasSuffix(path, ".lock") {
		return false
	}
	if rel, ok := paths.Within(g.gitDir, path); ok && (rel == "index" || rel == "HEAD") {
		return true
	}
	return g.isRef(path)
}

func (g gitWatch) isRef(path string) bool {
	rel, ok := paths.Within(g.commonDir, path)
	if !ok {
		return false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == "refs" || rel == "packed-refs"
}

type fileStamp struct {
	mod  time.Time
	size int64
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.mod.Equal(o.mod)
}

func addWatchDir(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := watcher.Add(path); err != nil {
		log.Printf("watcher add failed for %s: %v", path, err)
	}
}

// addWatchTree registers root and every directory below it, skipping .git trees.
func addWatchTree(watcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		addWatchDir(watcher, path)
		return nil
	})
}
