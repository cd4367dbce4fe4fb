// Package main is the entry point for git-changed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/git-changed/internal/buildinfo"
	"github.com/chmouel/git-changed/internal/cli"
	"github.com/chmouel/git-changed/internal/config"
	"github.com/chmouel/git-changed/internal/git"
	"github.com/chmouel/git-changed/internal/log"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

const (
	exitOK            = 0
	exitNotRepository = 1
	exitFatal         = 2
)

var (
	osGetwd       = os.Getwd
	newRunnerFunc = func(binary string) git.Runner { return git.NewExecRunner(binary) }
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and maps its outcome to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	err := cmd.Run(ctx, args)
	if closeErr := log.Close(); closeErr != nil {
		fmt.Fprintf(stderr, "Error closing debug log: %v\n", closeErr)
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, git.ErrNotRepository):
		fmt.Fprintln(stderr, "Not in git repo")
		return exitNotRepository
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
}

func newCommand(stdout, stderr io.Writer) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "git-changed",
		Usage:                 "List changed files relative to the current directory",
		Version:               buildinfo.String(),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Writer:                stdout,
		ErrWriter:             stderr,
		Flags:                 globalFlags(),
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return runChanged(ctx, cmd, stdout, stderr)
		},
	}
}

// runChanged is the default action: list, or watch, the changed files.
func runChanged(ctx context.Context, cmd *urfavecli.Command, stdout, stderr io.Writer) error {
	// Choose the debug log sink before loading config so config loading is logged.
	if cmd.Bool("verbose") {
		log.SetOutput(stderr)
	} else if debugLog := cmd.String("debug-log"); debugLog != "" {
		setDebugLogFile(debugLog, stderr)
	}

	workDir, err := osGetwd()
	if err != nil {
		return fmt.Errorf("couldn't fetch working directory: %w", err)
	}

	cfg, err := config.LoadConfig(cmd.String("config-file"), workDir, cmd.String("git"))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
	}

	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	applyFlags(cmd, cfg)

	if !cmd.Bool("verbose") && cmd.String("debug-log") == "" {
		if cfg.DebugLog != "" {
			setDebugLogFile(cfg.DebugLog, stderr)
		} else {
			// No debug log configured, discard any buffered logs
			_ = log.SetFile("")
		}
	}

	runner := newRunnerFunc(cfg.GitBinary)
	env := cli.Env{WorkDir: workDir}
	opts := cli.OptionsFromConfig(cfg)

	if cmd.Bool("watch") {
		return cli.Watch(ctx, runner, env, opts, stdout, cli.WatchOptions{
			Interval:    cfg.WatchInterval,
			ClearScreen: cli.IsTerminal(stdout),
		})
	}
	return cli.ListChanged(ctx, runner, env, opts, stdout)
}

// applyFlags overlays explicitly set flags, the highest precedence layer.
func applyFlags(cmd *urfavecli.Command, cfg *config.AppConfig) {
	if cmd.Bool("no-deleted") {
		cfg.IncludeDeleted = false
	}
	if cmd.Bool("no-untracked") {
		cfg.IncludeUntracked = false
	}
	if cmd.IsSet("quote") {
		cfg.QuoteOutput = cmd.Bool("quote")
	}
	if cmd.Bool("null") {
		cfg.NullTerminated = true
	}
	// NUL-separated output feeds xargs -0 and friends, which take names verbatim.
	if cfg.NullTerminated && !cmd.IsSet("quote") {
		cfg.QuoteOutput = false
	}
	if bin := cmd.String("git"); bin != "" {
		cfg.GitBinary = bin
	}
}

func setDebugLogFile(path string, stderr io.Writer) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		expanded = path
	}
	if err := log.SetFile(expanded); err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", expanded, err)
	}
}
