package main

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns all flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.BoolFlag{
			Name:  "no-deleted",
			Usage: "Omit files whose status denotes a deletion",
		},
		&urfavecli.BoolFlag{
			Name:  "no-untracked",
			Usage: "Omit untracked files",
		},
		&urfavecli.BoolFlag{
			Name:  "quote",
			Value: true,
			Usage: "Wrap each path in double quotes (--quote=false prints bare paths; off with --null unless given)",
		},
		&urfavecli.BoolFlag{
			Name:    "null",
			Aliases: []string{"z"},
			Usage:   "Separate paths with NUL instead of newline and print them unquoted",
		},
		&urfavecli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Reprint the list whenever the working tree changes",
		},
		&urfavecli.StringFlag{
			Name:  "git",
			Usage: "git executable to run",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Write debug log to stderr",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=changed.key=value",
		},
	}
}
