// Package buildinfo holds the version line printed by git-changed --version.
// main() forwards the linker-injected values with Set, then Enrich fills what
// the linker left at its defaults from the module build information.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const (
	unsetVersion = "dev"
	unsetCommit  = "none"
	unsetValue   = "unknown"

	shortCommit = 12
)

var (
	version = unsetVersion
	commit  = unsetCommit
	date    = unsetValue
	builtBy = unsetValue
)

// Set stores the build metadata received from linker-injected variables.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// String renders the metadata on one line for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built at: %s, built by: %s)", version, commit, date, builtBy)
}

// Enrich fills unset metadata from runtime/debug.ReadBuildInfo(), which is
// all a plain `go install` build carries.
func Enrich() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	enrichFrom(info)
}

func enrichFrom(info *debug.BuildInfo) {
	if version == unsetVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; commit == unsetCommit && rev != "" {
		if len(rev) > shortCommit {
			rev = rev[:shortCommit]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		commit = rev
	}
	if t := settings["vcs.time"]; date == unsetValue && t != "" {
		date = t
	}
	if builtBy == unsetValue && info.GoVersion != "" {
		builtBy = info.GoVersion
	}
}
