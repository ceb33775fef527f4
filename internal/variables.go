package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the program, used for logger groups, paths and container labels.
const Name = "cruxcp"

const (

	// Reported for build variables that were not injected.
	undefined = "(undefined)"

	// Reported instead of a version string for non-pipeline builds.
	localBuild = "(local)"

	// Branch whose builds carry no stage suffix.
	releaseBranch = "main"
)

var (
	version   = "" // Semantic version, with or without a "v" prefix.
	stage     = "" // Git branch the binary was built from.
	gitCommit = "" // Abbreviated commit hash.

	rawQuiet   = "false" // Default for quiet mode.
	rawDebug   = "false" // Default for debug logging.
	rawVerbose = "false" // Default for verbose logging.
)

// Returns the version without the "v" prefix, or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return undefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the lower-cased build stage, or "(undefined)".
func Stage() string {
	s := strings.ToLower(strings.TrimSpace(stage))
	if s == "" {
		return undefined
	}
	return s
}

// Returns the git commit hash, or "(undefined)".
func GitCommit() string {
	if c := strings.TrimSpace(gitCommit); c != "" {
		return c
	}
	return undefined
}

// Whether the binary was built outside the release pipeline.
//
// Pipeline builds inject version, stage and commit through linker flags; a
// build missing any of them is local.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<arch>]", or "(local)".
//
// The stage suffix is omitted for builds of the release branch.
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != releaseBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), runtime.GOARCH)
}
