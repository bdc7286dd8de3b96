// Package version provides version information for the binary.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name reported to API and MCP clients.
const Name = "seekassist"

// Version is the current version of the application.
// This is set at build time using -ldflags.
var Version = "dev"

// Commit is the VCS revision the binary was built from, set with -ldflags.
var Commit = "none"

// BuildTime is when the binary was built.
// This is set at build time using -ldflags.
var BuildTime = "unknown"

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("%s version %s (commit %s, built %s, %s)", Name, Version, Commit, BuildTime, runtime.Version())
}
