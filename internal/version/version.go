// Package version carries the build metadata the release script stamps in.
package version

import (
	"fmt"
	"runtime"
)

// Overridden through -ldflags -X at release time; the defaults identify a
// local development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info renders the one-line banner shown by the version command and logged
// at startup.
func Info() string {
	return fmt.Sprintf("shoptech %s (%s, built %s, %s/%s)",
		Version, shortCommit(), Date, runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
