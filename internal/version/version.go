// Package version reports the build identity of the orbita binary.
package version

import "fmt"

// Name is the product name shown in banners.
const Name = "ORBITA"

// These variables are set at build time via ldflags
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string (commit-hash based, no semver)
func String() string {
	return fmt.Sprintf("orbita dev (commit: %s, built: %s)", shortCommit(), BuildTime)
}

// Banner is the greeting served at the API root.
func Banner() string {
	return Name + " Mission Control System Online"
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
