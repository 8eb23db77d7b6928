package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the build information for `tdash version`.
func String() string {
	return fmt.Sprintf("tdash %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
