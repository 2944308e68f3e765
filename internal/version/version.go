// Package version carries build identification, overridden at link time via
// -ldflags "-X github.com/terravox/scanextract/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the release version.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
)

// String returns a single-line build description for --version output.
func String() string {
	return fmt.Sprintf("scanextract %s (%s)", Version, GitSHA)
}
