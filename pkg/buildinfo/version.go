// Package buildinfo holds the version stamped into tilerow at build time.
//
//	go build -ldflags "-X github.com/matzehuels/tilerow/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/tilerow/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/tilerow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the --version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies tilerow to catalog and image servers.
func UserAgent() string {
	return "tilerow/" + Version
}
