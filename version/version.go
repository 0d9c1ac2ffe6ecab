// Package version exposes build version information for the client.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbayram/clientkit/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// Get returns the build's version information, filling in what the
// embedded build info provides when no -ldflags were set.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.GitCommit == "" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.GitCommit = s.Value
					break
				}
			}
		}
	}
	return info
}

// UserAgent returns the User-Agent value sent on outgoing requests.
func UserAgent(name string) string {
	return fmt.Sprintf("%s/%s", name, Version)
}

// String returns a human-readable version line.
func (i Info) String() string {
	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		return fmt.Sprintf("%s (%s)", i.Version, commit)
	}
	return i.Version
}
