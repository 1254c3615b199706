// Package build provides domain entities for build information.
package build

import "strings"

// Info holds build-time information injected via ldflags.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// IsDev reports whether the binary was built without a release version.
func (i Info) IsDev() bool {
	v := strings.TrimSpace(i.Version)
	return v == "" || v == "dev"
}

// ShortCommit returns the first seven characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// RepoURL returns the project repository URL.
func RepoURL() string {
	return "https://github.com/bnema/upgate"
}
