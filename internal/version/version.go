// Package version reports the backoffice build version.
package version

// Version is set at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "development"

// Commit is the git commit hash, set at build time.
var Commit = "unknown"

// String returns the version with the commit appended when known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}
