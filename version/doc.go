// Package version reports build information for injectkit binaries.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags; missing values come from the embedded build info:
//
//	go build -ldflags "-X github.com/kbukum/injectkit/version.Version=1.0.0"
package version
