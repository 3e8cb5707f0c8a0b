// Package version exposes build metadata for dagkit binaries.
//
// Version, commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/dagkit/version.Version=1.0.0"
//
// When ldflags are absent, Get falls back to the VCS stamps the Go
// toolchain embeds in module builds.
package version
