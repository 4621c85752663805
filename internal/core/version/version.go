// Package version holds the build version, overridden at link time.
package version

// Version is set with -ldflags "-X github.com/guiyumin/narrify/internal/core/version.Version=..."
var Version = "0.1.0-dev"
