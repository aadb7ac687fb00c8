// Package version carries the build version, set at link time via
// -ldflags "-X github.com/mialabs/mia-session/internal/version.Version=...".
package version

var Version = "dev"
