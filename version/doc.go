// Package version reports the build of the running binary. Release builds
// stamp the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/clinic/version.Version=1.4.0" ./cmd/clinic-api
//
// Unstamped builds fall back to the VCS data the Go toolchain embeds.
package version
