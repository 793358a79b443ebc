// Package version reports the build of the transcriptkit binary.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/transcriptkit/version.Version=1.2.0" ./cmd/transcriptkit
//
// Development builds fall back to the VCS stamp embedded by the Go toolchain.
package version
