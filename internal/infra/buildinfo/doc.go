// Package buildinfo exposes the version of the artifact binary.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/artifact-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When a value is not injected, Get falls back to the module and VCS
// data recorded by the Go toolchain.
package buildinfo
