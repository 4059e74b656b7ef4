// Package version reports the yagpt build version.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/yagpt/version.Version=1.0.0"
//
// Otherwise the module version and VCS stamp embedded by the Go toolchain
// are used.
package version
