// Package version exposes the toolgate build version.
package version

// set via -ldflags at build time
var version = "dev"

// GetVersion returns the current version of toolgate.
func GetVersion() string {
	return version
}
