// Package version carries build identification stamped at link time.
package version

import (
	"runtime/debug"
)

// Build identification, overridable at link time:
//
//	go build -ldflags "-X github.com/spanlight/spanlight/pkg/version.Version=v1.2.3"
//
//nolint:gochecknoglobals // Linker-stamped build identity.
var (
	// Version is the release version.
	Version = "dev"

	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// InitBinaryVersion fills unset build identification from the embedded module
// build info. Linker-stamped values win.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}
