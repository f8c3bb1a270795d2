package main

import "runtime/debug"

// currentVersion reports the version injected with
// -ldflags "-X main.version=..." or, for go install builds, the module version.
func currentVersion() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(version, info)
}

func resolveVersion(version string, info *debug.BuildInfo) string {
	if version != "dev" {
		return version
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
