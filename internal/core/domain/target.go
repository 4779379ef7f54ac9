package domain

import (
	"runtime"
	"strings"
)

// Target is a platform triple such as x86_64-unknown-linux-gnu.
type Target string

var hostTargets = map[string]Target{
	"linux/amd64":   "x86_64-unknown-linux-gnu",
	"linux/arm64":   "aarch64-unknown-linux-gnu",
	"darwin/amd64":  "x86_64-apple-darwin",
	"darwin/arm64":  "aarch64-apple-darwin",
	"windows/amd64": "x86_64-pc-windows-msvc",
	"windows/arm64": "aarch64-pc-windows-msvc",
}

// CurrentTarget returns the target of the running process.
func CurrentTarget() (Target, error) {
	return TargetFor(runtime.GOOS, runtime.GOARCH)
}

// TargetFor maps a GOOS/GOARCH pair to a target triple.
func TargetFor(goos, goarch string) (Target, error) {
	t, ok := hostTargets[goos+"/"+goarch]
	if !ok {
		return "", ErrUnknownTarget
	}
	return t, nil
}

// ParseTarget validates a triple received from configuration or a URL path.
func ParseTarget(s string) (Target, error) {
	for _, t := range hostTargets {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrUnknownTarget
}

func (t Target) String() string {
	return string(t)
}

// OS returns the operating system component of the triple.
func (t Target) OS() string {
	switch {
	case strings.Contains(string(t), "windows"):
		return "windows"
	case strings.Contains(string(t), "apple"):
		return "darwin"
	default:
		return "linux"
	}
}

// Arch returns the architecture component of the triple.
func (t Target) Arch() string {
	arch, _, _ := strings.Cut(string(t), "-")
	return arch
}

// DynamicLibExt returns the file extension of dynamic libraries, without the dot.
func (t Target) DynamicLibExt() string {
	switch t.OS() {
	case "windows":
		return "dll"
	case "darwin":
		return "dylib"
	default:
		return "so"
	}
}

// DynamicLibName returns the platform file name of a dynamic library called base.
func (t Target) DynamicLibName(base string) string {
	if t.OS() == "windows" {
		return base + ".dll"
	}
	return "lib" + base + "." + t.DynamicLibExt()
}

// LinkerTarget returns the target name understood by the zig based linker wrapper.
func (t Target) LinkerTarget() string {
	switch t.OS() {
	case "windows":
		return t.Arch() + "-windows-gnu"
	case "darwin":
		return t.Arch() + "-macos-none"
	default:
		return t.Arch() + "-linux-gnu"
	}
}
