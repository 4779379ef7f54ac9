package fs

import (
	"os"
	"path/filepath"
	"runtime"
)

// DylibPathVar returns the environment variable the platform loader searches for libraries.
func DylibPathVar() string {
	switch runtime.GOOS {
	case "windows":
		return "PATH"
	case "darwin":
		return "DYLD_FALLBACK_LIBRARY_PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// SearchPaths assembles the directories a build's dependencies are looked up in, in priority
// order: PATH, the loader search variable, buildDirs, then the lib directory of every
// installed rust toolchain.
func SearchPaths(getenv func(string) string, buildDirs []string) []string {
	var dirs []string
	dirs = append(dirs, filepath.SplitList(getenv("PATH"))...)
	if v := DylibPathVar(); v != "PATH" {
		dirs = append(dirs, filepath.SplitList(getenv(v))...)
	}
	dirs = append(dirs, buildDirs...)
	dirs = append(dirs, toolchainLibDirs(getenv)...)

	out := dirs[:0]
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func toolchainLibDirs(getenv func(string) string) []string {
	home := getenv("RUSTUP_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		home = filepath.Join(userHome, ".rustup")
	}

	entries, err := os.ReadDir(filepath.Join(home, "toolchains"))
	if err != nil {
		return nil
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(home, "toolchains", e.Name(), "lib"))
		}
	}
	return dirs
}
