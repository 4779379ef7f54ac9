package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "hotswap.yaml"

	// HotReloadDirName is the directory below target/ that holds hot reload builds.
	HotReloadDirName = "hot-reload"

	// EntrySymbol is the exported function the runner calls to hand control to the library.
	EntrySymbol = "hotswap_main"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Environment variables read by the compiler's linker wrapper.
const (
	EnvOutputFile           = "HOTSWAP_OUTPUT_FILE"
	EnvPackageName          = "HOTSWAP_PACKAGE_NAME"
	EnvLinkerTarget         = "HOTSWAP_LINKER_TARGET"
	EnvLibDirectories       = "HOTSWAP_LIB_DIRECTORIES"
	EnvFrameworkDirectories = "HOTSWAP_FRAMEWORK_DIRECTORIES"
	EnvIncrementalRun       = "HOTSWAP_INCREMENTAL_RUN"
)

// TargetDir returns the cargo target directory used for hot reload builds of t.
func TargetDir(root string, t Target) string {
	return filepath.Join(root, "target", HotReloadDirName, t.String())
}

// OutputDir returns the directory cargo writes debug artifacts for t into.
func OutputDir(root string, t Target) string {
	return filepath.Join(TargetDir(root, t), t.String(), "debug")
}
