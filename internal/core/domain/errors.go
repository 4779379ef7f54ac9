package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownTarget is returned when the host platform does not map to a supported target triple.
	ErrUnknownTarget = zerr.New("couldn't determine current target")
	// ErrToolNotFound is returned when a required compiler or linker tool is not installed.
	ErrToolNotFound = zerr.New("required tool not found")

	// ErrBuildFailed is returned when the compiler reports a non-successful build.
	ErrBuildFailed = zerr.New("build failed")
	// ErrProgressStream is returned when the compiler progress stream cannot be parsed.
	ErrProgressStream = zerr.New("couldn't parse compiler progress stream")
	// ErrArtifactNotFound is returned when the build settings select no buildable artifact.
	ErrArtifactNotFound = zerr.New("couldn't find artifact to build")

	// ErrDependencyResolution is returned when a library in the closure cannot be read or parsed.
	ErrDependencyResolution = zerr.New("dependency resolution failed")
	// ErrMalformedBinary is returned when a recognised container format fails to parse.
	ErrMalformedBinary = zerr.New("malformed binary")

	// ErrLibraryFileMissing is returned when the library file does not exist after the bounded wait.
	ErrLibraryFileMissing = zerr.New("library file does not exist")
	// ErrLibraryRejected is returned when the platform loader refuses the library.
	ErrLibraryRejected = zerr.New("loader rejected library")
	// ErrHandleRemoved is returned when a library handle is no longer present in the registry.
	ErrHandleRemoved = zerr.New("library handle was removed from the registry")
	// ErrLibraryUnavailable is returned when a handle exists but its native library is unloaded.
	ErrLibraryUnavailable = zerr.New("library unavailable")
	// ErrSymbolNotFound is returned when an exported symbol is missing from a loaded library.
	ErrSymbolNotFound = zerr.New("symbol not found")
	// ErrNoCurrentLibrary is returned when calling into the runtime before any library was adopted.
	ErrNoCurrentLibrary = zerr.New("current library not set")
	// ErrNoInitialLibrary is returned when the update stream closes before delivering a library.
	ErrNoInitialLibrary = zerr.New("couldn't open initial library")

	// ErrMalformedFrame is returned when a protocol frame cannot be decoded.
	ErrMalformedFrame = zerr.New("malformed protocol frame")
	// ErrInvalidScheme is returned when a server URL cannot be mapped to a websocket scheme.
	ErrInvalidScheme = zerr.New("invalid server scheme")
	// ErrSubscriberLagged is returned when a subscriber falls too far behind the event stream.
	ErrSubscriberLagged = zerr.New("subscriber lagged behind event stream")
	// ErrHashMismatch is returned when downloaded library bytes do not match the advertised digest.
	ErrHashMismatch = zerr.New("library digest mismatch")

	// ErrConfigNotFound is returned when no configuration file is found.
	ErrConfigNotFound = zerr.New("configuration file not found")
	// ErrInvalidSelector is returned when a package selector in the configuration is invalid.
	ErrInvalidSelector = zerr.New("invalid package selector")
	// ErrWorkingDirectoryMissing is returned when a runner's working directory does not exist.
	ErrWorkingDirectoryMissing = zerr.New("working directory does not exist")
)
