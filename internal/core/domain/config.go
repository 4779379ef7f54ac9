package domain

import (
	"path/filepath"
	"time"
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the directory containing the configuration file.
	Root     string
	Target   Target
	Build    BuildSettings
	Debounce time.Duration
	Server   ServerConfig
	Runner   RunnerConfig
	Mirror   MirrorConfig
	LogJSON  bool
}

// ServerConfig configures the update server that remote runners connect to.
type ServerConfig struct {
	Address           string
	KeepAliveInterval time.Duration
}

// RunnerConfig configures a runner process.
type RunnerConfig struct {
	ServerURL    string
	LibraryDir   string
	WorkingDir   string
	AwaitRetries int
	AwaitDelay   time.Duration
}

// MirrorConfig configures the optional S3-compatible artifact mirror.
type MirrorConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether a mirror endpoint is configured.
func (m MirrorConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// Defaults used when the configuration leaves a value unset.
const (
	DefaultDebounce          = time.Second
	DefaultServerAddress     = "127.0.0.1:4321"
	DefaultKeepAliveInterval = 5 * time.Second
	DefaultAwaitRetries      = 10
	DefaultAwaitDelay        = 500 * time.Millisecond
	DefaultLibraryDirName    = ".hotswap"
)

// DefaultConfig returns the configuration used for root when no file overrides it.
func DefaultConfig(root string, target Target) *Config {
	return &Config{
		Root:   root,
		Target: target,
		Build: BuildSettings{
			WorkingDir: root,
			Selector:   DefaultPackage(),
		},
		Debounce: DefaultDebounce,
		Server: ServerConfig{
			Address:           DefaultServerAddress,
			KeepAliveInterval: DefaultKeepAliveInterval,
		},
		Runner: RunnerConfig{
			ServerURL:    "http://" + DefaultServerAddress,
			LibraryDir:   filepath.Join(root, DefaultLibraryDirName),
			WorkingDir:   root,
			AwaitRetries: DefaultAwaitRetries,
			AwaitDelay:   DefaultAwaitDelay,
		},
		Mirror: MirrorConfig{Region: "us-east-1", UseSSL: true},
	}
}
