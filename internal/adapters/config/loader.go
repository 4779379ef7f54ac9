// Package config provides the configuration loader for hotswap.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment overrides. They take precedence over hotswap.yaml; values in a .env file next
// to the configuration only apply when the process environment leaves them unset.
const (
	EnvTarget          = "HOTSWAP_TARGET"
	EnvDebounce        = "HOTSWAP_DEBOUNCE"
	EnvServerAddress   = "HOTSWAP_SERVER_ADDRESS"
	EnvServerURL       = "HOTSWAP_SERVER_URL"
	EnvLibraryDir      = "HOTSWAP_LIBRARY_DIR"
	EnvLogJSON         = "HOTSWAP_LOG_JSON"
	EnvMirrorEndpoint  = "HOTSWAP_MIRROR_ENDPOINT"
	EnvMirrorBucket    = "HOTSWAP_MIRROR_BUCKET"
	EnvMirrorRegion    = "HOTSWAP_MIRROR_REGION"
	EnvMirrorAccessKey = "HOTSWAP_MIRROR_ACCESS_KEY"
	EnvMirrorSecretKey = "HOTSWAP_MIRROR_SECRET_KEY"
	EnvMirrorUseSSL    = "HOTSWAP_MIRROR_USE_SSL"
)

const dotEnvFileName = ".env"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	// Getenv reads the process environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Getenv: os.Getenv}
}

// Load finds hotswap.yaml in cwd or one of its parents and resolves it.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var hotfile Hotfile
	if err := readAndUnmarshalYAML(path, &hotfile); err != nil {
		return nil, err
	}

	root := filepath.Dir(path)
	lookup := l.lookup(root)

	target, err := resolveTarget(firstNonEmpty(lookup(EnvTarget), hotfile.Target))
	if err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(root, target)
	if err := applyHotfile(cfg, &hotfile); err != nil {
		return nil, zerr.With(err, "config_file", path)
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults resolves the configuration of a directory that has no hotswap.yaml.
// Runners on remote machines usually run this way.
func (l *Loader) Defaults(cwd string) (*domain.Config, error) {
	lookup := l.lookup(cwd)

	target, err := resolveTarget(lookup(EnvTarget))
	if err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(cwd, target)
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no "+domain.ConfigFileName), "cwd", cwd)
}

func readAndUnmarshalYAML(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}
	return nil
}

// lookup returns an environment reader that falls back to the .env file in dir.
func (l *Loader) lookup(dir string) func(string) string {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, dotEnvFileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) && l.Logger != nil {
		l.Logger.Warn(fmt.Sprintf("ignoring unreadable %s: %v", dotEnvFileName, err))
	}

	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

func resolveTarget(raw string) (domain.Target, error) {
	if raw == "" {
		return domain.CurrentTarget()
	}
	t, err := domain.ParseTarget(raw)
	if err != nil {
		return "", zerr.With(err, "target", raw)
	}
	return t, nil
}

func applyHotfile(cfg *domain.Config, h *Hotfile) error {
	root := cfg.Root

	switch {
	case h.Package != "" && h.Example != "":
		return zerr.With(zerr.Wrap(domain.ErrInvalidSelector, "package and example are exclusive"), "package", h.Package)
	case h.Package != "":
		cfg.Build.Selector = domain.Package(h.Package)
	case h.Example != "":
		cfg.Build.Selector = domain.Example(h.Example)
	}

	cfg.Build.Features = h.Features
	if h.Manifest != "" {
		cfg.Build.ManifestPath = resolvePath(root, h.Manifest)
	}
	cfg.Build.LibraryDirs = resolvePaths(root, h.LibraryDirs)
	cfg.Build.SDKDirs = resolvePaths(root, h.SDKDirs)
	cfg.Build.CodeWatchDirs = resolvePaths(root, h.Watch.Code)
	cfg.Build.AssetDirs = resolvePaths(root, h.Watch.Assets)
	if len(cfg.Build.CodeWatchDirs) == 0 {
		cfg.Build.CodeWatchDirs = []string{filepath.Join(root, "src")}
	}

	if h.Debounce > 0 {
		cfg.Debounce = h.Debounce
	}
	if h.Server.Address != "" {
		cfg.Server.Address = h.Server.Address
		cfg.Runner.ServerURL = "http://" + h.Server.Address
	}
	if h.Server.KeepAlive > 0 {
		cfg.Server.KeepAliveInterval = h.Server.KeepAlive
	}

	if h.Runner.Server != "" {
		cfg.Runner.ServerURL = h.Runner.Server
	}
	if h.Runner.LibraryDir != "" {
		cfg.Runner.LibraryDir = resolvePath(root, h.Runner.LibraryDir)
	}
	if h.Runner.WorkingDir != "" {
		cfg.Runner.WorkingDir = resolvePath(root, h.Runner.WorkingDir)
	}
	if h.Runner.AwaitRetries > 0 {
		cfg.Runner.AwaitRetries = h.Runner.AwaitRetries
	}
	if h.Runner.AwaitDelay > 0 {
		cfg.Runner.AwaitDelay = h.Runner.AwaitDelay
	}

	cfg.Mirror.Endpoint = h.Mirror.Endpoint
	cfg.Mirror.Bucket = h.Mirror.Bucket
	if h.Mirror.Region != "" {
		cfg.Mirror.Region = h.Mirror.Region
	}
	if h.Mirror.UseSSL != nil {
		cfg.Mirror.UseSSL = *h.Mirror.UseSSL
	}

	cfg.LogJSON = h.Log.JSON
	return nil
}

func applyEnv(cfg *domain.Config, lookup func(string) string) error {
	if v := lookup(EnvDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid debounce"), "env", EnvDebounce)
		}
		cfg.Debounce = d
	}
	if v := lookup(EnvServerAddress); v != "" {
		cfg.Server.Address = v
	}
	if v := lookup(EnvServerURL); v != "" {
		cfg.Runner.ServerURL = v
	}
	if v := lookup(EnvLibraryDir); v != "" {
		cfg.Runner.LibraryDir = resolvePath(cfg.Root, v)
	}
	if v := lookup(EnvMirrorEndpoint); v != "" {
		cfg.Mirror.Endpoint = v
	}
	if v := lookup(EnvMirrorBucket); v != "" {
		cfg.Mirror.Bucket = v
	}
	if v := lookup(EnvMirrorRegion); v != "" {
		cfg.Mirror.Region = v
	}
	cfg.Mirror.AccessKey = lookup(EnvMirrorAccessKey)
	cfg.Mirror.SecretKey = lookup(EnvMirrorSecretKey)

	for key, dst := range map[string]*bool{EnvLogJSON: &cfg.LogJSON, EnvMirrorUseSSL: &cfg.Mirror.UseSSL} {
		v := lookup(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid boolean"), "env", key)
		}
		*dst = b
	}
	return nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func resolvePaths(root string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(root, p)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
