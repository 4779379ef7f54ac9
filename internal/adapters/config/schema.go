package config

import "time"

// Hotfile represents the structure of the hotswap.yaml configuration file.
type Hotfile struct {
	Version     string        `yaml:"version"`
	Target      string        `yaml:"target"`
	Package     string        `yaml:"package"`
	Example     string        `yaml:"example"`
	Features    []string      `yaml:"features"`
	Manifest    string        `yaml:"manifest"`
	LibraryDirs []string      `yaml:"libraryDirs"`
	SDKDirs     []string      `yaml:"sdkDirs"`
	Watch       WatchDTO      `yaml:"watch"`
	Debounce    time.Duration `yaml:"debounce"`
	Server      ServerDTO     `yaml:"server"`
	Runner      RunnerDTO     `yaml:"runner"`
	Mirror      MirrorDTO     `yaml:"mirror"`
	Log         LogDTO        `yaml:"log"`
}

// WatchDTO lists the directories whose changes trigger builds or asset updates.
type WatchDTO struct {
	Code   []string `yaml:"code"`
	Assets []string `yaml:"assets"`
}

// ServerDTO configures the update server.
type ServerDTO struct {
	Address   string        `yaml:"address"`
	KeepAlive time.Duration `yaml:"keepAlive"`
}

// RunnerDTO configures runner processes.
type RunnerDTO struct {
	Server       string        `yaml:"server"`
	LibraryDir   string        `yaml:"libraryDir"`
	WorkingDir   string        `yaml:"workingDir"`
	AwaitRetries int           `yaml:"awaitRetries"`
	AwaitDelay   time.Duration `yaml:"awaitDelay"`
}

// MirrorDTO configures the artifact mirror. Credentials only come from the environment.
type MirrorDTO struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	UseSSL   *bool  `yaml:"useSSL"`
}

// LogDTO configures log output.
type LogDTO struct {
	JSON bool `yaml:"json"`
}
