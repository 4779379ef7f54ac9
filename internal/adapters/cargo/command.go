package cargo

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

// layout is where one build writes its outputs.
type layout struct {
	TargetDir string
	OutputDir string
	DepsDir   string
	Examples  string
}

func newLayout(root string, target domain.Target) layout {
	out := domain.OutputDir(root, target)
	return layout{
		TargetDir: domain.TargetDir(root, target),
		OutputDir: out,
		DepsDir:   filepath.Join(out, "deps"),
		Examples:  filepath.Join(out, "examples"),
	}
}

func (l layout) searchDirs() []string {
	return []string{l.OutputDir, l.DepsDir, l.Examples}
}

// rustcArgs builds the argument list of `cargo rustc`.
func rustcArgs(inv ports.Invocation, manifestPath, linker string) []string {
	args := []string{"rustc"}
	if manifestPath != "" {
		args = append(args, "--manifest-path", manifestPath)
	}

	switch inv.Settings.Selector.Kind {
	case domain.SelectPackage:
		args = append(args, "--lib", "-p", inv.Settings.Selector.Name)
	case domain.SelectExample:
		args = append(args, "--example", inv.Settings.Selector.Name)
	case domain.SelectDefaultPackage:
	}

	if len(inv.Settings.Features) > 0 {
		args = append(args, "--features", strings.Join(inv.Settings.Features, ","))
	}

	return append(args,
		"--message-format=json-render-diagnostics",
		"--profile", "dev",
		"--target", inv.Target.String(),
		"--",
		"-C", "linker="+linker,
	)
}

// buildEnv returns the overrides the linker wrapper and cargo read.
func buildEnv(inv ports.Invocation, tools Tools, l layout, packageName, outputFile string) (map[string]string, error) {
	libDirs := slices.Clone(inv.Settings.LibraryDirs)
	libDirs = append(libDirs, l.searchDirs()...)
	frameworkDirs := make([]string, 0, len(inv.Settings.SDKDirs))
	for _, sdk := range inv.Settings.SDKDirs {
		libDirs = append(libDirs, filepath.Join(sdk, "usr", "lib"))
		frameworkDirs = append(frameworkDirs, filepath.Join(sdk, "System", "Library", "Frameworks"))
	}

	encodedLibs, err := json.Marshal(libDirs)
	if err != nil {
		return nil, zerr.Wrap(err, "couldn't encode library directories")
	}
	encodedFrameworks, err := json.Marshal(frameworkDirs)
	if err != nil {
		return nil, zerr.Wrap(err, "couldn't encode framework directories")
	}
	encodedRun, err := json.Marshal(inv.Run)
	if err != nil {
		return nil, zerr.Wrap(err, "couldn't encode incremental run")
	}

	return map[string]string{
		"ZIG_PATH":                     tools.Zig,
		"CC":                           tools.CC,
		"RUSTFLAGS":                    "-Cprefer-dynamic",
		"CARGO_TARGET_DIR":             l.TargetDir,
		domain.EnvLinkerTarget:         inv.Target.LinkerTarget(),
		domain.EnvPackageName:          packageName,
		domain.EnvOutputFile:           outputFile,
		domain.EnvLibDirectories:       string(encodedLibs),
		domain.EnvFrameworkDirectories: string(encodedFrameworks),
		domain.EnvIncrementalRun:       string(encodedRun),
	}, nil
}

// droppedEnv are inherited variables that would disturb the build.
var droppedEnv = []string{"LD_DEBUG"}

// resolveEnvironment merges the process environment with overrides, which win.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for _, k := range droppedEnv {
		delete(envMap, k)
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
