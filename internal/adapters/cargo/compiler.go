package cargo

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler by running `cargo rustc` with the hot reload linker.
type Compiler struct {
	tools   Tools
	logger  ports.Logger
	tracer  ports.Tracer
	environ func() []string
}

// New creates a Compiler for already resolved tools.
func New(tools Tools, logger ports.Logger, tracer ports.Tracer) *Compiler {
	return &Compiler{
		tools:   tools,
		logger:  logger,
		tracer:  tracer,
		environ: os.Environ,
	}
}

// Compile runs one build and reports the root library it produced.
func (c *Compiler) Compile(ctx context.Context, inv ports.Invocation) (ports.CompileResult, error) {
	ctx, span := c.tracer.Start(ctx, "cargo rustc",
		ports.WithAttribute("build.id", uint32(inv.ID)),
		ports.WithAttribute("target", inv.Target.String()),
	)
	defer span.End()

	result, err := c.compile(ctx, span, inv)
	if err != nil {
		span.RecordError(err)
		return ports.CompileResult{}, zerr.With(err, "build", uint32(inv.ID))
	}
	return result, nil
}

func (c *Compiler) compile(ctx context.Context, span ports.Span, inv ports.Invocation) (ports.CompileResult, error) {
	settings := inv.Settings

	meta, err := c.metadata(ctx, settings)
	if err != nil {
		return ports.CompileResult{}, err
	}
	art, err := meta.selectArtifact(settings.Selector)
	if err != nil {
		return ports.CompileResult{}, err
	}

	manifest := settings.ManifestPath
	if manifest == "" {
		manifest = art.ManifestPath
	}
	if manifest != "" && !filepath.IsAbs(manifest) {
		manifest = filepath.Join(settings.WorkingDir, manifest)
	}

	l := newLayout(settings.WorkingDir, inv.Target)
	for _, dir := range l.searchDirs() {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return ports.CompileResult{}, zerr.With(zerr.Wrap(err, "couldn't create output directory"), "path", dir)
		}
	}

	versioned := art.Name + "." + strconv.FormatUint(uint64(inv.ID), 10)
	fileName := inv.Target.DynamicLibName(versioned)
	outputFile := filepath.Join(l.OutputDir, fileName)

	env, err := buildEnv(inv, c.tools, l, art.Name, outputFile)
	if err != nil {
		return ports.CompileResult{}, err
	}

	prog, err := c.run(ctx, span, settings.WorkingDir, rustcArgs(inv, manifest, c.tools.Linker), env)
	if err != nil {
		return ports.CompileResult{}, err
	}

	return ports.CompileResult{
		ArtifactName: versioned,
		RootLibrary:  fileName,
		Roots:        []domain.Root{{Name: fileName, Path: outputFile}},
		SearchDirs:   l.searchDirs(),
		Artifacts:    prog.Artifacts,
	}, nil
}

func (c *Compiler) metadata(ctx context.Context, settings domain.BuildSettings) (*metadata, error) {
	args := []string{"metadata", "--format-version", "1", "--no-deps"}
	if settings.ManifestPath != "" {
		args = append(args, "--manifest-path", settings.ManifestPath)
	}

	cmd := exec.CommandContext(ctx, c.tools.Cargo, args...) //nolint:gosec // cargo resolved at setup
	cmd.Dir = settings.WorkingDir
	cmd.Env = resolveEnvironment(c.environ(), nil)

	out, err := cmd.Output()
	if err != nil {
		err = zerr.Wrap(err, "cargo metadata failed")
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = zerr.With(err, "stderr", string(exitErr.Stderr))
		}
		return nil, err
	}
	return parseMetadata(out)
}

// run executes cargo, parsing stdout as a message stream and forwarding stderr lines.
func (c *Compiler) run(
	ctx context.Context,
	span ports.Span,
	dir string,
	args []string,
	env map[string]string,
) (progress, error) {
	cmd := exec.CommandContext(ctx, c.tools.Cargo, args...) //nolint:gosec // cargo resolved at setup
	cmd.Dir = dir
	cmd.Env = resolveEnvironment(c.environ(), env)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return progress{}, zerr.Wrap(err, "couldn't attach to cargo stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return progress{}, zerr.Wrap(err, "couldn't attach to cargo stderr")
	}
	if err := cmd.Start(); err != nil {
		return progress{}, zerr.With(zerr.Wrap(err, "couldn't start cargo"), "path", c.tools.Cargo)
	}

	var wg sync.WaitGroup
	wg.Go(func() { c.drain(stderr, span) })

	prog, streamErr := readMessages(stdout, c.logger.Debug)
	if streamErr != nil {
		// Keep cargo from blocking on a full pipe until it exits.
		_, _ = io.Copy(io.Discard, stdout)
	}
	wg.Wait()
	waitErr := cmd.Wait()

	switch {
	case streamErr != nil:
		return prog, errors.Join(domain.ErrBuildFailed, streamErr)
	case waitErr != nil:
		return prog, zerr.With(errors.Join(domain.ErrBuildFailed, waitErr), "exit_code", exitCode(waitErr))
	case !prog.Finished:
		return prog, zerr.Wrap(domain.ErrBuildFailed, "cargo exited without finishing the build")
	case !prog.Success:
		return prog, zerr.Wrap(domain.ErrBuildFailed, "cargo reported a failed build")
	}
	return prog, nil
}

// drain forwards compiler diagnostics line by line.
func (c *Compiler) drain(r io.Reader, span ports.Span) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := scanner.Text()
		_, _ = span.Write([]byte(line))
		c.logger.Info(line)
	}
	_, _ = io.Copy(io.Discard, r)
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
