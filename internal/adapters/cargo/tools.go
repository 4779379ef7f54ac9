// Package cargo drives cargo to build hot reloadable dynamic libraries.
package cargo

import (
	"context"
	"os/exec"
	"sync"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executable names looked up on PATH.
const (
	CargoTool  = "cargo"
	LinkerTool = "hotswap-linker"
	CCTool     = "hotswap-cc"
	ZigTool    = "zig"
)

// Tools holds the absolute paths of the external programs a build needs.
type Tools struct {
	Cargo  string
	Linker string
	CC     string
	Zig    string
}

// LookupTools resolves every tool through lookPath, usually exec.LookPath.
func LookupTools(lookPath func(string) (string, error)) (Tools, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var tools Tools
	for _, tool := range []struct {
		name string
		dst  *string
	}{
		{CargoTool, &tools.Cargo},
		{LinkerTool, &tools.Linker},
		{CCTool, &tools.CC},
		{ZigTool, &tools.Zig},
	} {
		path, err := lookPath(tool.name)
		if err != nil {
			return Tools{}, zerr.With(zerr.Wrap(domain.ErrToolNotFound, err.Error()), "tool", tool.name)
		}
		*tool.dst = path
	}
	return tools, nil
}

// Lazy is a ports.Compiler that resolves its tools on first use, so commands that never
// build do not need a toolchain installed.
type Lazy struct {
	lookPath func(string) (string, error)
	logger   ports.Logger
	tracer   ports.Tracer

	once     sync.Once
	compiler *Compiler
	err      error
}

var _ ports.Compiler = (*Lazy)(nil)

// NewLazy creates a Lazy compiler resolving tools through lookPath.
func NewLazy(lookPath func(string) (string, error), logger ports.Logger, tracer ports.Tracer) *Lazy {
	return &Lazy{lookPath: lookPath, logger: logger, tracer: tracer}
}

// Preflight resolves the tools and reports the first one missing.
func (l *Lazy) Preflight() error {
	l.once.Do(func() {
		tools, err := LookupTools(l.lookPath)
		if err != nil {
			l.err = err
			return
		}
		l.compiler = New(tools, l.logger, l.tracer)
	})
	return l.err
}

// Compile implements ports.Compiler.
func (l *Lazy) Compile(ctx context.Context, inv ports.Invocation) (ports.CompileResult, error) {
	if err := l.Preflight(); err != nil {
		return ports.CompileResult{}, err
	}
	return l.compiler.Compile(ctx, inv)
}
