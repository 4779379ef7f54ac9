package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/cmd/hotswap/commands"
	"go.trai.ch/hotswap/internal/app"
	"go.trai.ch/hotswap/internal/build"
	"go.trai.ch/hotswap/internal/core/domain"
)

type mockApp struct {
	serve   *app.ServeOptions
	run     *app.RunOptions
	runner  *app.RunnerOptions
	resolve *app.ResolveOptions
	records []domain.HashedFileRecord
	err     error
}

func (m *mockApp) Serve(_ context.Context, opts app.ServeOptions) error {
	m.serve = &opts
	return m.err
}

func (m *mockApp) Run(_ context.Context, opts app.RunOptions) error {
	m.run = &opts
	return m.err
}

func (m *mockApp) Runner(_ context.Context, opts app.RunnerOptions) error {
	m.runner = &opts
	return m.err
}

func (m *mockApp) Resolve(_ context.Context, opts app.ResolveOptions) ([]domain.HashedFileRecord, error) {
	m.resolve = &opts
	return m.records, m.err
}

type logSettings struct {
	json, verbose bool
}

func (l *logSettings) SetJSON(enable bool)    { l.json = enable }
func (l *logSettings) SetVerbose(enable bool) { l.verbose = enable }

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a, &logSettings{})
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Serve(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "serve", "-C", "/project", "--address", "0.0.0.0:9000", "--tui")
	require.NoError(t, err)
	require.NotNil(t, m.serve)
	assert.Equal(t, app.ServeOptions{Dir: "/project", Address: "0.0.0.0:9000", Dashboard: true}, *m.serve)
}

func TestCommands_Run(t *testing.T) {
	m := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, m, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
	require.NotNil(t, m.run)
}

func TestCommands_Runner(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "runner", "-s", "https://build.local", "-l", "libs", "-w", "game")
	require.NoError(t, err)
	require.NotNil(t, m.runner)
	assert.Equal(t, app.RunnerOptions{Server: "https://build.local", LibraryDir: "libs", WorkingDir: "game"}, *m.runner)
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("prints records", func(t *testing.T) {
		m := &mockApp{records: []domain.HashedFileRecord{
			{Name: "libgame.so", LocalPath: "/out/libgame.so"},
		}}
		out, err := execute(t, m, "resolve", "/out/libgame.so", "-L", "/sdk/lib,/opt/lib")
		require.NoError(t, err)
		assert.Equal(t, []string{"/sdk/lib", "/opt/lib"}, m.resolve.SearchDirs)
		assert.Contains(t, out, "libgame.so")
		assert.Contains(t, out, "/out/libgame.so")
	})

	t.Run("shows usage when no libraries provided", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "resolve")
		require.NoError(t, err)
		assert.Nil(t, m.resolve)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hotswap version "+build.Version)
}

func TestCommands_LogFlags(t *testing.T) {
	log := &logSettings{}
	cli := commands.New(&mockApp{}, log)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"version", "--json", "--verbose"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, log.json)
	assert.True(t, log.verbose)
}
