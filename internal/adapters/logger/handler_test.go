package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/hotswap/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		msg   string
		want  string
	}{
		{"info", slog.LevelInfo, "build 1 started", "build 1 started\n"},
		{"warn", slog.LevelWarn, "slow build", "! slow build\n"},
		{"error", slog.LevelError, "build failed", "✗ build failed\n"},
		{"debug filtered", slog.LevelDebug, "resolving", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, tt.msg)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	h := logger.NewPrettyHandler(buf, nil).
		WithAttrs([]slog.Attr{slog.Int("build", 3)}).
		WithGroup("lib")
	slog.New(h).Info("loaded", "name", "libgame.so")

	assert.Equal(t, "loaded lib.build=3 lib.name=libgame.so\n", buf.String())
}

func TestPrettyHandler_SiblingsDoNotShareAttrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	base := logger.NewPrettyHandler(buf, nil).WithAttrs([]slog.Attr{slog.Int("build", 1)})
	a := slog.New(base.WithAttrs([]slog.Attr{slog.String("lib", "a")}))
	b := slog.New(base.WithAttrs([]slog.Attr{slog.String("lib", "b")}))

	a.Info("x")
	b.Info("y")
	slog.New(base).Warn("z")

	assert.Equal(t, "x build=1 lib=a\ny build=1 lib=b\n! z build=1\n", buf.String())
}

func TestLogger_VerboseAndJSON(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	l.Debug("shown")
	assert.Equal(t, "· shown\n", buf.String())

	buf.Reset()
	l.SetJSON(true)
	l.Info("json line")
	assert.Contains(t, buf.String(), `"msg":"json line"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}
