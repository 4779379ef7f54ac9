package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// levelStyle is the prefix and colour of one severity band.
type levelStyle struct {
	min    slog.Level
	prefix string
	color  string
}

// Bands are checked in order; the first whose min the record reaches wins.
var levelStyles = []levelStyle{
	{min: slog.LevelError, prefix: "✗ ", color: "#D93025"},
	{min: slog.LevelWarn, prefix: "! ", color: "#F59E0B"},
	{min: slog.LevelInfo, prefix: "", color: "#667085"},
}

var debugStyle = levelStyle{prefix: "· ", color: "#8B5CF6"}

func styleFor(level slog.Level) levelStyle {
	for _, s := range levelStyles {
		if level >= s.min {
			return s
		}
	}
	return debugStyle
}

// PrettyHandler writes one coloured line per record for a terminal reader.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler returns a handler writing to w, or stderr when w is nil.
// Colour is dropped when NO_COLOR is set.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}
	threshold := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		threshold = opts.Level.Level()
	}
	return &PrettyHandler{out: newOutput(w), level: threshold}
}

func newOutput(w io.Writer) *termenv.Output {
	profile := termenv.EnvColorProfile()
	if os.Getenv("NO_COLOR") != "" {
		profile = termenv.Ascii
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(true))
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic // slog.Handler passes the record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	st := styleFor(r.Level)

	var line strings.Builder
	line.WriteString(st.prefix)
	line.WriteString(r.Message)
	for _, a := range h.attrs {
		line.WriteByte(' ')
		line.WriteString(formatAttr(h.group, a))
	}
	r.Attrs(func(a slog.Attr) bool {
		line.WriteByte(' ')
		line.WriteString(formatAttr(h.group, a))
		return true
	})

	colored := h.out.String(line.String()).Foreground(termenv.RGBColor(st.color))
	_, err := h.out.WriteString(colored.String() + "\n")
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &c
}

// WithGroup replaces the key prefix; groups do not nest.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.group = name
	return &c
}

func formatAttr(group string, a slog.Attr) string {
	if group == "" {
		return a.Key + "=" + a.Value.String()
	}
	return group + "." + a.Key + "=" + a.Value.String()
}
