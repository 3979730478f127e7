package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// PrettyHandler is a slog.Handler producing human-readable lines, colored when the output is
// a terminal.
type PrettyHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	attrs []slog.Attr
	group string

	debug, info, warn, fail lipgloss.Style
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	r := lipgloss.NewRenderer(w)
	return &PrettyHandler{
		w:     w,
		mu:    &sync.Mutex{},
		level: level,
		debug: r.NewStyle().Foreground(lipgloss.Color("#667085")).Faint(true),
		info:  r.NewStyle().Foreground(lipgloss.Color("#667085")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var (
		msg   string
		style lipgloss.Style
	)
	switch {
	case r.Level >= slog.LevelError:
		msg, style = "✗ "+r.Message, h.fail
	case r.Level >= slog.LevelWarn:
		msg, style = "! "+r.Message, h.warn
	case r.Level >= slog.LevelInfo:
		msg, style = r.Message, h.info
	default:
		msg, style = r.Message, h.debug
	}

	attrParts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		attrParts = append(attrParts, formatAttr(h.group, attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, formatAttr(h.group, attr))
		return true
	})
	if len(attrParts) > 0 {
		msg += " " + strings.Join(attrParts, " ")
	}

	// Styled per line; a multi-line render would pad every line to the widest one.
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, strings.Join(lines, "\n")+"\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.group = name
	return &c
}

// formatAttr formats a single attribute for output.
// If a group is set, the key is prefixed with the group name.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}
