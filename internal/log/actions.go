package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ActionsHandler is a slog.Handler that writes GitHub Actions workflow
// commands. Debug and trace records become ::debug::, warnings ::warning::
// and errors ::error::. Info records are written as plain lines.
// See: https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions
type ActionsHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Level
	attrs []groupedAttr
	group string
}

// groupedAttr is an attribute together with the group open when it was added.
type groupedAttr struct {
	group string
	attr  slog.Attr
}

// NewActionsHandler creates a handler writing to w at or above level.
func NewActionsHandler(w io.Writer, level slog.Level) *ActionsHandler {
	return &ActionsHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *ActionsHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *ActionsHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)

	for _, ga := range h.attrs {
		writeAttr(&sb, ga.group, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	line := commandPrefix(r.Level) + escapeData(sb.String())

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ActionsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]groupedAttr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, groupedAttr{group: h.group, attr: a})
	}
	return &next
}

// WithGroup implements slog.Handler. Only attributes added afterwards are
// qualified by name.
func (h *ActionsHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if next.group != "" {
		next.group += "." + name
	} else {
		next.group = name
	}
	return &next
}

func commandPrefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "::error::"
	case level >= slog.LevelWarn:
		return "::warning::"
	case level >= slog.LevelInfo:
		return ""
	default:
		return "::debug::"
	}
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	}
	if v.Kind() == slog.KindGroup {
		if key == "" {
			key = group
		}
		for _, ga := range v.Group() {
			writeAttr(sb, key, ga)
		}
		return
	}
	fmt.Fprintf(sb, " %s=%v", key, v)
}

// escapeData escapes the characters the runner treats as command syntax.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
