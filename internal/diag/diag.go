// Package diag wires the converter's diagnostics. Warnings produced while a
// template is converted (undeclared variables, ignored overrides, skipped
// objects) are ordinary slog records, so callers choose where they go: the
// CLI points them at stderr, tests at a Collector.
package diag

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// NewLogger returns a text logger writing to w. With debug set the level
// drops to slog.LevelDebug.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Entry is one captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Collector is a slog.Handler that keeps records in memory.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCollector returns a logger and the collector backing it.
func NewCollector() (*slog.Logger, *Collector) {
	c := &Collector{}
	return slog.New(&collectorHandler{c: c}), c
}

// Entries returns a copy of everything captured so far.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Messages returns the messages captured at exactly the given level, in order.
func (c *Collector) Messages(level slog.Level) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Warnings is shorthand for Messages(slog.LevelWarn).
func (c *Collector) Warnings() []string {
	return c.Messages(slog.LevelWarn)
}

func (c *Collector) add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

type collectorHandler struct {
	c     *Collector
	attrs []slog.Attr
}

func (h *collectorHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *collectorHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: map[string]string{}}
	for _, a := range h.attrs {
		e.Attrs[a.Key] = a.Value.Resolve().String()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Resolve().String()
		return true
	})
	h.c.add(e)
	return nil
}

func (h *collectorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &collectorHandler{c: h.c, attrs: merged}
}

func (h *collectorHandler) WithGroup(string) slog.Handler { return h }
