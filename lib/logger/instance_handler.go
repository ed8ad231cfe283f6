package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// InstanceIDKey is the attribute that routes a record to an instance's build log.
const InstanceIDKey = "instance_id"

// InstanceLogHandler wraps an slog.Handler and also appends records carrying
// an instance_id attribute to that instance's build log. The attribute may
// be bound with With() or passed on the record itself.
type InstanceLogHandler struct {
	slog.Handler
	logPathFunc func(id string) string
	preAttrs    []slog.Attr
}

// NewInstanceLogHandler wraps handler. logPathFunc maps an instance ID to
// its build log path; the log is written only once the instance directory
// (two levels above the log file) exists.
func NewInstanceLogHandler(wrapped slog.Handler, logPathFunc func(id string) string) *InstanceLogHandler {
	return &InstanceLogHandler{
		Handler:     wrapped,
		logPathFunc: logPathFunc,
	}
}

// Handle passes the record to the wrapped handler, then to the build log.
func (h *InstanceLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}

	if id := h.instanceID(r); id != "" {
		h.appendToBuildLog(id, r)
	}
	return nil
}

// instanceID returns the record's instance_id, falling back to one bound
// with WithAttrs.
func (h *InstanceLogHandler) instanceID(r slog.Record) string {
	var id string
	for _, a := range h.preAttrs {
		if a.Key == InstanceIDKey {
			id = a.Value.String()
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == InstanceIDKey {
			id = a.Value.String()
			return false
		}
		return true
	})
	return id
}

func (h *InstanceLogHandler) appendToBuildLog(id string, r slog.Record) {
	logPath := h.logPathFunc(id)
	if logPath == "" {
		return
	}

	logDir := filepath.Dir(logPath)
	if _, err := os.Stat(filepath.Dir(logDir)); err != nil {
		return
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Package-level slog: no instance_id, so no recursion.
		slog.Warn("failed to create build log directory", "path", logDir, "error", err)
		return
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Warn("failed to open build log", "path", logPath, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(h.formatLine(r)); err != nil {
		slog.Warn("failed to write build log", "path", logPath, "error", err)
	}
}

// formatLine renders "timestamp LEVEL message key=value ..." without the
// instance_id, which the file location already implies.
func (h *InstanceLogHandler) formatLine(r slog.Record) string {
	var sb strings.Builder
	sb.WriteString(r.Time.Format(time.RFC3339))
	sb.WriteByte(' ')
	sb.WriteString(r.Level.String())
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		if a.Key != InstanceIDKey {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteByte('=')
			sb.WriteString(a.Value.String())
		}
		return true
	}
	for _, a := range h.preAttrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	sb.WriteByte('\n')
	return sb.String()
}

// Enabled reports whether the handler handles records at the given level.
func (h *InstanceLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler that remembers attrs for instance lookup.
func (h *InstanceLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	pre := make([]slog.Attr, 0, len(h.preAttrs)+len(attrs))
	pre = append(pre, h.preAttrs...)
	pre = append(pre, attrs...)

	return &InstanceLogHandler{
		Handler:     h.Handler.WithAttrs(attrs),
		logPathFunc: h.logPathFunc,
		preAttrs:    pre,
	}
}

// WithGroup returns a new handler with the given group name. Instance IDs
// are only looked up at the top level.
func (h *InstanceLogHandler) WithGroup(name string) slog.Handler {
	return &InstanceLogHandler{
		Handler:     h.Handler.WithGroup(name),
		logPathFunc: h.logPathFunc,
		preAttrs:    h.preAttrs,
	}
}
