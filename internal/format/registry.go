// Package format turns structured log lines into display strings, choosing a
// formatter by the line's source tag.
package format

import (
	"fmt"
	"io"
	"log/slog"
)

// Formatter converts a structured line into display text. raw is the full
// input line; stripped is the same line with its JSON context removed.
type Formatter func(raw, stripped string) (string, error)

// Registry maps source tags to formatters. Tags are case-sensitive. A
// Registry is not modified after construction.
type Registry struct {
	formatters map[string]Formatter
	logger     *slog.Logger
}

// NewRegistry copies formatters into a new Registry. A nil logger discards
// formatter warnings.
func NewRegistry(logger *slog.Logger, formatters map[string]Formatter) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Registry{
		formatters: make(map[string]Formatter, len(formatters)),
		logger:     logger,
	}
	for tag, f := range formatters {
		r.formatters[tag] = f
	}
	return r
}

// Builtin returns the formatters shipped with cleanlogs.
func Builtin() map[string]Formatter {
	return map[string]Formatter{
		ResponseLoggerTag: ResponseLogger,
	}
}

// Lookup returns the formatter registered for tag and whether one was found.
// Unknown tags get Default.
func (r *Registry) Lookup(tag string) (Formatter, bool) {
	if f, ok := r.formatters[tag]; ok {
		return f, true
	}
	return Default, false
}

// Format renders a line with the formatter for tag. It never fails: a
// registered formatter that errors or panics yields "", and a failing
// Default yields stripped.
func (r *Registry) Format(tag, raw, stripped string) string {
	f, registered := r.Lookup(tag)

	out, err := safeCall(f, raw, stripped)
	if err == nil {
		return out
	}

	r.logger.Warn("formatter failed", "tag", tag, "err", err, "line", raw)
	if registered {
		return ""
	}
	return stripped
}

func safeCall(f Formatter, raw, stripped string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = "", fmt.Errorf("formatter panic: %v", rec)
		}
	}()
	return f(raw, stripped)
}
