// Package logging builds the slog loggers used by cruxcp.
//
// Output goes to a single stream in one of two formats: human-oriented text
// or JSON lines. The "auto" format picks text when the stream is a terminal
// and JSON otherwise, so that daemon and CI logs stay machine-readable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mattn/go-isatty"
)

// Output format of a logger.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Configures a logger.
type Options struct {
	Level   slog.Level // Minimum level written.
	Format  Format     // Output format. Empty means [FormatAuto].
	Verbose bool       // Include source locations.
	Group   string     // Group wrapping every attribute, if set.
}

// Parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}

// Creates a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.Verbose,
	}

	var h slog.Handler
	if resolve(opts.Format, w) == FormatJSON {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	if opts.Group != "" {
		h = h.WithGroup(opts.Group)
	}
	return slog.New(h)
}

// Resolves [FormatAuto] against the stream.
func resolve(f Format, w io.Writer) Format {
	if f != "" && f != FormatAuto {
		return f
	}
	if IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// Whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Maps the quiet and debug switches to a level. Debug wins over
// quiet.
func Level(quiet, debug bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
