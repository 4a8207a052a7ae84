// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the record encoding of a Logger.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat returns the Format for s. An empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported log format: %q", s)
	}
}

type Logger struct {
	*slog.Logger
}

// New returns a Logger writing text records to stderr.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a Logger writing text records of at least the given level to output.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return NewWithFormat(level, FormatText, output)
}

// NewWithFormat returns a Logger writing records of at least the given level in the given
// format to output. Unknown formats fall back to text.
func NewWithFormat(level slog.Level, format Format, output io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return &Logger{slog.New(slog.NewJSONHandler(output, opts))}
	}
	return &Logger{slog.New(slog.NewTextHandler(output, opts))}
}

// Component returns a child Logger that tags every record with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.With(slog.String("component", name))}
}

// Err returns an error attribute for structured logging.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
