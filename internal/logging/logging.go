// Package logging builds the single zerolog.Logger threaded through
// RuntimeContext. There is no package-level logger; every component that
// needs to log receives one explicitly.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Verbosity selects the minimum level emitted, matching the -q/-v/--debug
// CLI surface.
type Verbosity int

const (
	// Quiet corresponds to -q: only errors.
	Quiet Verbosity = iota
	// Normal is the default: info and above.
	Normal
	// Verbose corresponds to -v: debug and above.
	Verbose
	// Debug corresponds to --debug: trace and above, with caller info.
	Debug
)

// New builds a logger writing to w (os.Stderr in production). TTY output
// gets zerolog's console writer; anything else (file, pipe, CI) gets plain
// JSON lines so log aggregators can parse it.
func New(w io.Writer, v Verbosity) zerolog.Logger {
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	switch v {
	case Quiet:
		level = zerolog.ErrorLevel
	case Verbose:
		level = zerolog.DebugLevel
	case Debug:
		level = zerolog.TraceLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp()
	if v == Debug {
		logger = logger.Caller()
	}
	return logger.Logger()
}
