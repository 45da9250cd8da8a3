// Package logutils builds the zerolog loggers used by the revdiff CLI.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a timestamped JSON logger filtered to the given level.
// With a file path the log is opened in append mode, so repeated
// invocations of the CLI share one file; the returned closer releases
// it. An empty path writes to stdout.
func New(level, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	writer, closer, err := openTarget(file)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

func openTarget(file string) (io.Writer, func(), error) {
	noop := func() {}
	if file == "" {
		return os.Stdout, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, noop, fmt.Errorf("create logs dir: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, err
	}
	return f, func() { _ = f.Close() }, nil
}
