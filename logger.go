// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the frequency and type of logger output.
type LogLevel int

const (
	// LogNoop: no output is generated.
	LogNoop LogLevel = -1
	// LogSummary: print only the final termination summary.
	LogSummary LogLevel = 0
	// LogIteration: also print one line per outer iteration.
	LogIteration LogLevel = 1
	// LogVerbose: print the full iterate (x, multipliers, residuals) each
	// outer iteration.
	LogVerbose LogLevel = 2
)

// Logger handles logging output for the driver. Modeled on lbfgsb.Logger:
// a level plus a writer, checked once per outer iteration, never on the
// per-inner-loop hot path. Writers must be safe for the driver's single
// goroutine (no concurrent writers are assumed).
type Logger struct {
	Level LogLevel
	Out   io.Writer
}

func defaultLogger() *Logger {
	return &Logger{Level: LogNoop, Out: os.Stderr}
}

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) logf(level LogLevel, format string, args ...any) {
	if !l.enabled(level) {
		return
	}
	w := l.Out
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
