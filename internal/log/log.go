// Package log wires the process-wide slog.Logger used by every other
// package that logs (object.Environment's binding traces, config
// loading, cmd/app's startup trace registration). It keeps the teacher's level-parsing/file-rotation
// shape but reuses log/slog's handler and formatting rather than a
// hand-rolled one — see DESIGN.md for why: structured, leveled logging
// is exactly what slog is for, and every other ambient concern in this
// tree already assumes it.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

// Log is the process-wide logger, set up by Init. Code that runs before
// Init (tests, mostly) gets slog's default logger instead of a nil
// pointer.
var Log = slog.Default()

// rotatingWriter lets a SIGHUP swap the underlying file out from under
// an already-constructed slog.Handler, mirroring the teacher's
// reopenLogFile/setupLogRotation pair.
type rotatingWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Write(p)
}

func (w *rotatingWriter) reopen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: could not reopen %s: %v\n", w.path, err)
		return
	}
	stale := w.file
	w.file = f
	_ = stale.Close()
}

// Init builds Log from the -log-level/-log-file CLI flags (SPEC_FULL
// §6), installs it as slog's default, and returns a cleanup func the
// caller defers. logFile == "" logs to stderr.
func Init(logLevel, logFile string) func() {
	level := parseLevel(logLevel)
	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stderr
	var rw *rotatingWriter
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: failed to open log file: %v\n", err)
		} else {
			rw = &rotatingWriter{path: logFile, file: f}
			out = rw
		}
	}

	Log = slog.New(slog.NewJSONHandler(out, opts))
	slog.SetDefault(Log)

	if rw != nil {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGHUP)
		go func() {
			for range sigs {
				rw.reopen()
			}
		}()
		return func() { rw.mu.Lock(); _ = rw.file.Close(); rw.mu.Unlock() }
	}
	return func() {}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
