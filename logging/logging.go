// Package logging sets up the process wide slog logger. Output can be
// held back in memory until the terminal simulation has a pane to show
// it in, and is optionally copied to a log file.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	c "lautenbacher.net/ledtree/config"
)

// teeWriter buffers or forwards log output and always copies it to an
// optional file. Safe for concurrent use.
type teeWriter struct {
	mu        sync.Mutex
	buffer    bytes.Buffer
	target    io.Writer
	file      *os.File
	buffering bool
}

func (w *teeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.buffering {
		w.buffer.Write(p)
	} else if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}

	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

var writer *teeWriter

// Init installs a new default slog logger configured by cfg. With
// bufferOutput set, log lines are kept in memory until SetOutput is
// called; otherwise they go to stderr. cfg.File, when set, receives a
// copy of everything.
func Init(bufferOutput bool, cfg c.LogConfig) error {
	w := &teeWriter{buffering: bufferOutput}
	if !bufferOutput {
		w.target = os.Stderr
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		w.file = file
	}

	// On re-initialisation keep lines that are still buffered and release
	// the previous log file.
	if old := writer; old != nil {
		old.mu.Lock()
		if old.buffering && old.buffer.Len() > 0 {
			if bufferOutput {
				w.buffer.Write(old.buffer.Bytes())
			} else {
				w.target.Write(old.buffer.Bytes())
			}
		}
		old.buffer.Reset()
		if old.file != nil {
			old.file.Close()
			old.file = nil
		}
		old.mu.Unlock()
	}
	writer = w

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetOutput flushes buffered lines to target and switches to live output.
func SetOutput(target io.Writer) error {
	if writer == nil {
		return nil
	}
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.buffer.Len() > 0 {
		if _, err := target.Write(writer.buffer.Bytes()); err != nil {
			return err
		}
		writer.buffer.Reset()
	}
	writer.target = target
	writer.buffering = false
	return nil
}

// BufferOutput detaches the live target and starts buffering again,
// e.g. right before the terminal UI goes away.
func BufferOutput() {
	if writer == nil {
		return
	}
	writer.mu.Lock()
	defer writer.mu.Unlock()

	writer.target = nil
	writer.buffering = true
}

// Close flushes anything still buffered and closes the log file.
// Buffered lines go to the file if there is one, otherwise to stderr.
func Close() error {
	if writer == nil {
		return nil
	}
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error
	if writer.buffering && writer.buffer.Len() > 0 {
		// The file already holds a copy of every buffered line.
		if writer.file == nil {
			if _, err := os.Stderr.Write(writer.buffer.Bytes()); err != nil {
				firstErr = err
			}
		}
	}
	writer.buffer.Reset()

	if writer.file != nil {
		if err := writer.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		writer.file = nil
	}
	return firstErr
}
