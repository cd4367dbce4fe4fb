// Package log provides the debug logger shared by git-changed packages.
// Messages are buffered until a sink is chosen with SetFile or SetOutput.
package log

import (
	"io"
	"log"
	"os"
	"sync"
)

// DebugLogger handles debug logging to a file, an arbitrary writer, or a buffer.
// It implements io.Writer to be compatible with standard log.Logger.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	out     io.Writer
	buffer  []byte
	discard bool
}

var (
	globalDebugLogger = &DebugLogger{}
	stdLogger         = log.New(globalDebugLogger, "", log.LstdFlags|log.Lmicroseconds)
)

// Write implements io.Writer.
func (l *DebugLogger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.discard {
		return len(p), nil
	}

	if l.out != nil {
		n, err = l.out.Write(p)
		if l.file != nil {
			// Sync to disk so messages survive an os.Exit right after.
			_ = l.file.Sync()
		}
		return n, err
	}

	// p might be reused by the caller
	b := make([]byte, len(p))
	copy(b, p)
	l.buffer = append(l.buffer, b...)
	return len(p), nil
}

// setSinkLocked closes any open file, installs w and flushes the buffer into it.
func (l *DebugLogger) setSinkLocked(f *os.File, w io.Writer) {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	l.file = f
	l.out = w
	l.discard = w == nil
	if w != nil && len(l.buffer) > 0 {
		_, _ = w.Write(l.buffer)
		if f != nil {
			_ = f.Sync()
		}
	}
	l.buffer = nil
}

// SetFile sets the debug log file path. Creates the file if it doesn't exist.
// If path is empty, discards all buffered logs and future logs.
func SetFile(path string) error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if path == "" {
		globalDebugLogger.setSinkLocked(nil, nil)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		globalDebugLogger.setSinkLocked(nil, nil)
		return err
	}
	globalDebugLogger.setSinkLocked(f, f)
	return nil
}

// SetOutput sends buffered and future logs to w, typically os.Stderr for --verbose.
// A nil writer behaves like SetFile("").
func SetOutput(w io.Writer) {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	globalDebugLogger.setSinkLocked(nil, w)
}

// Printf writes a formatted debug message via the standard logger.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a debug message via the standard logger.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Close closes the debug log file if open. Later messages are discarded.
func Close() error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	globalDebugLogger.out = nil
	globalDebugLogger.discard = true
	if globalDebugLogger.file == nil {
		return nil
	}

	err := globalDebugLogger.file.Close()
	globalDebugLogger.file = nil
	return err
}
