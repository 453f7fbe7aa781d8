// ABOUTME: Structured issue log for operator-visible failures
// ABOUTME: Writes newline-delimited JSON entries with stable grep-able codes
package issuelog

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Stable issue codes. Operators grep the log by prefix: PHX-MEM-01x for
// memory failures, PHX-BOOT-5xx for boot integration.
const (
	CodeMemWriteFailed    = "PHX-MEM-010"
	CodeMemWriteFallback  = "PHX-MEM-011"
	CodeMemCorrupt        = "PHX-MEM-012"
	CodeMemExportFailed   = "PHX-MEM-013"
	CodeMemQuarantineCopy = "PHX-MEM-014"
	CodeBootConfig        = "PHX-BOOT-500"
	CodeBootStorage       = "PHX-BOOT-501"
)

// Severity levels for issue entries
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Logger appends structured issue entries to a rotating log file.
// Writes never propagate errors to callers; a failed issue write is dropped.
type Logger struct {
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// New creates a Logger writing to the given path, rotating at 5 MB.
// The parent directory is created if missing.
func New(path string) *Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Nop()
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}
	return &Logger{
		log: zerolog.New(w),
		now: time.Now,
	}
}

// Nop returns a Logger that discards everything, for tests and degraded boot.
func Nop() *Logger {
	return &Logger{
		log: zerolog.New(io.Discard),
		now: time.Now,
	}
}

// Report writes one issue entry. extra may be nil.
func (l *Logger) Report(code, severity, source, message, detail string, extra map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := l.log.Log().
		Str("ts", l.now().UTC().Format(time.RFC3339)).
		Str("code", code).
		Str("severity", severity).
		Str("source", source)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	if len(extra) > 0 {
		ev = ev.Interface("extra", extra)
	}
	ev.Msg(message)
}
