// ABOUTME: Crash-safe JSON file writer with retry and corrupt-file quarantine
// ABOUTME: Guarantees a target file is either the old bytes or the new bytes, never a torn middle
package atomicfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bjorgsun/companion-core/internal/issuelog"
	"github.com/google/uuid"
)

const (
	writeAttempts = 3
	baseDelay     = 200 * time.Millisecond
	stampLayout   = "20060102_150405"
)

// Writer performs atomic write-then-rename file updates and quarantines
// unreadable files on load. It holds no file handles between operations.
type Writer struct {
	issues     *issuelog.Logger
	exportsDir string

	// test seams
	sleep  func(time.Duration)
	rename func(oldpath, newpath string) error
}

// NewWriter creates a Writer. Quarantined file copies are archived under
// exportsDir for post-mortem; pass "" to skip archiving.
func NewWriter(issues *issuelog.Logger, exportsDir string) *Writer {
	if issues == nil {
		issues = issuelog.Nop()
	}
	return &Writer{
		issues:     issues,
		exportsDir: exportsDir,
		sleep:      time.Sleep,
		rename:     os.Rename,
	}
}

// WriteJSON marshals v as pretty-printed UTF-8 JSON and writes it atomically.
func (w *Writer) WriteJSON(path string, v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		w.issues.Report(issuelog.CodeMemWriteFailed, issuelog.SeverityError, "atomicfile",
			"marshal failed", err.Error(), map[string]any{"path": path})
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return w.Write(path, data)
}

// Write writes data to path via a sibling temp file and rename. On repeated
// failure it falls back to a direct overwrite; a terminal failure is recorded
// in the issue log and returned.
func (w *Writer) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.issues.Report(issuelog.CodeMemWriteFailed, issuelog.SeverityError, "atomicfile",
			"mkdir failed", err.Error(), map[string]any{"path": path})
		return fmt.Errorf("creating parent dir for %s: %w", path, err)
	}

	var lastErr error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		tmp := fmt.Sprintf("%s.tmp.%s", path, uuid.New().String()[:8])
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			lastErr = err
		} else if err := w.rename(tmp, path); err != nil {
			lastErr = err
		} else {
			return nil
		}
		_ = os.Remove(tmp)
		w.sleep(baseDelay * time.Duration(attempt))
	}

	// Last resort: direct overwrite. Loses atomicity but keeps the data.
	if err := os.WriteFile(path, data, 0644); err == nil {
		w.issues.Report(issuelog.CodeMemWriteFallback, issuelog.SeverityWarning, "atomicfile",
			"atomic rename failed, wrote directly", lastErr.Error(), map[string]any{"path": path})
		return nil
	}

	w.issues.Report(issuelog.CodeMemWriteFailed, issuelog.SeverityError, "atomicfile",
		"write failed after retries", lastErr.Error(), map[string]any{"path": path})
	return fmt.Errorf("writing %s: %w", path, lastErr)
}

// Read returns the raw contents of path when they parse as JSON.
// Missing files return (nil, false). Empty or unparseable files are
// quarantined and return (nil, false); callers rebuild defaults.
func (w *Writer) Read(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		w.quarantine(path, data)
		return nil, false
	}
	return data, true
}

// ReadJSON reads path and unmarshals it into v. A file that parses as JSON
// but does not fit v's shape is quarantined like any other corruption.
func (w *Writer) ReadJSON(path string, v any) bool {
	data, ok := w.Read(path)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		w.quarantine(path, data)
		return false
	}
	return true
}

// quarantine renames the bad file aside and archives a copy for post-mortem.
func (w *Writer) quarantine(path string, data []byte) {
	stamp := time.Now().UTC().Format(stampLayout)
	corruptPath := fmt.Sprintf("%s.corrupt.%s.json", path, stamp)

	renameErr := w.rename(path, corruptPath)

	if w.exportsDir != "" {
		copyPath := filepath.Join(w.exportsDir, fmt.Sprintf("memory_corrupt_%s.json", stamp))
		if err := os.MkdirAll(w.exportsDir, 0755); err == nil {
			if err := os.WriteFile(copyPath, data, 0644); err != nil {
				w.issues.Report(issuelog.CodeMemQuarantineCopy, issuelog.SeverityWarning, "atomicfile",
					"quarantine copy failed", err.Error(), map[string]any{"path": copyPath})
			}
		}
	}

	detail := ""
	if renameErr != nil {
		detail = renameErr.Error()
	}
	w.issues.Report(issuelog.CodeMemCorrupt, issuelog.SeverityError, "atomicfile",
		"corrupt file quarantined", detail, map[string]any{"path": path, "quarantine": corruptPath})
}

// marshalIndent pretty-prints without escaping non-ASCII or HTML runes.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
