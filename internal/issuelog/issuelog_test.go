// ABOUTME: Tests for the structured issue log
// ABOUTME: Verifies NDJSON entry shape and the nop logger

package issuelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReport_WritesStructuredEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "issues.log")
	l := New(path)
	l.now = func() time.Time { return time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC) }

	l.Report(CodeMemCorrupt, SeverityError, "atomicfile",
		"corrupt file quarantined", "unexpected EOF",
		map[string]any{"path": "/data/memory.json"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading issue log: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v\n%s", err, line)
	}

	if entry["code"] != CodeMemCorrupt {
		t.Errorf("code = %v, want %s", entry["code"], CodeMemCorrupt)
	}
	if entry["severity"] != SeverityError {
		t.Errorf("severity = %v, want error", entry["severity"])
	}
	if entry["source"] != "atomicfile" {
		t.Errorf("source = %v", entry["source"])
	}
	if entry["detail"] != "unexpected EOF" {
		t.Errorf("detail = %v", entry["detail"])
	}
	if entry["ts"] != "2026-04-01T08:00:00Z" {
		t.Errorf("ts = %v", entry["ts"])
	}
	if entry["message"] != "corrupt file quarantined" {
		t.Errorf("message = %v", entry["message"])
	}
	extra, ok := entry["extra"].(map[string]any)
	if !ok || extra["path"] != "/data/memory.json" {
		t.Errorf("extra = %v", entry["extra"])
	}
}

func TestReport_MultipleEntriesAreLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.log")
	l := New(path)

	l.Report(CodeMemWriteFailed, SeverityError, "test", "one", "", nil)
	l.Report(CodeMemWriteFallback, SeverityWarning, "test", "two", "", nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading issue log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line is not valid JSON: %v", err)
		}
	}
}

func TestNop_DiscardsSilently(t *testing.T) {
	l := Nop()
	// Must not panic or touch the filesystem.
	l.Report(CodeBootConfig, SeverityError, "test", "message", "detail", nil)
	l.Report("", "", "", "", "", map[string]any{"k": "v"})
}
