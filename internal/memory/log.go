// ABOUTME: Rolling conversation log with dedup, size caps, and atomic persistence
// ABOUTME: Tolerates list-or-dict roots, legacy flat files, and corrupt memory files
package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bjorgsun/companion-core/internal/atomicfile"
	"github.com/bjorgsun/companion-core/internal/issuelog"
	"github.com/bjorgsun/companion-core/internal/models"
)

const (
	// memoryHeadroom is the in-memory multiple of the at-rest cap, absorbing
	// bursts between saves.
	memoryHeadroom = 3

	// legacyMergeMigration marks the one-shot legacy file merge.
	legacyMergeMigration = "legacy_merge_done"
)

// Options configures a Log.
type Options struct {
	Path         string
	LegacyPath   string
	ExportsDir   string
	CacheHistory int
	Writer       *atomicfile.Writer
	Issues       *issuelog.Logger
}

// Log is the conversation log. All public methods are safe for concurrent
// use; the lock is never held across the atomic file write.
type Log struct {
	mu           sync.Mutex
	path         string
	legacyPath   string
	exportsDir   string
	cacheHistory int
	persist      bool
	writer       *atomicfile.Writer
	issues       *issuelog.Logger
	file         models.MemoryFile
	now          func() time.Time
}

// NewLog creates an unloaded Log. Persistence defaults ON regardless of any
// privacy mode; only SetPersistence flips it.
func NewLog(opts Options) *Log {
	if opts.CacheHistory <= 0 {
		opts.CacheHistory = 26000
	}
	if opts.Issues == nil {
		opts.Issues = issuelog.Nop()
	}
	if opts.Writer == nil {
		opts.Writer = atomicfile.NewWriter(opts.Issues, opts.ExportsDir)
	}
	return &Log{
		path:         opts.Path,
		legacyPath:   opts.LegacyPath,
		exportsDir:   opts.ExportsDir,
		cacheHistory: opts.CacheHistory,
		persist:      true,
		writer:       opts.Writer,
		issues:       opts.Issues,
		file:         models.NewMemoryFile(),
		now:          time.Now,
	}
}

// rawTurn tolerates the shapes legacy writers produced: content under
// "content" or "text", missing roles, missing timestamps.
type rawTurn struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Text      json.RawMessage `json:"text"`
	Timestamp string          `json:"timestamp"`
}

// Load rebuilds the in-memory log from disk. A missing or quarantined file
// yields an empty log; a legacy flat file is merged exactly once.
func (l *Log) Load() {
	l.mu.Lock()

	l.file = models.NewMemoryFile()

	if data, ok := l.writer.Read(l.path); ok {
		l.file = l.decodeRoot(data)
	}

	if l.file.Version < models.CurrentMemoryVersion {
		l.file.Version = models.CurrentMemoryVersion
	}
	if len(l.file.Storytime) > models.StorytimeCap {
		l.file.Storytime = l.file.Storytime[len(l.file.Storytime)-models.StorytimeCap:]
	}

	merged := l.mergeLegacy()
	l.trimLocked()

	var snap models.MemoryFile
	if merged {
		snap = l.snapshotLocked()
	}
	l.mu.Unlock()

	if merged {
		_ = l.writer.WriteJSON(l.path, snap)
	}
}

// decodeRoot accepts either the current dict root or a bare turn sequence.
func (l *Log) decodeRoot(data []byte) models.MemoryFile {
	file := models.NewMemoryFile()

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []rawTurn
		if err := json.Unmarshal(trimmed, &raw); err == nil {
			file.Conversation = l.normalizeTurns(raw)
		}
		return file
	}

	var root struct {
		Version      int               `json:"version"`
		Conversation []rawTurn         `json:"conversation"`
		Storytime    []json.RawMessage `json:"storytime"`
		Migrations   map[string]string `json:"migrations"`
	}
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return file
	}
	if root.Version > file.Version {
		file.Version = root.Version
	}
	file.Conversation = l.normalizeTurns(root.Conversation)
	file.Storytime = root.Storytime
	if root.Migrations != nil {
		file.Migrations = root.Migrations
	}
	return file
}

// normalizeTurns applies the load-time normalization rules: content or text,
// system role fallback, now-UTC timestamp fallback, empty entries dropped.
func (l *Log) normalizeTurns(raw []rawTurn) []models.Turn {
	turns := make([]models.Turn, 0, len(raw))
	for _, r := range raw {
		content := decodeContent(r.Content)
		if content == "" {
			content = decodeContent(r.Text)
		}
		turn, ok := models.NewTurn(r.Role, content, l.now())
		if !ok {
			continue
		}
		if r.Timestamp != "" {
			turn.Timestamp = r.Timestamp
		}
		turns = append(turns, turn)
	}
	return turns
}

// decodeContent renders a raw JSON value as the turn content string.
// Non-string values are kept as their compact JSON encoding.
func decodeContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// mergeLegacy folds the legacy flat memory file into the conversation once,
// deduping on (role, content) across the union. Returns true when a merge ran.
func (l *Log) mergeLegacy() bool {
	if l.legacyPath == "" {
		return false
	}
	if _, done := l.file.Migrations[legacyMergeMigration]; done {
		return false
	}
	data, ok := l.writer.Read(l.legacyPath)
	if !ok {
		return false
	}

	legacy := l.decodeRoot(data)

	seen := make(map[string]bool, len(l.file.Conversation))
	for _, t := range l.file.Conversation {
		seen[t.Role+"\x00"+t.Content] = true
	}
	var fresh []models.Turn
	for _, t := range legacy.Conversation {
		key := t.Role + "\x00" + t.Content
		if seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, t)
	}

	// Legacy turns predate the current log, so they go in front.
	l.file.Conversation = append(fresh, l.file.Conversation...)

	if l.file.Migrations == nil {
		l.file.Migrations = map[string]string{}
	}
	l.file.Migrations[legacyMergeMigration] = models.FormatTimestamp(l.now())
	return true
}

// Append adds one turn. Non-string content is JSON-encoded. Returns false for
// empty content or an exact repeat of the immediately prior (role, content).
func (l *Log) Append(role string, content any) bool {
	text, ok := contentString(content)
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(role, text)
}

func (l *Log) appendLocked(role, text string) bool {
	turn, ok := models.NewTurn(role, text, l.now())
	if !ok {
		return false
	}
	if n := len(l.file.Conversation); n > 0 {
		prev := l.file.Conversation[n-1]
		if prev.Role == turn.Role && prev.Content == turn.Content {
			return false
		}
	}
	l.file.Conversation = append(l.file.Conversation, turn)
	l.trimLocked()
	return true
}

func (l *Log) trimLocked() {
	if limit := l.cacheHistory * memoryHeadroom; len(l.file.Conversation) > limit {
		l.file.Conversation = l.file.Conversation[len(l.file.Conversation)-limit:]
	}
}

// contentString renders arbitrary content as a turn string.
func contentString(content any) (string, bool) {
	switch v := content.(type) {
	case string:
		return v, v != ""
	case nil:
		return "", false
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(data), true
	}
}

// Save flushes the log to disk, truncated to the last CacheHistory turns.
// A no-op when persistence is off; write failures land in the issue log.
func (l *Log) Save() {
	l.mu.Lock()
	if !l.persist {
		l.mu.Unlock()
		return
	}
	snap := l.snapshotLocked()
	l.mu.Unlock()

	_ = l.writer.WriteJSON(l.path, snap)
}

// snapshotLocked copies the file with the conversation truncated to the
// at-rest cap. Callers hold l.mu.
func (l *Log) snapshotLocked() models.MemoryFile {
	snap := l.file
	if len(snap.Conversation) > l.cacheHistory {
		snap.Conversation = snap.Conversation[len(snap.Conversation)-l.cacheHistory:]
	}
	snap.Conversation = append([]models.Turn(nil), snap.Conversation...)
	snap.Storytime = append([]json.RawMessage(nil), snap.Storytime...)
	return snap
}

// AppendAndSave composes Append and Save.
func (l *Log) AppendAndSave(role string, content any) bool {
	appended := l.Append(role, content)
	if appended {
		l.Save()
	}
	return appended
}

// AppendSystem JSON-encodes v and appends it as a system turn.
func (l *Log) AppendSystem(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return l.Append(models.RoleSystem, string(data))
}

// AppendStory records an opaque storytime object, trimming to the cap.
func (l *Log) AppendStory(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}

	l.mu.Lock()
	l.file.Storytime = append(l.file.Storytime, json.RawMessage(data))
	if len(l.file.Storytime) > models.StorytimeCap {
		l.file.Storytime = l.file.Storytime[len(l.file.Storytime)-models.StorytimeCap:]
	}
	persist := l.persist
	var snap models.MemoryFile
	if persist {
		snap = l.snapshotLocked()
	}
	l.mu.Unlock()

	if persist {
		_ = l.writer.WriteJSON(l.path, snap)
	}
	return true
}

// PruneRecent pops up to n newest turns and saves. Used to keep synthetic
// prompts out of the visible history. Returns the number removed.
func (l *Log) PruneRecent(n int) int {
	if n <= 0 {
		return 0
	}

	l.mu.Lock()
	if n > len(l.file.Conversation) {
		n = len(l.file.Conversation)
	}
	l.file.Conversation = l.file.Conversation[:len(l.file.Conversation)-n]
	persist := l.persist
	var snap models.MemoryFile
	if persist {
		snap = l.snapshotLocked()
	}
	l.mu.Unlock()

	if persist && n > 0 {
		_ = l.writer.WriteJSON(l.path, snap)
	}
	return n
}

// ExportSnapshot writes a timestamped copy of the full in-memory state into
// the exports folder. Returns ("", false) on failure; the failure is logged.
func (l *Log) ExportSnapshot(label string) (string, bool) {
	l.mu.Lock()
	snap := l.file
	snap.Conversation = append([]models.Turn(nil), snap.Conversation...)
	snap.Storytime = append([]json.RawMessage(nil), snap.Storytime...)
	l.mu.Unlock()

	name := fmt.Sprintf("memory_export_%s", l.now().UTC().Format("20060102_150405"))
	if label != "" {
		name += "_" + sanitizeLabel(label)
	}
	path := filepath.Join(l.exportsDir, name+".json")

	if err := l.writer.WriteJSON(path, snap); err != nil {
		l.issues.Report(issuelog.CodeMemExportFailed, issuelog.SeverityWarning, "memory",
			"snapshot export failed", err.Error(), map[string]any{"path": path})
		return "", false
	}
	return path, true
}

func sanitizeLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// SetPersistence toggles saving. Data keeps accumulating in memory when off.
func (l *Log) SetPersistence(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persist = on
}

// Persistence reports the persistence toggle.
func (l *Log) Persistence() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist
}

// Turns returns a copy of the in-memory conversation, oldest first.
func (l *Log) Turns() []models.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Turn(nil), l.file.Conversation...)
}

// Len reports the in-memory conversation length.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.file.Conversation)
}

// Migrated reports whether the named migration has completed.
func (l *Log) Migrated(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.file.Migrations[name]
	return ok
}

// StorytimeLen reports the storytime sequence length.
func (l *Log) StorytimeLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.file.Storytime)
}
