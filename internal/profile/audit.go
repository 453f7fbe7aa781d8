// ABOUTME: Cross-user preference audit log with versioned storage
// ABOUTME: Migrates the legacy flat record list into the nested v2 shape in place
package profile

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/bjorgsun/companion-core/internal/atomicfile"
	"github.com/bjorgsun/companion-core/internal/models"
)

// Audit is the single-file, cross-user preference audit log.
type Audit struct {
	mu     sync.Mutex
	path   string
	writer *atomicfile.Writer
	file   models.AuditFile
	loaded bool
	now    func() time.Time
}

// NewAudit creates an Audit over the given file. The file is loaded lazily on
// first use and migrated from the legacy flat shape if needed.
func NewAudit(path string, writer *atomicfile.Writer) *Audit {
	if writer == nil {
		writer = atomicfile.NewWriter(nil, "")
	}
	return &Audit{
		path:   path,
		writer: writer,
		file:   models.NewAuditFile(),
		now:    time.Now,
	}
}

// loadLocked reads the audit file once. A legacy flat root is rewritten into
// the nested shape before any other operation. Returns true when the
// migration needs flushing.
func (a *Audit) loadLocked() bool {
	if a.loaded {
		return false
	}
	a.loaded = true
	a.file = models.NewAuditFile()

	data, ok := a.writer.Read(a.path)
	if !ok {
		return false
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []models.LegacyAuditRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return false
		}
		a.migrateLocked(records)
		return true
	}

	var file models.AuditFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return false
	}
	if file.Users == nil {
		file.Users = map[string]map[string][]models.AuditEntry{}
	}
	if file.Version < models.CurrentAuditVersion {
		file.Version = models.CurrentAuditVersion
	}
	a.file = file
	a.sanitizeLocked()
	return false
}

// migrateLocked rewrites legacy flat records into the nested v2 shape.
func (a *Audit) migrateLocked(records []models.LegacyAuditRecord) {
	stamp := models.FormatTimestamp(a.now())
	for _, rec := range records {
		if rec.User == "" || rec.Category == "" || rec.Value == "" {
			continue
		}
		entry := models.AuditEntry{
			Value:         rec.Value,
			FirstRecorded: rec.FirstRecorded,
			LastUpdated:   rec.LastUpdated,
		}
		if entry.FirstRecorded == "" {
			entry.FirstRecorded = stamp
		}
		if entry.LastUpdated == "" {
			entry.LastUpdated = entry.FirstRecorded
		}
		a.insertLocked(rec.User, rec.Category, entry)
	}
	a.sanitizeLocked()
}

// sanitizeLocked applies the contact digit bounds, same as the profile store.
func (a *Audit) sanitizeLocked() {
	for _, categories := range a.file.Users {
		entries := categories[models.CategoryContacts]
		if entries == nil {
			continue
		}
		kept := entries[:0]
		for _, e := range entries {
			if validContact(e.Value) {
				kept = append(kept, e)
			}
		}
		categories[models.CategoryContacts] = kept
	}
}

func (a *Audit) insertLocked(user, category string, entry models.AuditEntry) {
	if a.file.Users[user] == nil {
		a.file.Users[user] = map[string][]models.AuditEntry{}
	}
	a.file.Users[user][category] = append(a.file.Users[user][category], entry)
}

// Record upserts one value under (user, category). An existing entry matching
// case-insensitively gets its last_updated stamp bumped; otherwise a new
// entry is appended with first_recorded = last_updated = now.
func (a *Audit) Record(category, value, user string) {
	a.mu.Lock()
	a.loadLocked()

	stamp := models.FormatTimestamp(a.now())
	lower := strings.ToLower(value)
	found := false
	for i, entry := range a.file.Users[user][category] {
		if strings.ToLower(entry.Value) == lower {
			a.file.Users[user][category][i].LastUpdated = stamp
			found = true
			break
		}
	}
	if !found {
		a.insertLocked(user, category, models.AuditEntry{
			Value:         value,
			FirstRecorded: stamp,
			LastUpdated:   stamp,
		})
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	_ = a.writer.WriteJSON(a.path, snap)
}

// Entries returns a copy of the audit entries for (user, category).
func (a *Audit) Entries(user, category string) []models.AuditEntry {
	a.mu.Lock()
	migrated := a.loadLocked()
	entries := append([]models.AuditEntry(nil), a.file.Users[user][category]...)
	var snap models.AuditFile
	if migrated {
		snap = a.snapshotLocked()
	}
	a.mu.Unlock()

	if migrated {
		_ = a.writer.WriteJSON(a.path, snap)
	}
	return entries
}

func (a *Audit) snapshotLocked() models.AuditFile {
	snap := models.AuditFile{
		Version: a.file.Version,
		Users:   make(map[string]map[string][]models.AuditEntry, len(a.file.Users)),
	}
	for user, categories := range a.file.Users {
		snap.Users[user] = make(map[string][]models.AuditEntry, len(categories))
		for cat, entries := range categories {
			snap.Users[user][cat] = append([]models.AuditEntry(nil), entries...)
		}
	}
	return snap
}
