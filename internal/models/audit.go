// ABOUTME: Preference audit log shapes, including the legacy flat-record form
// ABOUTME: Current layout nests entries by user then category, with first/last-seen stamps
package models

// CurrentAuditVersion is the preference audit log format version.
const CurrentAuditVersion = 2

// AuditEntry records one learned value with its first and latest sighting
type AuditEntry struct {
	Value         string `json:"value"`
	FirstRecorded string `json:"first_recorded"`
	LastUpdated   string `json:"last_updated"`
}

// AuditFile is the versioned root of preferences_log.json
type AuditFile struct {
	Version int                                `json:"version"`
	Users   map[string]map[string][]AuditEntry `json:"users"`
}

// NewAuditFile returns an empty audit file at the current version.
func NewAuditFile() AuditFile {
	return AuditFile{
		Version: CurrentAuditVersion,
		Users:   map[string]map[string][]AuditEntry{},
	}
}

// LegacyAuditRecord is one record of the pre-v2 flat list layout.
// Legacy files are rewritten into the nested shape on first load.
type LegacyAuditRecord struct {
	User          string `json:"user"`
	Category      string `json:"category"`
	Value         string `json:"value"`
	FirstRecorded string `json:"first_recorded"`
	LastUpdated   string `json:"last_updated"`
}
