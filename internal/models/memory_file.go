// ABOUTME: MemoryFile is the on-disk root object for the conversation log
// ABOUTME: Carries the version, rolling turns, storytime entries, and migration markers
package models

import "encoding/json"

// CurrentMemoryVersion is the on-disk format version.
// The version is monotonically non-decreasing across loads.
const CurrentMemoryVersion = 2

// StorytimeCap caps the storytime sequence length.
const StorytimeCap = 200

// MemoryFile is the root object persisted at memory.json
type MemoryFile struct {
	Version      int               `json:"version"`
	Conversation []Turn            `json:"conversation"`
	Storytime    []json.RawMessage `json:"storytime,omitempty"`
	Migrations   map[string]string `json:"migrations,omitempty"`
}

// NewMemoryFile returns an empty memory file at the current version.
func NewMemoryFile() MemoryFile {
	return MemoryFile{
		Version:      CurrentMemoryVersion,
		Conversation: []Turn{},
	}
}
