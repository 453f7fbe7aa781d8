// ABOUTME: Turn represents a single entry in the rolling conversation log
// ABOUTME: Immutable once appended; content is always a non-empty string
package models

import (
	"strings"
	"time"
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one conversation entry
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewTurn creates a turn stamped with the given time in UTC.
// Unknown or empty roles collapse to system; empty content returns ok=false.
func NewTurn(role, content string, now time.Time) (Turn, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Turn{}, false
	}
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		role = RoleSystem
	}
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: FormatTimestamp(now),
	}, true
}

// FormatTimestamp renders an ISO-8601 UTC timestamp with a Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
