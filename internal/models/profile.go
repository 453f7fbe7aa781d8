// ABOUTME: UserProfile holds per-user facts, relationship state, and guardian counters
// ABOUTME: One JSON file per user under users/<safe-handle>/profile.json
package models

import "time"

// Relationship statuses. Anything outside this set falls back to the default
// on load.
const (
	RelationshipFather       = "father"
	RelationshipFamily       = "family"
	RelationshipBestFriend   = "best friend"
	RelationshipFriend       = "friend"
	RelationshipAcquaintance = "acquaintance"
	RelationshipDefault      = "don't know yet"
	RelationshipDislike      = "dislike"
	RelationshipIgnore       = "ignore"
	RelationshipBlock        = "block"
)

var relationshipSet = map[string]bool{
	RelationshipFather:       true,
	RelationshipFamily:       true,
	RelationshipBestFriend:   true,
	RelationshipFriend:       true,
	RelationshipAcquaintance: true,
	RelationshipDefault:      true,
	RelationshipDislike:      true,
	RelationshipIgnore:       true,
	RelationshipBlock:        true,
}

// protectedRelationships are never changed by auto-promotion.
var protectedRelationships = map[string]bool{
	RelationshipFather:     true,
	RelationshipFamily:     true,
	RelationshipBestFriend: true,
	RelationshipDislike:    true,
	RelationshipIgnore:     true,
	RelationshipBlock:      true,
}

// IsRelationship reports whether s is a member of the relationship set.
func IsRelationship(s string) bool {
	return relationshipSet[s]
}

// IsProtectedRelationship reports whether s is exempt from auto-promotion.
func IsProtectedRelationship(s string) bool {
	return protectedRelationships[s]
}

// Fact categories under the privacy allow-list
const (
	CategoryPreferences = "preferences"
	CategoryHabits      = "habits"
	CategoryAppearance  = "appearance"
	CategoryContacts    = "contacts"
	CategoryLocation    = "location"
	CategoryNotes       = "notes"
)

// FactCategories lists the six allowed categories in display order.
var FactCategories = []string{
	CategoryPreferences,
	CategoryHabits,
	CategoryAppearance,
	CategoryContacts,
	CategoryLocation,
	CategoryNotes,
}

// IsFactCategory reports whether c is an allowed fact category.
func IsFactCategory(c string) bool {
	for _, cat := range FactCategories {
		if cat == c {
			return true
		}
	}
	return false
}

// PrivacyRules are informational strings rewritten into every profile.
var PrivacyRules = []string{
	"Only learn facts under the allow-listed categories.",
	"Never store street addresses, coordinates, postal codes, or IP addresses.",
	"Phone numbers are kept only when they carry 7 to 14 digits.",
	"Locations are stored as coarse region/city names only.",
}

// GuardianState tracks incidents and the forgiveness budget per user
type GuardianState struct {
	Incidents       int    `json:"incidents"`
	Pending         bool   `json:"pending"`
	PendingReason   string `json:"pending_reason,omitempty"`
	PendingSeverity string `json:"pending_severity,omitempty"`
	PendingTS       string `json:"pending_ts,omitempty"`
	ForgivenessUsed int    `json:"forgiveness_used"`
}

// UserProfile is the per-user profile file
type UserProfile struct {
	User         string              `json:"user"`
	DisplayName  string              `json:"display_name"`
	Facts        map[string][]string `json:"facts"`
	Rules        []string            `json:"rules"`
	Relationship string              `json:"relationship"`
	Interactions int                 `json:"interactions"`
	Guardian     GuardianState       `json:"guardian"`
	Created      string              `json:"created"`
	Updated      string              `json:"updated"`
}

// NewUserProfile creates a profile with defaults for a fresh user.
func NewUserProfile(user, displayName string, now time.Time) *UserProfile {
	if displayName == "" {
		displayName = user
	}
	facts := make(map[string][]string, len(FactCategories))
	for _, cat := range FactCategories {
		facts[cat] = []string{}
	}
	stamp := FormatHumanTimestamp(now)
	return &UserProfile{
		User:         user,
		DisplayName:  displayName,
		Facts:        facts,
		Rules:        PrivacyRules,
		Relationship: RelationshipDefault,
		Guardian:     GuardianState{},
		Created:      stamp,
		Updated:      stamp,
	}
}

// FormatHumanTimestamp renders a human-readable UTC timestamp for profile
// created/updated fields.
func FormatHumanTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
