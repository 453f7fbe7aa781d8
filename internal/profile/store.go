// ABOUTME: Per-user profile store with lazy loading, sanitize pass, and fact recording
// ABOUTME: One JSON file per user keyed by a filesystem-safe handle
package profile

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bjorgsun/companion-core/internal/atomicfile"
	"github.com/bjorgsun/companion-core/internal/issuelog"
	"github.com/bjorgsun/companion-core/internal/models"
)

const maxFactLen = 240

// Options configures a Store.
type Options struct {
	UsersDir    string
	DefaultUser string
	Writer      *atomicfile.Writer
	Issues      *issuelog.Logger
	Audit       *Audit

	// IsOwner reports whether a safe handle belongs to the owner.
	IsOwner func(handle string) bool
	// FatherApproval consumes one owner-override grant; nil denies all
	// father assignments to non-owner keys.
	FatherApproval func() bool
}

// Store is the per-user profile cache. Mutating operations flush the owning
// profile file; the lock is not held across the atomic write.
type Store struct {
	mu             sync.Mutex
	usersDir       string
	defaultUser    string
	writer         *atomicfile.Writer
	issues         *issuelog.Logger
	audit          *Audit
	isOwner        func(string) bool
	fatherApproval func() bool
	cache          map[string]*models.UserProfile
	now            func() time.Time
}

// NewStore creates a Store. Profiles are created lazily on first access.
func NewStore(opts Options) *Store {
	if opts.Issues == nil {
		opts.Issues = issuelog.Nop()
	}
	if opts.Writer == nil {
		opts.Writer = atomicfile.NewWriter(opts.Issues, "")
	}
	if opts.IsOwner == nil {
		opts.IsOwner = func(string) bool { return false }
	}
	return &Store{
		usersDir:       opts.UsersDir,
		defaultUser:    opts.DefaultUser,
		writer:         opts.Writer,
		issues:         opts.Issues,
		audit:          opts.Audit,
		isOwner:        opts.IsOwner,
		fatherApproval: opts.FatherApproval,
		cache:          map[string]*models.UserProfile{},
		now:            time.Now,
	}
}

// SafeHandle derives a filesystem-safe key from a user handle. Anything
// outside [A-Za-z0-9_-] becomes an underscore; empty falls back to fallback.
func SafeHandle(user, fallback string) string {
	user = strings.TrimSpace(user)
	if user == "" {
		return fallback
	}
	out := make([]rune, 0, len(user))
	for _, r := range user {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Handle resolves a raw user key to the safe handle for this store.
func (s *Store) Handle(user string) string {
	return SafeHandle(user, s.defaultUser)
}

func (s *Store) path(handle string) string {
	return filepath.Join(s.usersDir, handle, "profile.json")
}

// Get returns the profile for user, creating it on first access. The sanitize
// pass runs once per load and flushes when it changed anything.
func (s *Store) Get(user string) *models.UserProfile {
	handle := s.Handle(user)

	s.mu.Lock()
	p, flush := s.getLocked(handle, user)
	var snap models.UserProfile
	if flush {
		snap = *p
	}
	s.mu.Unlock()

	if flush {
		s.flush(handle, &snap)
	}
	return p
}

// getLocked loads or creates the profile for handle. The second return is
// true when the file needs a flush (new profile or sanitize changes).
func (s *Store) getLocked(handle, rawUser string) (*models.UserProfile, bool) {
	if p, ok := s.cache[handle]; ok {
		return p, false
	}

	p := &models.UserProfile{}
	if s.writer.ReadJSON(s.path(handle), p) {
		changed := s.sanitize(p, handle, rawUser)
		s.cache[handle] = p
		return p, changed
	}

	display := strings.TrimSpace(rawUser)
	p = models.NewUserProfile(handle, display, s.now())
	s.cache[handle] = p
	return p, true
}

// sanitize coerces a loaded profile to the current shape. Idempotent.
func (s *Store) sanitize(p *models.UserProfile, handle, rawUser string) bool {
	changed := false

	if p.User == "" {
		p.User = handle
		changed = true
	}
	if p.DisplayName == "" {
		display := strings.TrimSpace(rawUser)
		if display == "" {
			display = handle
		}
		p.DisplayName = display
		changed = true
	}
	if p.Facts == nil {
		p.Facts = map[string][]string{}
		changed = true
	}
	for _, cat := range models.FactCategories {
		if p.Facts[cat] == nil {
			p.Facts[cat] = []string{}
			changed = true
		}
	}

	// Drop contact entries whose phone digit count is out of bounds.
	kept := p.Facts[models.CategoryContacts][:0]
	for _, entry := range p.Facts[models.CategoryContacts] {
		if validContact(entry) {
			kept = append(kept, entry)
		} else {
			changed = true
		}
	}
	p.Facts[models.CategoryContacts] = kept

	if !models.IsRelationship(p.Relationship) {
		p.Relationship = models.RelationshipDefault
		changed = true
	}
	if p.Interactions < 0 {
		p.Interactions = 0
		changed = true
	}
	if len(p.Rules) == 0 {
		p.Rules = models.PrivacyRules
		changed = true
	}
	if p.Created == "" {
		p.Created = models.FormatHumanTimestamp(s.now())
		changed = true
	}
	if p.Updated == "" {
		p.Updated = p.Created
		changed = true
	}
	return changed
}

// validContact enforces the phone digit bounds on phone entries. Non-phone
// contact entries (email) pass through.
func validContact(entry string) bool {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(entry)), "phone:") {
		return true
	}
	n := countDigits(entry)
	return n >= 7 && n <= 14
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// flush writes a profile snapshot to its file.
func (s *Store) flush(handle string, snap *models.UserProfile) {
	_ = s.writer.WriteJSON(s.path(handle), snap)
}

// mutate runs fn on the profile for user under the lock, stamps Updated, and
// flushes outside the lock. fn returns false to skip the flush.
func (s *Store) mutate(user string, fn func(p *models.UserProfile) bool) {
	handle := s.Handle(user)

	s.mu.Lock()
	p, created := s.getLocked(handle, user)
	mutated := fn(p)
	if mutated {
		p.Updated = models.FormatHumanTimestamp(s.now())
	}
	if !mutated && !created {
		s.mu.Unlock()
		return
	}
	snap := *p
	s.mu.Unlock()

	s.flush(handle, &snap)
}

// EnsureProfile upserts the profile, updating the display name when provided
// and different.
func (s *Store) EnsureProfile(user, displayName string) *models.UserProfile {
	p := s.Get(user)
	if displayName != "" && displayName != p.DisplayName {
		s.mutate(user, func(p *models.UserProfile) bool {
			p.DisplayName = displayName
			return true
		})
	}
	return p
}

// RecordFact stores a fact under an allow-listed category and mirrors it into
// the audit log. Returns true when the fact was new.
func (s *Store) RecordFact(category, value, user string) bool {
	if !models.IsFactCategory(category) {
		return false
	}
	cleaned := CleanFactValue(value)
	if cleaned == "" {
		return false
	}
	if category == models.CategoryContacts && !validContact(cleaned) {
		return false
	}

	handle := s.Handle(user)
	added := false

	s.mutate(user, func(p *models.UserProfile) bool {
		lower := strings.ToLower(cleaned)
		for _, existing := range p.Facts[category] {
			if strings.ToLower(existing) == lower {
				return false
			}
		}
		p.Facts[category] = append(p.Facts[category], cleaned)
		added = true
		return true
	})

	if added && s.audit != nil {
		s.audit.Record(category, cleaned, handle)
	}
	return added
}

// Summarize renders a short human line: up to perCategory values from each of
// preferences, habits, appearance, location, plus a non-default relationship.
func (s *Store) Summarize(user string, perCategory int) string {
	if perCategory <= 0 {
		perCategory = 3
	}
	p := s.Get(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	for _, cat := range []string{
		models.CategoryPreferences,
		models.CategoryHabits,
		models.CategoryAppearance,
		models.CategoryLocation,
	} {
		values := p.Facts[cat]
		if len(values) == 0 {
			continue
		}
		if len(values) > perCategory {
			values = values[:perCategory]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", cat, strings.Join(values, ", ")))
	}
	if p.Relationship != models.RelationshipDefault {
		parts = append(parts, fmt.Sprintf("Relationship: %s", p.Relationship))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Nothing learned about %s yet.", p.DisplayName)
	}
	return strings.Join(parts, "; ")
}

// CleanFactValue trims, collapses inner whitespace, and caps a fact string.
func CleanFactValue(value string) string {
	cleaned := strings.Join(strings.Fields(value), " ")
	if len(cleaned) > maxFactLen {
		cleaned = cleaned[:maxFactLen]
	}
	return cleaned
}
