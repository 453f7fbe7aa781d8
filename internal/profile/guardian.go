// ABOUTME: Relationship auto-promotion and the guardian incident/forgiveness machinery
// ABOUTME: Protected statuses never auto-change; father assignment consumes an owner override
package profile

import (
	"github.com/bjorgsun/companion-core/internal/models"
)

// Apology outcomes
const (
	ApologyNoPending    = "no_pending"
	ApologyForgiven     = "forgiven"
	ApologyLimitReached = "limit_reached"
)

// UnlimitedForgiveness marks the father budget.
const UnlimitedForgiveness = -1

// ApologyResult reports the outcome of processing one apology.
type ApologyResult struct {
	Status    string `json:"status"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
}

// ForgivenessLimit derives the apology budget from a relationship:
// father is unlimited, family gets 26, everyone else 3.
func ForgivenessLimit(relationship string) int {
	switch relationship {
	case models.RelationshipFather:
		return UnlimitedForgiveness
	case models.RelationshipFamily:
		return 26
	default:
		return 3
	}
}

// RecordInteraction bumps the interaction counter and applies auto-promotion:
// an unknown user who was mentioned becomes an acquaintance, and an
// acquaintance with three interactions becomes a friend. Protected statuses
// are never touched. Returns the updated counter.
func (s *Store) RecordInteraction(user string, weight int, mentioned bool) int {
	if weight <= 0 {
		weight = 1
	}
	total := 0
	s.mutate(user, func(p *models.UserProfile) bool {
		p.Interactions += weight
		total = p.Interactions

		if models.IsProtectedRelationship(p.Relationship) {
			return true
		}
		switch {
		case p.Relationship == models.RelationshipDefault && mentioned:
			p.Relationship = models.RelationshipAcquaintance
		case p.Relationship == models.RelationshipAcquaintance && p.Interactions >= 3:
			p.Relationship = models.RelationshipFriend
		}
		return true
	})
	return total
}

// SetRelationship assigns an explicit status. Unknown statuses are rejected.
// Assigning father to a non-owner key consumes one owner-override grant and
// is otherwise rejected silently. Returns true when the status was stored.
func (s *Store) SetRelationship(user, status string) bool {
	if !models.IsRelationship(status) {
		return false
	}
	handle := s.Handle(user)
	if status == models.RelationshipFather && !s.isOwner(user) && !s.isOwner(handle) {
		if s.fatherApproval == nil || !s.fatherApproval() {
			return false
		}
	}

	s.mutate(user, func(p *models.UserProfile) bool {
		if p.Relationship == status {
			return false
		}
		p.Relationship = status
		return true
	})
	return true
}

// Relationship returns the user's current status.
func (s *Store) Relationship(user string) string {
	return s.Get(user).Relationship
}

// RegisterIncident increments the incident counter and flags a pending
// incident with its reason, severity, and timestamp.
func (s *Store) RegisterIncident(user, reason, severity string) {
	s.mutate(user, func(p *models.UserProfile) bool {
		p.Guardian.Incidents++
		p.Guardian.Pending = true
		p.Guardian.PendingReason = reason
		p.Guardian.PendingSeverity = severity
		p.Guardian.PendingTS = models.FormatTimestamp(s.now())
		return true
	})
}

// PendingIncident reports whether an incident awaits an apology.
func (s *Store) PendingIncident(user string) bool {
	return s.Get(user).Guardian.Pending
}

// ProcessApology resolves a pending incident against the forgiveness budget.
// relationship overrides the profile's status when non-empty.
func (s *Store) ProcessApology(user, relationship string) ApologyResult {
	var result ApologyResult

	s.mutate(user, func(p *models.UserProfile) bool {
		rel := relationship
		if rel == "" {
			rel = p.Relationship
		}
		limit := ForgivenessLimit(rel)
		result.Limit = limit
		result.Used = p.Guardian.ForgivenessUsed

		if !p.Guardian.Pending {
			result.Status = ApologyNoPending
			result.Remaining = remaining(limit, p.Guardian.ForgivenessUsed)
			return false
		}

		if limit == UnlimitedForgiveness {
			clearPendingLocked(p)
			result.Status = ApologyForgiven
			result.Remaining = UnlimitedForgiveness
			return true
		}

		if p.Guardian.ForgivenessUsed < limit {
			clearPendingLocked(p)
			p.Guardian.ForgivenessUsed++
			result.Status = ApologyForgiven
			result.Used = p.Guardian.ForgivenessUsed
			result.Remaining = limit - p.Guardian.ForgivenessUsed
			return true
		}

		result.Status = ApologyLimitReached
		result.Remaining = 0
		return false
	})

	return result
}

// ClearPendingIncident resets the pending flag without consuming a
// forgiveness credit.
func (s *Store) ClearPendingIncident(user string) {
	s.mutate(user, func(p *models.UserProfile) bool {
		if !p.Guardian.Pending {
			return false
		}
		clearPendingLocked(p)
		return true
	})
}

func clearPendingLocked(p *models.UserProfile) {
	p.Guardian.Pending = false
	p.Guardian.PendingReason = ""
	p.Guardian.PendingSeverity = ""
	p.Guardian.PendingTS = ""
}

func remaining(limit, used int) int {
	if limit == UnlimitedForgiveness {
		return UnlimitedForgiveness
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
