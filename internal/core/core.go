// ABOUTME: Core wires the conversation log, profile store, audit log, and owner gate
// ABOUTME: Exposes the single caller-facing surface used by external collaborators
package core

import (
	"fmt"
	"os"

	"github.com/bjorgsun/companion-core/internal/atomicfile"
	"github.com/bjorgsun/companion-core/internal/config"
	"github.com/bjorgsun/companion-core/internal/issuelog"
	"github.com/bjorgsun/companion-core/internal/memory"
	"github.com/bjorgsun/companion-core/internal/models"
	"github.com/bjorgsun/companion-core/internal/owner"
	"github.com/bjorgsun/companion-core/internal/profile"
)

// Core owns the companion's persistent memory state. External collaborators
// (HUD, speech I/O, Discord bridge, VR overlays) hold a *Core and nothing
// else; no file handles leak past this boundary.
type Core struct {
	cfg       *config.Config
	issues    *issuelog.Logger
	writer    *atomicfile.Writer
	log       *memory.Log
	profiles  *profile.Store
	audit     *profile.Audit
	extractor *profile.Extractor
	identity  *owner.Identity
	gate      *owner.Gate
}

// New initializes the core from configuration: directories are created, the
// conversation log is loaded (running any pending legacy migration), and the
// owner identity and override gate are derived.
func New(cfg *config.Config) (*Core, error) {
	return NewWithPrompt(cfg, nil)
}

// NewWithPrompt is New with an injectable override prompt, for hosts that own
// the interaction surface (and for tests).
func NewWithPrompt(cfg *config.Config, prompt owner.PromptFunc) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	for _, dir := range []string{cfg.DataRoot, cfg.ExportsDir, cfg.UsersDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	issues := issuelog.New(cfg.IssueLogPath)
	writer := atomicfile.NewWriter(issues, cfg.ExportsDir)

	identity := owner.NewIdentity(cfg.OwnerHandle, cfg.OwnerName, cfg.OwnerDiscordID, cfg.OwnerSafeAliases)
	gate := owner.NewGate(cfg.OwnerLastCode, prompt)

	audit := profile.NewAudit(cfg.PreferencesLogPath, writer)
	profiles := profile.NewStore(profile.Options{
		UsersDir:       cfg.UsersDir,
		DefaultUser:    profile.SafeHandle(cfg.OwnerHandle, "owner"),
		Writer:         writer,
		Issues:         issues,
		Audit:          audit,
		IsOwner:        identity.IsOwner,
		FatherApproval: gate.Consume,
	})

	log := memory.NewLog(memory.Options{
		Path:         cfg.MemoryPath,
		LegacyPath:   cfg.LegacyMemoryPath,
		ExportsDir:   cfg.ExportsDir,
		CacheHistory: cfg.CacheHistory,
		Writer:       writer,
		Issues:       issues,
	})
	log.Load()

	return &Core{
		cfg:       cfg,
		issues:    issues,
		writer:    writer,
		log:       log,
		profiles:  profiles,
		audit:     audit,
		extractor: profile.NewExtractor(profiles),
		identity:  identity,
		gate:      gate,
	}, nil
}

// Shutdown flushes the conversation log. Profile and audit mutations are
// already durable; this exists for symmetry with New.
func (c *Core) Shutdown() {
	c.log.Save()
}

// resolveUser applies the owner-handle default for empty user keys.
func (c *Core) resolveUser(user string) string {
	if user == "" {
		return c.cfg.OwnerHandle
	}
	return user
}

// --- conversation log ---

// LogTurn appends one turn and saves.
func (c *Core) LogTurn(role string, content any) bool {
	return c.log.AppendAndSave(role, content)
}

// LogSystemObject JSON-encodes v and appends it as a system turn, saving.
func (c *Core) LogSystemObject(v any) bool {
	if !c.log.AppendSystem(v) {
		return false
	}
	c.log.Save()
	return true
}

// LogStory records an opaque storytime object.
func (c *Core) LogStory(v any) bool {
	return c.log.AppendStory(v)
}

// SearchMemories retrieves up to maxHits relevant turns in chronological
// order. Non-positive maxHits defaults to 5.
func (c *Core) SearchMemories(query string, maxHits int) []models.Turn {
	return c.log.Search(query, maxHits)
}

// PruneRecent pops up to n newest turns and saves.
func (c *Core) PruneRecent(n int) int {
	return c.log.PruneRecent(n)
}

// SetPersistence toggles conversation-log saving.
func (c *Core) SetPersistence(on bool) {
	c.log.SetPersistence(on)
}

// Persistence reports the conversation-log persistence toggle.
func (c *Core) Persistence() bool {
	return c.log.Persistence()
}

// ExportSnapshot writes a timestamped memory export. Returns ("", false) on
// failure.
func (c *Core) ExportSnapshot(label string) (string, bool) {
	return c.log.ExportSnapshot(label)
}

// --- profiles ---

// GetProfile returns the profile for user, creating it on first access.
func (c *Core) GetProfile(user string) *models.UserProfile {
	return c.profiles.Get(c.resolveUser(user))
}

// EnsureProfile upserts the profile and its display name.
func (c *Core) EnsureProfile(user, displayName string) *models.UserProfile {
	return c.profiles.EnsureProfile(c.resolveUser(user), displayName)
}

// LearnFromText extracts allow-listed facts from one utterance. Returns true
// when anything new was learned.
func (c *Core) LearnFromText(text, user string) bool {
	return c.extractor.Learn(text, c.resolveUser(user))
}

// SummarizeUser renders a short profile summary line.
func (c *Core) SummarizeUser(user string, perCategory int) string {
	return c.profiles.Summarize(c.resolveUser(user), perCategory)
}

// --- relationships & guardian ---

// SetRelationship assigns an explicit relationship status. Father assignment
// to a non-owner requires a verified, unconsumed override grant.
func (c *Core) SetRelationship(user, status string) bool {
	return c.profiles.SetRelationship(c.resolveUser(user), status)
}

// GetRelationship returns the user's current relationship status.
func (c *Core) GetRelationship(user string) string {
	return c.profiles.Relationship(c.resolveUser(user))
}

// RecordInteraction bumps the interaction counter with auto-promotion.
func (c *Core) RecordInteraction(user string, weight int, mentioned bool) int {
	return c.profiles.RecordInteraction(c.resolveUser(user), weight, mentioned)
}

// GuardianRegisterIncident flags a pending incident.
func (c *Core) GuardianRegisterIncident(user, reason, severity string) {
	c.profiles.RegisterIncident(c.resolveUser(user), reason, severity)
}

// GuardianPending reports whether an incident awaits an apology.
func (c *Core) GuardianPending(user string) bool {
	return c.profiles.PendingIncident(c.resolveUser(user))
}

// ProcessApology resolves a pending incident against the forgiveness budget.
func (c *Core) ProcessApology(user, relationship string) profile.ApologyResult {
	return c.profiles.ProcessApology(c.resolveUser(user), relationship)
}

// ClearPendingIncident is the administrative reset; no credit is consumed.
func (c *Core) ClearPendingIncident(user string) {
	c.profiles.ClearPendingIncident(c.resolveUser(user))
}

// VerifyFatherOverride runs the one-shot owner challenge.
func (c *Core) VerifyFatherOverride(reason string) bool {
	return c.gate.Verify(reason)
}

// AuditEntries exposes the preference audit log for read-side callers.
func (c *Core) AuditEntries(user, category string) []models.AuditEntry {
	return c.audit.Entries(c.profiles.Handle(c.resolveUser(user)), category)
}

// OwnerHandle returns the configured owner handle.
func (c *Core) OwnerHandle() string {
	return c.cfg.OwnerHandle
}
