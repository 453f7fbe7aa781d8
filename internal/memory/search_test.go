// ABOUTME: Tests for term-AND memory search
// ABOUTME: Covers echo suppression, role priority, ordering, and hit caps

package memory

import (
	"fmt"
	"testing"

	"github.com/bjorgsun/companion-core/internal/models"
)

func TestSearch_TermAND(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleUser, "I bought a red bicycle today")
	l.Append(models.RoleUser, "the bicycle needs a new bell")
	l.Append(models.RoleUser, "I painted the fence red")

	hits := l.Search("red bicycle", 10)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Content != "I bought a red bicycle today" {
		t.Errorf("hit = %q", hits[0].Content)
	}
}

func TestSearch_CaseAndPunctuationInsensitive(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleAssistant, "Your sister's birthday is in June.")

	hits := l.Search("SISTER birthday", 10)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
}

func TestSearch_SuppressesQueryEchoes(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleUser, "what is my favorite color")
	l.Append(models.RoleAssistant, "you asked what is my favorite color: it is teal")
	l.Append(models.RoleUser, "What is my favorite color?")

	// A user turn that IS the query must never come back as a memory,
	// no matter how long ago it was logged.
	hits := l.Search("what is my favorite color", 10)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1: %+v", len(hits), hits)
	}
	if hits[0].Role != models.RoleAssistant {
		t.Errorf("hit role = %q, want assistant", hits[0].Role)
	}
}

func TestSearch_UserTurnsContainingQueryStillMatch(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleUser, "my favorite color is teal, always has been")

	hits := l.Search("favorite color", 10)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
}

func TestSearch_PrefersAssistantAndSystemTurns(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleUser, "the garden gnome fell over")
	l.Append(models.RoleAssistant, "noted, the garden gnome fell again")
	l.Append(models.RoleUser, "the garden gnome is cursed")

	hits := l.Search("garden gnome", 2)
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	// With the cap binding, the assistant turn must survive over a user turn.
	foundAssistant := false
	for _, hit := range hits {
		if hit.Role == models.RoleAssistant {
			foundAssistant = true
		}
	}
	if !foundAssistant {
		t.Errorf("assistant turn dropped under cap: %+v", hits)
	}
}

func TestSearch_ChronologicalOrder(t *testing.T) {
	l, _ := newTestLog(t, 100)
	for i := 0; i < 4; i++ {
		l.Append(models.RoleAssistant, fmt.Sprintf("note %d about the greenhouse", i))
	}

	hits := l.Search("greenhouse", 10)
	if len(hits) != 4 {
		t.Fatalf("hits = %d, want 4", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Content > hits[i].Content {
			t.Errorf("hits out of chronological order: %q before %q", hits[i-1].Content, hits[i].Content)
		}
	}
}

func TestSearch_MaxHits(t *testing.T) {
	l, _ := newTestLog(t, 100)
	for i := 0; i < 10; i++ {
		l.Append(models.RoleAssistant, fmt.Sprintf("lighthouse log entry %d", i))
	}

	if hits := l.Search("lighthouse", 3); len(hits) != 3 {
		t.Errorf("hits = %d, want 3", len(hits))
	}
	// Non-positive caps fall back to the default.
	if hits := l.Search("lighthouse", 0); len(hits) != DefaultMaxHits {
		t.Errorf("hits = %d, want %d", len(hits), DefaultMaxHits)
	}
	if hits := l.Search("lighthouse", -1); len(hits) != DefaultMaxHits {
		t.Errorf("hits = %d, want %d", len(hits), DefaultMaxHits)
	}
}

func TestSearch_NewestMatchesWin(t *testing.T) {
	l, _ := newTestLog(t, 100)
	for i := 0; i < 10; i++ {
		l.Append(models.RoleAssistant, fmt.Sprintf("harbor report %d", i))
	}

	hits := l.Search("harbor", 3)
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	if hits[0].Content != "harbor report 7" || hits[2].Content != "harbor report 9" {
		t.Errorf("hits = %q .. %q, want reports 7 .. 9", hits[0].Content, hits[2].Content)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	l, _ := newTestLog(t, 100)
	l.Append(models.RoleUser, "anything at all")

	if hits := l.Search("", 10); hits != nil {
		t.Errorf("Search(\"\") = %v, want nil", hits)
	}
	if hits := l.Search("  !?  ", 10); hits != nil {
		t.Errorf("Search of punctuation-only query = %v, want nil", hits)
	}
}
