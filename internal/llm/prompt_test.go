// ABOUTME: Tests for the prompt builder
// ABOUTME: Verifies message composition order and the recent-window cap

package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bjorgsun/companion-core/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

type fakeSource struct {
	hits    []models.Turn
	summary string
}

func (f *fakeSource) SearchMemories(query string, maxHits int) []models.Turn {
	return f.hits
}

func (f *fakeSource) SummarizeUser(user string, perCategory int) string {
	return f.summary
}

func TestBuild(t *testing.T) {
	source := &fakeSource{
		hits: []models.Turn{
			{Role: models.RoleAssistant, Content: "your sister's birthday is in June", Timestamp: "2026-01-01T00:00:00Z"},
		},
		summary: "preferences: tea",
	}
	b := NewPromptBuilder(source)

	recent := []models.Turn{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi there"},
	}
	messages := b.Build("Kira", "when is my sister's birthday?", recent)

	if len(messages) != 6 {
		t.Fatalf("messages = %d, want 6", len(messages))
	}

	// Persona first.
	if messages[0].Role != openai.ChatMessageRoleSystem || !strings.Contains(messages[0].Content, "Bjorgsun-26") {
		t.Errorf("messages[0] = %+v, want persona system message", messages[0])
	}
	// Profile summary second.
	if !strings.Contains(messages[1].Content, "Kira") || !strings.Contains(messages[1].Content, "preferences: tea") {
		t.Errorf("messages[1] = %q, want profile summary", messages[1].Content)
	}
	// Memory block third.
	if !strings.Contains(messages[2].Content, "Relevant memories:") ||
		!strings.Contains(messages[2].Content, "sister's birthday") {
		t.Errorf("messages[2] = %q, want memory block", messages[2].Content)
	}
	// Recent window next, roles mapped.
	if messages[3].Role != openai.ChatMessageRoleUser || messages[3].Content != "hello" {
		t.Errorf("messages[3] = %+v", messages[3])
	}
	if messages[4].Role != openai.ChatMessageRoleAssistant || messages[4].Content != "hi there" {
		t.Errorf("messages[4] = %+v", messages[4])
	}
	// The utterance closes the prompt.
	last := messages[len(messages)-1]
	if last.Role != openai.ChatMessageRoleUser || last.Content != "when is my sister's birthday?" {
		t.Errorf("last message = %+v", last)
	}
}

func TestBuild_NoMemoriesNoSummary(t *testing.T) {
	b := NewPromptBuilder(&fakeSource{})

	messages := b.Build("Kira", "hello", nil)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want persona + utterance only", len(messages))
	}
}

func TestBuild_RecentWindowCap(t *testing.T) {
	b := NewPromptBuilder(&fakeSource{})

	var recent []models.Turn
	for i := 0; i < 30; i++ {
		recent = append(recent, models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}
	messages := b.Build("Kira", "hello", recent)

	// persona + 12 recent + utterance
	if len(messages) != 14 {
		t.Fatalf("messages = %d, want 14", len(messages))
	}
	if messages[1].Content != "turn 18" {
		t.Errorf("first recent = %q, want turn 18", messages[1].Content)
	}
}

func TestSetPersona(t *testing.T) {
	b := NewPromptBuilder(&fakeSource{})

	b.SetPersona("You are a terse lighthouse keeper.")
	messages := b.Build("Kira", "hello", nil)
	if messages[0].Content != "You are a terse lighthouse keeper." {
		t.Errorf("persona = %q", messages[0].Content)
	}

	// Empty override is ignored.
	b.SetPersona("")
	messages = b.Build("Kira", "hello", nil)
	if messages[0].Content != "You are a terse lighthouse keeper." {
		t.Errorf("persona = %q, want unchanged", messages[0].Content)
	}
}

func TestChatRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{models.RoleAssistant, openai.ChatMessageRoleAssistant},
		{models.RoleSystem, openai.ChatMessageRoleSystem},
		{models.RoleUser, openai.ChatMessageRoleUser},
		{"unknown", openai.ChatMessageRoleUser},
	}
	for _, tt := range tests {
		if got := chatRole(tt.in); got != tt.want {
			t.Errorf("chatRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
