// ABOUTME: Prompt builder composing persona, profile summary, and memory search hits
// ABOUTME: The only consumer of the memory-search operator besides tests
package llm

import (
	"fmt"
	"strings"

	"github.com/bjorgsun/companion-core/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const defaultPersona = "You are Bjorgsun-26, a personal companion. You remember past conversations and the people you talk to. Speak plainly and warmly."

// MemorySource is the slice of the core the prompt builder needs.
type MemorySource interface {
	SearchMemories(query string, maxHits int) []models.Turn
	SummarizeUser(user string, perCategory int) string
}

// PromptBuilder assembles chat messages for the companion's reply.
type PromptBuilder struct {
	source      MemorySource
	persona     string
	maxHits     int
	recentTurns int
}

// NewPromptBuilder creates a builder over the given memory source.
func NewPromptBuilder(source MemorySource) *PromptBuilder {
	return &PromptBuilder{
		source:      source,
		persona:     defaultPersona,
		maxHits:     5,
		recentTurns: 12,
	}
}

// SetPersona overrides the system persona text.
func (b *PromptBuilder) SetPersona(persona string) {
	if persona != "" {
		b.persona = persona
	}
}

// Build composes the message list for a user utterance: persona, profile
// summary, relevant memories, the recent window, then the utterance itself.
func (b *PromptBuilder) Build(user, text string, recent []models.Turn) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: b.persona},
	}

	if summary := b.source.SummarizeUser(user, 3); summary != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("What you know about %s — %s", user, summary),
		})
	}

	if hits := b.source.SearchMemories(text, b.maxHits); len(hits) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant memories:\n")
		for _, hit := range hits {
			fmt.Fprintf(&sb, "[%s] %s: %s\n", hit.Timestamp, hit.Role, hit.Content)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sb.String(),
		})
	}

	if len(recent) > b.recentTurns {
		recent = recent[len(recent)-b.recentTurns:]
	}
	for _, turn := range recent {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
	return messages
}

func chatRole(role string) string {
	switch role {
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
