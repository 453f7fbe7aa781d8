// ABOUTME: One-shot secret-code challenge guarding protected relationship transitions
// ABOUTME: A fresh process grants exactly one prompt attempt and one consumable grant
package owner

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// PromptFunc asks the operator a question and returns their answer.
type PromptFunc func(question string) (string, error)

// Gate guards the assignment of the father status to non-owner keys.
// Session-scoped: the first Verify issues one interactive prompt; a mismatch
// or failed read denies all later requests without re-prompting, and a match
// grants a single consumable approval.
type Gate struct {
	mu       sync.Mutex
	secret   string
	prompt   PromptFunc
	prompted bool
	granted  bool
	consumed bool
}

// NewGate creates a Gate comparing answers against secret. A nil prompt reads
// one line from stdin; when that read fails (no TTY), the gate denies.
func NewGate(secret string, prompt PromptFunc) *Gate {
	if prompt == nil {
		prompt = stdinPrompt
	}
	return &Gate{secret: secret, prompt: prompt}
}

// Verify runs the one-shot challenge and reports whether an unconsumed grant
// is held. Repeat calls never re-prompt.
func (g *Gate) Verify(reason string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.prompted {
		return g.granted && !g.consumed
	}
	g.prompted = true

	if g.secret == "" {
		return false
	}
	question := fmt.Sprintf("Father override requested (%s). What is my last code?", reason)
	answer, err := g.prompt(question)
	if err != nil {
		return false
	}
	g.granted = strings.TrimSpace(answer) == g.secret
	return g.granted
}

// Consume spends the grant for one protected transition. Returns false when
// no unconsumed grant is held.
func (g *Gate) Consume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.granted || g.consumed {
		return false
	}
	g.consumed = true
	return true
}

func stdinPrompt(question string) (string, error) {
	fmt.Println(question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
