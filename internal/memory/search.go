// ABOUTME: Term-AND retrieval over the conversation log for the prompt builder
// ABOUTME: Prioritizes assistant/system turns and suppresses query echoes
package memory

import (
	"regexp"
	"strings"

	"github.com/bjorgsun/companion-core/internal/models"
)

// DefaultMaxHits is the search result cap when callers pass a non-positive value.
const DefaultMaxHits = 5

var nonWord = regexp.MustCompile(`\W+`)

// normalizeQuery lowercases s and collapses non-word runs to single spaces.
func normalizeQuery(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

// Search returns up to maxHits turns whose normalized content contains every
// term of query, in chronological order. Assistant and system turns win ties
// over user turns since they are more likely prior summaries. User turns
// whose normalized content equals the whole normalized query are never
// returned; that keeps the utterance that triggered the search, and identical
// earlier askings, from echoing back as hits.
func (l *Log) Search(query string, maxHits int) []models.Turn {
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	qn := normalizeQuery(query)
	terms := strings.Fields(qn)
	if len(terms) == 0 {
		return nil
	}

	turns := l.Turns()

	var prioritized, ordinary []models.Turn
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		norm := normalizeQuery(turn.Content)
		if turn.Role == models.RoleUser && norm == qn {
			continue
		}
		if !containsAllTerms(norm, terms) {
			continue
		}
		if turn.Role == models.RoleAssistant || turn.Role == models.RoleSystem {
			prioritized = append(prioritized, turn)
		} else {
			ordinary = append(ordinary, turn)
		}
		if len(prioritized)+len(ordinary) >= maxHits {
			break
		}
	}

	hits := append(prioritized, ordinary...)
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	for i, j := 0, len(hits)-1; i < j; i, j = i+1, j-1 {
		hits[i], hits[j] = hits[j], hits[i]
	}
	return hits
}

func containsAllTerms(norm string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(norm, term) {
			return false
		}
	}
	return true
}
