// ABOUTME: Regex-based fact learner operating on single user utterances
// ABOUTME: Enforces the privacy allow-list and the coarse-location redaction policy
package profile

import (
	"regexp"
	"strings"

	"github.com/bjorgsun/companion-core/internal/models"
)

// Pattern order is load-bearing: phone and email both target contacts, and
// the earlier preference/habit patterns must win their captures first.
var (
	preferencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:i|me)\s+(?:like|love)\s+(.+)`),
		regexp.MustCompile(`(?i)\bmy\s+favou?rite\s+(.+)`),
	}
	habitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bi\s+(?:usually|often|tend\s+to|always)\s+(.+)`),
		regexp.MustCompile(`(?i)\bmy\s+habit\s+(?:is|tends\s+to\s+be)\s+(.+)`),
	}
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bi\s+(?:live|am)\s+in\s+(.+)`),
		regexp.MustCompile(`(?i)\bi['’]?m\s+from\s+(.+)`),
		regexp.MustCompile(`(?i)\bi\s+am\s+from\s+(.+)`),
	}
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-]{5,}`)

	appearancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy\s+hair\s+(?:is|color\s+is)\s+(.+)`),
		regexp.MustCompile(`(?i)\bmy\s+eyes\s+(?:are|color\s+is)\s+(.+)`),
		regexp.MustCompile(`(?i)\bi\s+have\s+an?\s+(.+?\s*(?:tattoo|scar|style))\b`),
	}
	pronounPattern = regexp.MustCompile(`(?i)\bmy\s+pronouns?\s+(?:are|is)\s+([^\s.,!?]+(?:/[^\s.,!?]+)*)`)
)

// Extractor learns small facts from free-text utterances, writing through the
// profile store.
type Extractor struct {
	store *Store
}

// NewExtractor creates an Extractor over the given store.
func NewExtractor(store *Store) *Extractor {
	return &Extractor{store: store}
}

// Learn scans one utterance against the ordered pattern set and records every
// allow-listed fact it finds. Returns true when anything new was learned, so
// callers can decide whether to acknowledge.
func (e *Extractor) Learn(text, user string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	learned := false

	for _, re := range preferencePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := cleanCapture(m[1]); v != "" {
				learned = e.store.RecordFact(models.CategoryPreferences, v, user) || learned
			}
		}
	}

	for _, re := range habitPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := cleanCapture(m[1]); v != "" {
				learned = e.store.RecordFact(models.CategoryHabits, v, user) || learned
			}
		}
	}

	for _, re := range locationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if coarse := CoarseLocation(cleanCapture(m[1])); coarse != "" {
				learned = e.store.RecordFact(models.CategoryLocation, coarse, user) || learned
			}
		}
	}

	if m := emailPattern.FindString(text); m != "" {
		learned = e.store.RecordFact(models.CategoryContacts, "email: "+m, user) || learned
	}

	if m := phonePattern.FindString(text); m != "" {
		m = strings.TrimSpace(m)
		if n := countDigits(m); n >= 7 && n <= 14 {
			learned = e.store.RecordFact(models.CategoryContacts, "phone: "+m, user) || learned
		}
	}

	for _, re := range appearancePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := cleanCapture(m[1]); v != "" {
				learned = e.store.RecordFact(models.CategoryAppearance, v, user) || learned
			}
		}
	}

	if m := pronounPattern.FindStringSubmatch(text); m != nil {
		if v := cleanCapture(m[1]); v != "" {
			learned = e.store.RecordFact(models.CategoryNotes, "pronouns: "+v, user) || learned
		}
	}

	return learned
}

// cleanCapture trims, collapses whitespace, strips trailing sentence
// punctuation, and caps the capture length.
func cleanCapture(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".!?,;")
	return CleanFactValue(s)
}

// CoarseLocation reduces a self-reported location to capitalized region/city
// tokens. Street addresses, coordinates, postal codes, and anything carrying
// digits are rejected outright; the stored form never contains a digit.
func CoarseLocation(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	tokens := strings.Fields(strings.ToLower(raw))
	nearIdx := -1
	for i, tok := range tokens {
		if tok == "near" {
			nearIdx = i
			break
		}
	}

	if nearIdx > 0 {
		region := alphaTokens(tokens[:nearIdx], 2)
		city := alphaTokens(tokens[nearIdx+1:], 2)
		if region == "" || city == "" {
			return ""
		}
		return region + " near " + city
	}

	if strings.ContainsAny(raw, "0123456789") {
		return ""
	}
	return alphaTokens(tokens, 3)
}

// alphaTokens capitalizes up to max purely alphabetic tokens.
func alphaTokens(tokens []string, max int) string {
	var out []string
	for _, tok := range tokens {
		if !isAlpha(tok) {
			continue
		}
		out = append(out, capitalize(tok))
		if len(out) == max {
			break
		}
	}
	return strings.Join(out, " ")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
