package pattern

import (
	"strings"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
)

// Scan matches the set against the user turns of messages. Assistant turns
// are excluded: the scanner measures the human's signal, not the system's.
// Matched keywords are recorded once per category, in set iteration order.
// Identical input always yields an identical result.
func (s *Set) Scan(messages []conversation.Message) ScanResult {
	text := UserText(messages)
	result := ScanResult{}

	for _, cat := range s.categories {
		var matched []string
		seen := make(map[string]bool)

		for _, kw := range cat.keywords {
			if seen[kw.text] {
				continue
			}
			if kw.matches(text) {
				matched = append(matched, kw.text)
				seen[kw.text] = true
			}
		}

		if len(matched) > 0 {
			if result.PatternsFound == nil {
				result.PatternsFound = make(map[string][]string)
			}
			result.PatternsFound[cat.name] = matched
			result.HasPatterns = true
		}
	}

	return result
}

// matches checks one keyword against lowercased text.
func (k compiledKeyword) matches(text string) bool {
	if k.re == nil {
		return strings.Contains(text, k.text)
	}
	return k.re.MatchString(text)
}

// UserText concatenates the content of user-role messages, joined with a
// single space and lowercased. This is the exact text scanned by Scan.
func UserText(messages []conversation.Message) string {
	var parts []string
	for _, m := range messages {
		if m.IsUser() {
			parts = append(parts, m.Content)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
