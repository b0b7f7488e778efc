package history

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tokenRe = regexp.MustCompile(`[^\s"']+|"([^"]*)"|'([^']*)'`)
	wordRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// ParseQuery converts user input into FTS5 syntax.
// Supports: "phrase search", user:term, ai:term.
func ParseQuery(input string) string {
	var parts []string

	input = strings.TrimSpace(input)
	tokens := tokenRe.FindAllString(input, -1)

	for _, token := range tokens {
		if strings.HasPrefix(token, "\"") || strings.HasPrefix(token, "'") {
			// Exact phrases pass through.
			parts = append(parts, token)
			continue
		}

		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "user:"):
			term := token[len("user:"):]
			if term != "" {
				parts = append(parts, fmt.Sprintf("(sender:user AND content:%s)", term))
			} else {
				parts = append(parts, "sender:user")
			}
		case strings.HasPrefix(lower, "ai:"):
			term := token[len("ai:"):]
			if term != "" {
				parts = append(parts, fmt.Sprintf("(sender:ai AND content:%s)", term))
			} else {
				parts = append(parts, "sender:ai")
			}
		default:
			// Prefix-match bare words.
			if len(token) > 3 && wordRe.MatchString(token) {
				parts = append(parts, token+"*")
			} else {
				parts = append(parts, token)
			}
		}
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " AND ")
}
