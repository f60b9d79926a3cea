package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// SenderFallback is returned when no name can be recovered from the email
// body or the caller-supplied display name.
const SenderFallback = "Resident"

// How far up from the end of the latest message we look for a sign-off or a
// bare name line.
const signOffWindow = 8

// signOffRe matches a valediction line, optionally followed by a name on the
// same line. Longer phrases come first so the alternation picks them whole.
var signOffRe = regexp.MustCompile(`(?i)^\s*(kind regards|best regards|warm regards|best wishes|all the best|yours sincerely|yours faithfully|thank you|sincerely|faithfully|regards|thanks|cheers|best)\s*[,.!]*\s*(.*)$`)

// placeholderRe flags auto-generated display names like "user123"
var placeholderRe = regexp.MustCompile(`(?i)^(?:user|contact|member|account|client)\d+$`)

var nonNameCharsRe = regexp.MustCompile(`[^\w\s'-]`)

// Lines starting with these are signature boilerplate, never a name
var boilerplatePrefixes = []string{
	"mobile:", "phone:", "tel:", "email:", "www",
	"this email", "please consider", "confidential", "disclaimer",
	"sent from", "get outlook", "download",
}

// Tokens that look like capitalized names but never are
var nameStopWords = map[string]bool{
	"dear": true, "hi": true, "hello": true, "hey": true, "good": true,
	"morning": true, "afternoon": true, "evening": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"team": true, "support": true, "admin": true, "office": true,
	"manager": true, "management": true, "property": true, "building": true,
	"limited": true, "ltd": true, "company": true, "group": true,
	"services": true, "department": true, "director": true,
	"regards": true, "thanks": true, "best": true, "sincerely": true,
	"kind": true, "warm": true, "yours": true, "many": true, "all": true,
	"cheers": true, "faithfully": true, "wishes": true,
}

// ExtractSenderName recovers the human sender's display name from a raw
// email body. Priority: sign-off match in the latest message, then any
// name-looking line near the end, then a validated caller-supplied fallback,
// then the "Resident" sentinel. The result never contains '@'.
func ExtractSenderName(rawBody, fallbackName string) string {
	latest := LatestBlock(Normalize(rawBody))

	if latest != "" {
		lines := nonBlankLines(latest)

		if name := nameFromSignOff(lines); name != "" {
			return name
		}
		if name := nameFromLastLines(lines); name != "" {
			return name
		}
	}

	if name := cleanFallbackName(fallbackName); name != "" {
		return name
	}

	return SenderFallback
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// nameFromSignOff scans the last lines bottom-up for a valediction and
// takes the name from the same line or from up to 3 lines below it.
func nameFromSignOff(lines []string) string {
	start := len(lines) - signOffWindow
	if start < 0 {
		start = 0
	}

	for i := len(lines) - 1; i >= start; i-- {
		m := signOffRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		if rest := strings.TrimSpace(m[2]); rest != "" {
			if name := nameFromLine(rest); name != "" {
				return name
			}
		}
		for j := i + 1; j < len(lines) && j <= i+3; j++ {
			if name := nameFromLine(lines[j]); name != "" {
				return name
			}
		}
	}
	return ""
}

func nameFromLastLines(lines []string) string {
	start := len(lines) - signOffWindow
	if start < 0 {
		start = 0
	}

	for i := len(lines) - 1; i >= start; i-- {
		if name := nameFromLine(lines[i]); name != "" {
			return name
		}
	}
	return ""
}

// nameFromLine tries to pull 1-3 capitalized name tokens out of one line.
// Returns "" when the line is clearly not a name.
func nameFromLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 100 {
		return ""
	}

	lower := strings.ToLower(line)
	if strings.ContainsAny(line, "@0123456789") ||
		strings.Contains(lower, "http") ||
		strings.Contains(lower, "www") ||
		strings.Contains(lower, ".com") ||
		strings.Contains(lower, ".org") ||
		strings.Contains(lower, ".uk") {
		return ""
	}
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	cleaned := nonNameCharsRe.ReplaceAllString(line, "")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		runes := []rune(word)
		if len(runes) < 2 || len(runes) > 20 {
			continue
		}
		if !unicode.IsUpper(runes[0]) {
			continue
		}
		if nameStopWords[strings.ToLower(word)] {
			continue
		}
		tokens = append(tokens, word)
	}

	if len(tokens) >= 1 && len(tokens) <= 3 {
		return strings.Join(tokens, " ")
	}
	return ""
}

// cleanFallbackName validates a caller-supplied display name. Email
// addresses and generated placeholders are rejected.
func cleanFallbackName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if len(name) < 2 {
		return ""
	}
	if strings.Contains(name, "@") {
		return ""
	}
	if placeholderRe.MatchString(name) {
		return ""
	}
	return name
}
