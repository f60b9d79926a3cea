package textproc

import (
	"regexp"
	"strings"
)

// quoteMarkers match the first line of quoted or forwarded history embedded
// in an email thread. Order matters only for readability; the scan stops at
// the first line matching any of them.
var quoteMarkers = []*regexp.Regexp{
	// Reply header blocks pasted by mail clients
	regexp.MustCompile(`^(?:From|Sent|To|Subject):`),
	// "On <date>, <name> wrote:" and locale variants
	regexp.MustCompile(`(?i)^on\s.+\bwrote:`),
	regexp.MustCompile(`(?i)^le\s.+\ba écrit\s*:`),
	regexp.MustCompile(`(?i)^am\s.+\bschrieb\b.*:`),
	// Outlook-style separators
	regexp.MustCompile(`(?i)^-+\s*original message\s*-+`),
	regexp.MustCompile(`(?i)^-+\s*forwarded message\s*-+`),
	regexp.MustCompile(`(?i)^begin forwarded message`),
	// Horizontal rules used as thread separators
	regexp.MustCompile(`^[-_=]{5,}\s*$`),
	// Quoted lines
	regexp.MustCompile(`^>`),
	// A bare "wrote:" left over from a wrapped attribution line
	regexp.MustCompile(`(?i)^wrote:\s*$`),
}

// LatestBlock isolates the newest message in a normalized email body,
// cutting at the first quoted-reply marker found top to bottom. Returns the
// whole text when no marker is present, and "" when the first non-blank
// line is itself a marker.
func LatestBlock(text string) string {
	lines := strings.Split(text, "\n")

	cut := len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isQuoteMarker(trimmed) {
			cut = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[:cut], "\n"))
}

func isQuoteMarker(line string) bool {
	for _, re := range quoteMarkers {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
