package textproc

import (
	"html"
	"regexp"
	"strings"
)

// Regexes for HTML stripping. Compiled once; the normalizer runs on every
// inbound email body.
var (
	// Requires a tag-shaped token so bare comparisons like "a < b and
	// b > c" do not trigger the strip path.
	tagLikeRe    = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	closeBlockRe = regexp.MustCompile(`(?i)</(?:p|div|h[1-6]|li)>`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// Named entities decoded explicitly. Anything else goes through the generic
// fallback, which leaves unrecognized entities untouched.
var entityTable = []struct{ name, repl string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&copy;", "©"},
	{"&reg;", "®"},
	{"&trade;", "™"},
}

// Normalize converts a raw email or document body to plain text with
// canonical newlines. Input without tag-like substrings is treated as
// already-plain and returned trimmed. Never fails; empty input yields "".
func Normalize(input string) string {
	if input == "" {
		return ""
	}
	if !tagLikeRe.MatchString(input) {
		return strings.TrimSpace(input)
	}

	text := scriptRe.ReplaceAllString(input, "")
	text = styleRe.ReplaceAllString(text, "")
	text = brRe.ReplaceAllString(text, "\n")
	text = closeBlockRe.ReplaceAllString(text, "\n")
	text = tagLikeRe.ReplaceAllString(text, "")

	for _, e := range entityTable {
		text = strings.ReplaceAll(text, e.name, e.repl)
	}
	text = html.UnescapeString(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
