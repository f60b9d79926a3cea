package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlainTextPassthrough(t *testing.T) {
	inputs := []string{
		"Hello there",
		"  padded plain text  ",
		"multi\nline\nplain text",
		"a < b and b > c is fine without tags",
	}
	for _, in := range inputs {
		assert.Equal(t, strings.TrimSpace(in), Normalize(in))
	}
}

func TestNormalizeKeepsComparisonsWhenStrippingTags(t *testing.T) {
	got := Normalize("<p>rent review applies when a < b and b > c</p>")
	assert.Equal(t, "rent review applies when a < b and b > c", got)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalizeStripsTags(t *testing.T) {
	out := Normalize(`<div><p>Dear John,</p><p>The boiler is broken.</p></div>`)
	assert.Equal(t, "Dear John,\nThe boiler is broken.", out)
	assert.NotContains(t, out, "<")
}

func TestNormalizeBrToNewline(t *testing.T) {
	for _, br := range []string{"<br>", "<br/>", "<br />", "<BR>"} {
		out := Normalize("line one" + br + "line two")
		assert.Equal(t, "line one\nline two", out, "br form %q", br)
	}
}

func TestNormalizeDropsScriptAndStyle(t *testing.T) {
	in := `<style>.x{color:red}</style><p>visible</p><script>alert("hi")</script>`
	out := Normalize(in)
	assert.Equal(t, "visible", out)
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color")
}

func TestNormalizeEntities(t *testing.T) {
	cases := map[string]string{
		"<p>Tom &amp; Jerry</p>":       "Tom & Jerry",
		"<p>&lt;tag&gt;</p>":           "<tag>",
		"<p>it&#39;s &quot;ok&quot;</p>": `it's "ok"`,
		"<p>a&nbsp;b</p>":              "a b",
		"<p>&copy; 2025</p>":           "© 2025",
		"<p>&#163;500</p>":             "£500",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in))
	}
}

func TestNormalizeUnknownEntityPassesThrough(t *testing.T) {
	assert.Equal(t, "&bogus; stays", Normalize("<p>&bogus; stays</p>"))
}

func TestNormalizeCollapsesBlankRuns(t *testing.T) {
	out := Normalize("<p>a</p><p></p><p></p><p></p><p>b</p>")
	assert.NotContains(t, out, "\n\n\n")

	out = Normalize("<div>x</div>\r\n\r\n\r\n\r\n<div>y</div>")
	assert.Equal(t, "x\n\ny", out)
}

func TestNormalizeCarriageReturns(t *testing.T) {
	assert.Equal(t, "a\nb", Normalize("<p>a<br>b</p>"))
	assert.Equal(t, "a\nb", Normalize("a\r\nb<i></i>"))
}
