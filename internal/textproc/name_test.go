package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSenderNameSignOff(t *testing.T) {
	body := "Hi,\n\nThe boiler in flat 5 has stopped working.\n\nKind regards,\nJennifer Smith"
	assert.Equal(t, "Jennifer Smith", ExtractSenderName(body, ""))
}

func TestExtractSenderNameSignOffSameLine(t *testing.T) {
	body := "Please can someone call me back.\n\nThanks, Alex"
	assert.Equal(t, "Alex", ExtractSenderName(body, ""))
}

func TestExtractSenderNameHTMLBody(t *testing.T) {
	body := `<div><p>The communal door lock is broken.</p><p>Kind regards,<br>Maria Rodriguez</p></div>`
	assert.Equal(t, "Maria Rodriguez", ExtractSenderName(body, ""))
}

func TestExtractSenderNameBodyBeatsFallback(t *testing.T) {
	body := "Can you confirm the service charge balance?\n\nThanks,\nAlex"
	assert.Equal(t, "Alex", ExtractSenderName(body, "alex@email.com"))
}

func TestExtractSenderNameSkipsSignatureBoilerplate(t *testing.T) {
	body := strings.Join([]string{
		"There is a leak in the ceiling.",
		"",
		"Best regards,",
		"Tom O'Brien",
		"Mobile: 07700 900123",
		"This email is confidential",
	}, "\n")
	assert.Equal(t, "Tom O'Brien", ExtractSenderName(body, ""))
}

func TestExtractSenderNameVariousSignOffs(t *testing.T) {
	for _, signOff := range []string{
		"Kind regards", "Regards", "Best regards", "Best wishes",
		"Warm regards", "Yours sincerely", "Sincerely", "Yours faithfully",
		"Thanks", "Thank you", "Cheers", "All the best",
	} {
		body := "Some issue to report.\n\n" + signOff + ",\nPriya Patel"
		assert.Equal(t, "Priya Patel", ExtractSenderName(body, ""), "sign-off %q", signOff)
	}
}

func TestExtractSenderNameFallbackUsed(t *testing.T) {
	body := "short note with no sign-off and no capitalised closing line whatsoever."
	assert.Equal(t, "Dana Levin", ExtractSenderName(body, "Dana Levin"))
}

func TestExtractSenderNameFallbackRejected(t *testing.T) {
	body := "no name in this body text at all, honestly."
	assert.Equal(t, SenderFallback, ExtractSenderName(body, "dana@example.com"))
	assert.Equal(t, SenderFallback, ExtractSenderName(body, "user123"))
	assert.Equal(t, SenderFallback, ExtractSenderName(body, "contact42"))
	assert.Equal(t, SenderFallback, ExtractSenderName(body, " "))
	assert.Equal(t, SenderFallback, ExtractSenderName(body, "x"))
}

func TestExtractSenderNameEmptyBody(t *testing.T) {
	assert.Equal(t, SenderFallback, ExtractSenderName("", ""))
}

func TestExtractSenderNameNeverContainsAt(t *testing.T) {
	bodies := []string{
		"",
		"Thanks,\njane@example.com",
		"Regards,\nBob",
		"random text",
		"<p>Cheers,<br>sam@x.co.uk</p>",
	}
	for _, body := range bodies {
		got := ExtractSenderName(body, "someone@example.com")
		assert.NotContains(t, got, "@", "body %q", body)
	}
}

func TestExtractSenderNameIgnoresQuotedHistory(t *testing.T) {
	body := "Quick question about parking.\n\nThanks,\nNina\n\nOn Mon, 12 May, Agent Smith wrote:\n> previous reply\n> Kind regards,\n> Zelda Quoted"
	assert.Equal(t, "Nina", ExtractSenderName(body, ""))
}

func TestNameFromLineRules(t *testing.T) {
	assert.Equal(t, "", nameFromLine("visit http://example.com"))
	assert.Equal(t, "", nameFromLine("call 07700 900123"))
	assert.Equal(t, "", nameFromLine("Sent from my iPhone"))
	assert.Equal(t, "", nameFromLine("Get Outlook for iOS"))
	assert.Equal(t, "", nameFromLine(strings.Repeat("Long ", 30)))
	assert.Equal(t, "", nameFromLine("one two three four all lowercase"))
	assert.Equal(t, "Anne-Marie Jones", nameFromLine("Anne-Marie Jones"))
}
