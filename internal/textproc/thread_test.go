package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestBlockNoMarkers(t *testing.T) {
	text := "Hi team,\n\nThe lift is out of order again.\n\nThanks,\nSam"
	assert.Equal(t, text, LatestBlock(text))
}

func TestLatestBlockCutsAtFirstMarker(t *testing.T) {
	cases := []struct {
		name   string
		marker string
	}{
		{"from header", "From: agent@example.com"},
		{"sent header", "Sent: Monday 12 May 2025 09:14"},
		{"to header", "To: residents@example.com"},
		{"subject header", "Subject: RE: Service charge"},
		{"on wrote", "On Mon, 12 May 2025 at 09:14, Jane Doe wrote:"},
		{"french wrote", "Le 12 mai 2025 à 09:14, Jane Doe a écrit :"},
		{"german wrote", "Am 12.05.2025 um 09:14 schrieb Jane Doe:"},
		{"original message", "-----Original Message-----"},
		{"forwarded message", "-----Forwarded Message-----"},
		{"begin forwarded", "Begin forwarded message:"},
		{"dash rule", "-----"},
		{"underscore rule", "________"},
		{"equals rule", "====="},
		{"quote prefix", "> previous reply text"},
		{"bare wrote", "wrote:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := "New message content here.\n\n" + tc.marker + "\nOld quoted text\nmore old text"
			got := LatestBlock(text)
			assert.Equal(t, "New message content here.", got)
			assert.NotContains(t, got, "Old quoted text")
		})
	}
}

func TestLatestBlockMarkerFirst(t *testing.T) {
	assert.Equal(t, "", LatestBlock("-----Original Message-----\nFrom: x@y.com\nold content"))
	assert.Equal(t, "", LatestBlock("\n\n> quoted straight away"))
}

func TestLatestBlockOnlyFirstMarkerCounts(t *testing.T) {
	text := "Reply text.\nMore reply.\n\nOn Tuesday, Bob wrote:\n> quoted\n-----Original Message-----\nolder still"
	assert.Equal(t, "Reply text.\nMore reply.", LatestBlock(text))
}

func TestLatestBlockKeepsShortDashLines(t *testing.T) {
	// Runs shorter than 5 are not separators
	text := "a --- b\n--\nsig"
	assert.Equal(t, text, LatestBlock(text))
}
