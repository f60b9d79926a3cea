package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blociq/doc-intel-service/internal/models"
)

type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.response, s.err
}

func (s *stubProvider) CompleteVision(_ context.Context, _, _ string, _ []byte) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	stub := &stubProvider{response: "```json\n" + `{
		"dates": {"startDate": "25 March 2020", "paymentDates": ["25th of each month"]},
		"parties": {"lessor": "Acme Ltd", "lessee": "John Doe"},
		"property": {"address": "Flat 5, 12 Maple Road", "type": "Flat"},
		"financial": {"rent": "£500 per month", "otherFees": [{"type": "Ground rent", "amount": "£250"}]},
		"keyTerms": ["Rent payment obligations"],
		"summary": "A residential lease between Acme Ltd and John Doe."
	}` + "\n```"}

	a := NewAnalyzer(stub, zap.NewNop())
	got := a.Analyze(context.Background(), "lease text", "lease.pdf", "lease_agreement", models.StructuredFields{})

	require.NotNil(t, got.Dates)
	assert.Equal(t, "25 March 2020", got.Dates.StartDate)
	assert.Equal(t, []string{"25th of each month"}, got.Dates.PaymentDates)
	require.NotNil(t, got.Parties)
	assert.Equal(t, "Acme Ltd", got.Parties.Lessor)
	require.NotNil(t, got.Property)
	assert.Equal(t, "Flat", got.Property.Type)
	require.NotNil(t, got.Financial)
	require.Len(t, got.Financial.OtherFees, 1)
	assert.Equal(t, "Ground rent", got.Financial.OtherFees[0].Type)
	assert.Equal(t, "A residential lease between Acme Ltd and John Doe.", got.Summary)
}

func TestAnalyzeEmptySectionsStayNil(t *testing.T) {
	stub := &stubProvider{response: `{"keyTerms": [], "summary": "Short note."}`}

	a := NewAnalyzer(stub, zap.NewNop())
	got := a.Analyze(context.Background(), "text", "note.pdf", "other", models.StructuredFields{})

	assert.Nil(t, got.Dates)
	assert.Nil(t, got.Parties)
	assert.Nil(t, got.Property)
	assert.Nil(t, got.Financial)
	assert.Equal(t, "Short note.", got.Summary)
}

func TestAnalyzeSalvagesSummaryFromBrokenJSON(t *testing.T) {
	stub := &stubProvider{response: `The model rambled. "summary": "A lease covering rent and repairs" and then broke off`}

	a := NewAnalyzer(stub, zap.NewNop())
	got := a.Analyze(context.Background(), "text", "lease.pdf", "lease_agreement", models.StructuredFields{})

	assert.Equal(t, "A lease covering rent and repairs", got.Summary)
	assert.Nil(t, got.Parties)
}

func TestAnalyzeSalvageTruncatesLongReplies(t *testing.T) {
	stub := &stubProvider{response: strings.Repeat("x", 600)}

	a := NewAnalyzer(stub, zap.NewNop())
	got := a.Analyze(context.Background(), "text", "lease.pdf", "lease_agreement", models.StructuredFields{})

	assert.Len(t, got.Summary, 503)
	assert.True(t, strings.HasSuffix(got.Summary, "..."))
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("rate limited")}
	seed := models.StructuredFields{
		Property: &models.PropertyDetails{Address: "12 Maple Road, London"},
		Parties:  &models.KeyParties{Lessor: "Acme Ltd"},
	}

	a := NewAnalyzer(stub, zap.NewNop())
	got := a.Analyze(context.Background(), "The tenant shall pay rent and arrange insurance.", "lease.pdf", "lease_agreement", seed)

	assert.Contains(t, got.Summary, "lease agreement for 12 Maple Road, London")
	assert.Contains(t, got.KeyTerms, "Rent payment obligations")
	assert.Contains(t, got.KeyTerms, "Insurance requirements")
	assert.NotContains(t, got.KeyTerms, "Notice period requirements")
	require.NotNil(t, got.Parties)
	assert.Equal(t, "Acme Ltd", got.Parties.Lessor)
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	a := NewAnalyzer(nil, zap.NewNop())
	got := a.Analyze(context.Background(), "A short document.", "doc.pdf", "other", models.StructuredFields{})

	assert.Contains(t, got.Summary, "legal property document")
}

func TestUserPromptEmbedsSeedAndTruncates(t *testing.T) {
	stub := &stubProvider{response: `{"summary": "ok"}`}
	seed := models.StructuredFields{
		Financial: &models.FinancialTerms{Rent: "£500 per month"},
	}
	long := strings.Repeat("a", promptTextLimit+100)

	a := NewAnalyzer(stub, zap.NewNop())
	a.Analyze(context.Background(), long, "lease.pdf", "lease_agreement", seed)

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "- Rent: £500 per month")
	assert.Contains(t, prompt, "- Lessor: Not found")
	assert.Contains(t, prompt, "...[truncated]")
	assert.NotContains(t, prompt, strings.Repeat("a", promptTextLimit+1))
}
