package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blociq/doc-intel-service/internal/models"
)

func TestDocumentName(t *testing.T) {
	t.Run("title found in text", func(t *testing.T) {
		text := "LEASE AGREEMENT relating to Flat 5\n\nThis lease is made..."
		assert.Equal(t, "LEASE AGREEMENT", DocumentName("scan-001.pdf", text))
	})

	t.Run("filename fallback is cleaned", func(t *testing.T) {
		assert.Equal(t, "Maple Road Head Lease", DocumentName("maple-road_head-lease.pdf", "no title here"))
	})

	t.Run("docx extension stripped", func(t *testing.T) {
		assert.Equal(t, "Deed Of Variation", DocumentName("deed_of_variation.DOCX", ""))
	})
}

func TestBuildSummaryAIOverridesRegex(t *testing.T) {
	structured := models.StructuredFields{
		Parties:   &models.KeyParties{Lessor: "Acme Ltd (truncated", Lessee: "John Doe"},
		Financial: &models.FinancialTerms{Rent: "£500 per month"},
	}
	ai := models.AnalysisResult{
		Parties:   &models.KeyParties{Lessor: "Acme Limited"},
		Financial: &models.FinancialTerms{Deposit: "£1,500"},
		KeyTerms:  []string{"Rent payment obligations"},
		Summary:   "A residential lease.",
	}

	got := BuildSummary("lease.pdf", "lease_agreement", "some text", structured, ai)

	assert.Equal(t, "Acme Limited", got.KeyParties.Lessor)
	assert.Equal(t, "John Doe", got.KeyParties.Lessee)
	assert.Equal(t, "£500 per month", got.FinancialTerms.Rent)
	assert.Equal(t, "£1,500", got.FinancialTerms.Deposit)
	assert.Equal(t, "A residential lease.", got.Summary)
	assert.Equal(t, len("some text"), got.ExtractedLength)
	assert.False(t, got.ProcessedAt.IsZero())
}

func TestBuildSummaryEmptyAIKeepsRegexValues(t *testing.T) {
	structured := models.StructuredFields{
		Dates:    &models.KeyDates{StartDate: "25 March 2020", Term: "99 years"},
		Property: &models.PropertyDetails{Address: "12 Maple Road"},
	}

	got := BuildSummary("lease.pdf", "lease_agreement", "text", structured, models.AnalysisResult{})

	assert.Equal(t, "25 March 2020", got.KeyDates.StartDate)
	assert.Equal(t, "99 years", got.KeyDates.Term)
	assert.Equal(t, "12 Maple Road", got.PropertyDetails.Address)
	assert.NotNil(t, got.KeyTerms)
	assert.Empty(t, got.KeyTerms)
}

func TestBuildSummaryConfidenceMatchesScore(t *testing.T) {
	structured := models.StructuredFields{
		Parties: &models.KeyParties{Lessor: "Acme Ltd"},
	}
	ai := models.AnalysisResult{Summary: "Short."}

	got := BuildSummary("lease.pdf", "lease_agreement", "text", structured, ai)
	assert.InDelta(t, Score(structured, ai, "text"), got.Confidence, 1e-9)
}
