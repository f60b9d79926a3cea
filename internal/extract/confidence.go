package extract

import (
	"strings"

	"github.com/blociq/doc-intel-service/internal/models"
)

// Score bounds and base. One unified formula is used for every analysis
// path; callers signal reliability to reviewers through the score rather
// than a hard pass/fail.
const (
	scoreBase = 0.3
	scoreMin  = 0.1
	scoreMax  = 0.95
)

// Phrases in a summary that indicate the model could not commit to an answer
var uncertaintyPhrases = []string{
	"not specified",
	"unclear",
	"not mentioned",
	"cannot determine",
	"unable to determine",
}

// Score combines signals from the regex pass and the AI overlay into a
// bounded confidence value.
//
// Breakdown:
//
//	Base                                  0.30
//	Structured address                   +0.15
//	Structured lessor or lessee          +0.15
//	Structured rent                      +0.10
//	Structured start date                +0.10
//	AI summary longer than 100 chars     +0.10
//	AI key terms present                 +0.05
//	AI parties present                   +0.05
//	AI financial terms present           +0.05
//	Raw text > 1000 chars                +0.05
//	Raw text > 5000 chars                +0.05
//	Uncertainty phrase in summary        -0.15
//
// The result is clamped to [0.1, 0.95].
func Score(structured models.StructuredFields, ai models.AnalysisResult, rawText string) float64 {
	score := scoreBase

	if structured.Property != nil && structured.Property.Address != "" {
		score += 0.15
	}
	if structured.Parties != nil && (structured.Parties.Lessor != "" || structured.Parties.Lessee != "") {
		score += 0.15
	}
	if structured.Financial != nil && structured.Financial.Rent != "" {
		score += 0.10
	}
	if structured.Dates != nil && structured.Dates.StartDate != "" {
		score += 0.10
	}

	if len(ai.Summary) > 100 {
		score += 0.10
	}
	if len(ai.KeyTerms) > 0 {
		score += 0.05
	}
	if hasParties(ai.Parties) {
		score += 0.05
	}
	if hasFinancial(ai.Financial) {
		score += 0.05
	}

	if len(rawText) > 1000 {
		score += 0.05
	}
	if len(rawText) > 5000 {
		score += 0.05
	}

	if containsUncertainty(ai.Summary) {
		score -= 0.15
	}

	if score < scoreMin {
		score = scoreMin
	}
	if score > scoreMax {
		score = scoreMax
	}
	return score
}

func hasParties(p *models.KeyParties) bool {
	return p != nil && (p.Lessor != "" || p.Lessee != "" || p.Agent != "" || p.Guarantor != "")
}

func hasFinancial(f *models.FinancialTerms) bool {
	return f != nil && (f.Rent != "" || f.Deposit != "" || f.ServiceCharge != "" || len(f.OtherFees) > 0)
}

func containsUncertainty(summary string) bool {
	lower := strings.ToLower(summary)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
