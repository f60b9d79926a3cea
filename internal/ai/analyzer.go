package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/blociq/doc-intel-service/internal/models"
)

const analysisSystemPrompt = `You are a legal document analyst specializing in UK property documents, particularly lease agreements and tenancy documents.

Your task is to analyze the provided document and extract key information in a structured JSON format.

Focus on extracting:
1. Key dates (lease start/end, payment dates, review periods, notice requirements)
2. All parties involved (lessor, lessee, agents, guarantors, managing companies)
3. Property details (complete address, property type, description)
4. Financial terms (rent amounts, payment frequencies, deposits, service charges, fees)
5. Important clauses, obligations, and restrictions
6. A comprehensive but concise summary in plain English

For dates, be very specific about what each date represents and extract ALL dates mentioned.
For financial terms, include exact amounts, payment frequencies, and what each payment covers.
For parties, distinguish between different roles (lessor vs agent vs guarantor).

Return ONLY a valid JSON object with this structure:
{
  "dates": {
    "startDate": "string or null",
    "endDate": "string or null",
    "paymentDates": ["array of payment dates"],
    "reviewDates": ["array of review dates"],
    "noticePeriods": ["array of notice requirements"],
    "otherImportantDates": [{"date": "string", "description": "string"}]
  },
  "parties": {
    "lessor": "string or null",
    "lessee": "string or null",
    "agent": "string or null",
    "guarantor": "string or null"
  },
  "property": {
    "address": "string or null",
    "type": "string or null",
    "description": "string or null"
  },
  "financial": {
    "rent": "string or null",
    "deposit": "string or null",
    "serviceCharge": "string or null",
    "otherFees": [{"type": "string", "amount": "string"}]
  },
  "keyTerms": ["array of important terms and obligations"],
  "summary": "comprehensive summary paragraph"
}`

// promptTextLimit caps how much document text is embedded in the user prompt.
const promptTextLimit = 4000

var summarySalvageRe = regexp.MustCompile(`(?i)summary['":\s]*['"](.*?)['"]`)

// Analyzer turns extracted document text into a structured analysis using a
// chat model, seeded with whatever the regex pass already found. Analyze
// always produces a usable result: provider errors and unparseable replies
// degrade to progressively simpler output rather than failing.
type Analyzer struct {
	provider Provider
	log      *zap.Logger
}

// NewAnalyzer creates an analyzer backed by the given provider.
func NewAnalyzer(provider Provider, log *zap.Logger) *Analyzer {
	return &Analyzer{provider: provider, log: log}
}

// Analyze runs the AI analysis for one document.
func (a *Analyzer) Analyze(ctx context.Context, text, filename, docType string, seed models.StructuredFields) models.AnalysisResult {
	if a.provider == nil {
		a.log.Info("no AI provider configured, using deterministic analysis",
			zap.String("filename", filename))
		return fallbackResult(text, seed)
	}

	userPrompt := buildUserPrompt(text, filename, docType, seed)

	response, err := a.provider.Complete(ctx, analysisSystemPrompt, userPrompt)
	if err != nil {
		a.log.Warn("AI analysis failed, using deterministic fallback",
			zap.String("filename", filename),
			zap.String("provider", a.provider.Name()),
			zap.Error(err))
		return fallbackResult(text, seed)
	}

	result, err := parseAnalysisResponse(response)
	if err != nil {
		a.log.Warn("AI response was not valid JSON, salvaging summary",
			zap.String("filename", filename),
			zap.Int("responseLength", len(response)),
			zap.Error(err))
		return salvageResult(response)
	}
	return result
}

func buildUserPrompt(text, filename, docType string, seed models.StructuredFields) string {
	address := seedValue(seed.Property != nil, func() string { return seed.Property.Address })
	lessor := seedValue(seed.Parties != nil, func() string { return seed.Parties.Lessor })
	lessee := seedValue(seed.Parties != nil, func() string { return seed.Parties.Lessee })
	rent := seedValue(seed.Financial != nil, func() string { return seed.Financial.Rent })

	excerpt := text
	truncated := ""
	if len(text) > promptTextLimit {
		excerpt = text[:promptTextLimit]
		truncated = "...[truncated]"
	}

	return fmt.Sprintf(`Document: %s
Type: %s
Text Length: %d characters

Already extracted data:
- Address: %s
- Lessor: %s
- Lessee: %s
- Rent: %s

Document Content:
%s%s

Analyze this document and provide a complete JSON response with all the fields specified in the system prompt.`,
		filename, docType, len(text), address, lessor, lessee, rent, excerpt, truncated)
}

func seedValue(ok bool, get func() string) string {
	if ok {
		if v := get(); v != "" {
			return v
		}
	}
	return "Not found"
}

// parseAnalysisResponse strips markdown code fences and decodes the model's
// JSON into an AnalysisResult. Sections with no content come back nil.
func parseAnalysisResponse(response string) (models.AnalysisResult, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var raw struct {
		Dates struct {
			StartDate           string   `json:"startDate"`
			EndDate             string   `json:"endDate"`
			PaymentDates        []string `json:"paymentDates"`
			ReviewDates         []string `json:"reviewDates"`
			NoticePeriods       []string `json:"noticePeriods"`
			OtherImportantDates []struct {
				Date        string `json:"date"`
				Description string `json:"description"`
			} `json:"otherImportantDates"`
		} `json:"dates"`
		Parties struct {
			Lessor    string `json:"lessor"`
			Lessee    string `json:"lessee"`
			Agent     string `json:"agent"`
			Guarantor string `json:"guarantor"`
		} `json:"parties"`
		Property struct {
			Address     string `json:"address"`
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"property"`
		Financial struct {
			Rent          string `json:"rent"`
			Deposit       string `json:"deposit"`
			ServiceCharge string `json:"serviceCharge"`
			OtherFees     []struct {
				Type   string `json:"type"`
				Amount string `json:"amount"`
			} `json:"otherFees"`
		} `json:"financial"`
		KeyTerms []string `json:"keyTerms"`
		Summary  string   `json:"summary"`
	}

	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("JSON parse error: %w", err)
	}

	result := models.AnalysisResult{
		KeyTerms: raw.KeyTerms,
		Summary:  raw.Summary,
	}
	if result.Summary == "" {
		result.Summary = "AI analysis completed successfully."
	}

	dates := models.KeyDates{
		StartDate:     raw.Dates.StartDate,
		EndDate:       raw.Dates.EndDate,
		PaymentDates:  raw.Dates.PaymentDates,
		ReviewDates:   raw.Dates.ReviewDates,
		NoticePeriods: raw.Dates.NoticePeriods,
	}
	for _, d := range raw.Dates.OtherImportantDates {
		dates.OtherImportantDates = append(dates.OtherImportantDates, models.DatedNote{
			Date:        d.Date,
			Description: d.Description,
		})
	}
	if dates.StartDate != "" || dates.EndDate != "" || len(dates.PaymentDates) > 0 ||
		len(dates.ReviewDates) > 0 || len(dates.NoticePeriods) > 0 || len(dates.OtherImportantDates) > 0 {
		result.Dates = &dates
	}

	parties := models.KeyParties{
		Lessor:    raw.Parties.Lessor,
		Lessee:    raw.Parties.Lessee,
		Agent:     raw.Parties.Agent,
		Guarantor: raw.Parties.Guarantor,
	}
	if parties != (models.KeyParties{}) {
		result.Parties = &parties
	}

	property := models.PropertyDetails{
		Address:     raw.Property.Address,
		Type:        raw.Property.Type,
		Description: raw.Property.Description,
	}
	if property != (models.PropertyDetails{}) {
		result.Property = &property
	}

	financial := models.FinancialTerms{
		Rent:          raw.Financial.Rent,
		Deposit:       raw.Financial.Deposit,
		ServiceCharge: raw.Financial.ServiceCharge,
	}
	for _, f := range raw.Financial.OtherFees {
		financial.OtherFees = append(financial.OtherFees, models.Fee{Type: f.Type, Amount: f.Amount})
	}
	if financial.Rent != "" || financial.Deposit != "" || financial.ServiceCharge != "" || len(financial.OtherFees) > 0 {
		result.Financial = &financial
	}

	return result, nil
}

// salvageResult recovers a summary from a reply that was not valid JSON.
func salvageResult(response string) models.AnalysisResult {
	if m := summarySalvageRe.FindStringSubmatch(response); m != nil {
		return models.AnalysisResult{Summary: m[1]}
	}
	summary := response
	if len(summary) > 500 {
		summary = summary[:500] + "..."
	}
	return models.AnalysisResult{Summary: summary}
}

// fallbackResult builds a deterministic analysis from the regex seed alone.
func fallbackResult(text string, seed models.StructuredFields) models.AnalysisResult {
	var keyTerms []string
	lower := strings.ToLower(text)
	if strings.Contains(lower, "repair") {
		keyTerms = append(keyTerms, "Property maintenance and repair obligations")
	}
	if strings.Contains(lower, "alteration") {
		keyTerms = append(keyTerms, "Restrictions on property alterations")
	}
	if strings.Contains(lower, "rent") {
		keyTerms = append(keyTerms, "Rent payment obligations")
	}
	if strings.Contains(lower, "insurance") {
		keyTerms = append(keyTerms, "Insurance requirements")
	}
	if strings.Contains(lower, "notice") {
		keyTerms = append(keyTerms, "Notice period requirements")
	}

	subject := "legal property document"
	if seed.Property != nil && seed.Property.Address != "" {
		subject = "lease agreement for " + seed.Property.Address
	}
	summary := fmt.Sprintf("This appears to be a %s. The document contains %d characters of extracted text and establishes various obligations and terms between the parties involved.",
		subject, len(text))

	return models.AnalysisResult{
		Dates:     seed.Dates,
		Parties:   seed.Parties,
		Property:  seed.Property,
		Financial: seed.Financial,
		KeyTerms:  keyTerms,
		Summary:   summary,
	}
}
