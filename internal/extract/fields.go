package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blociq/doc-intel-service/internal/models"
)

// Pattern lists are ordered fallback chains: first match wins, remaining
// patterns are skipped for that field. Kept as data so each list can be
// exercised independently in tests.

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Property|Address|Premises|Flat|Unit)[:\s]*([^\n]+(?:Road|Street|Avenue|Lane|Close|Way|Place|Square|Gardens|Park|Drive|Court|N\d+|SW\d+|SE\d+|NW\d+|E\d+|W\d+|EC\d+|WC\d+)[^\n]*)`),
	regexp.MustCompile(`(?i)([A-Za-z0-9\s,]+(?:Road|Street|Avenue|Lane|Close|Way|Place|Square|Gardens|Park|Drive|Court)[^,\n]*,?[^,\n]*(?:N\d+|SW\d+|SE\d+|NW\d+|E\d+|W\d+|EC\d+|WC\d+)[^,\n]*)`),
}

var lessorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*(?:Lessor|Landlord)[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)(?:Lessor|Landlord):\s*([^,\n]+)`),
	regexp.MustCompile(`(?i)(?:between|from)\s+([^,\n]+?)\s+(?:as|being)\s+(?:lessor|landlord)`),
}

var lesseePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*(?:Lessee|Tenant)[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?i)(?:Lessee|Tenant):\s*([^,\n]+)`),
	regexp.MustCompile(`(?i)(?:and|to)\s+([^,\n]+?)\s+(?:as|being)\s+(?:lessee|tenant)`),
}

var rentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:rent|rental)[:\s]*£?(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:per|/|each)\s*(year|month|week|annum|quarterly|half[\s-]?year)`),
	regexp.MustCompile(`(?i)£(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:per|/|each)\s*(year|month|week|annum|quarterly|half[\s-]?year)`),
	regexp.MustCompile(`(?i)(?:sum|amount)\s+of\s+£?(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:per|/|each)\s*(year|month|week|annum|quarterly|half[\s-]?year)`),
}

var depositPattern = regexp.MustCompile(`(?i)(?:premium|deposit)[:\s]*£?(\d+(?:,\d{3})*(?:\.\d{2})?)`)

var startDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:from|start|commenc|begin)(?:ing|s)?\s*:?\s*([^\n]{1,50}(?:January|February|March|April|May|June|July|August|September|October|November|December)[^\n]{1,20})`),
	regexp.MustCompile(`(?i)(?:from|start|commenc|begin)(?:ing|s)?\s*:?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
}

var termPattern = regexp.MustCompile(`(?i)(?:term|period)[:\s]*(\d+)\s*year`)

// Extractor pulls structured fields out of raw extracted document text
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates a field extractor with the given logger
func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{log: log}
}

// Fields applies the ordered pattern chains to text. Pure and deterministic;
// a field whose patterns all miss is simply left nil. An unexpected panic is
// recovered and logged, returning whatever was accumulated to that point.
func (e *Extractor) Fields(text string) (fields models.StructuredFields) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("structured field extraction aborted", zap.Any("panic", r))
		}
	}()

	if addr := firstCapture(addressPatterns, text); addr != "" {
		fields.Property = &models.PropertyDetails{Address: addr}
	}

	lessor := firstCapture(lessorPatterns, text)
	lessee := firstCapture(lesseePatterns, text)
	if lessor != "" || lessee != "" {
		fields.Parties = &models.KeyParties{Lessor: lessor, Lessee: lessee}
	}

	financial := models.FinancialTerms{
		Rent:    extractRent(text),
		Deposit: extractDeposit(text),
	}
	if financial.Rent != "" || financial.Deposit != "" {
		fields.Financial = &financial
	}

	dates := models.KeyDates{
		StartDate: firstCapture(startDatePatterns, text),
	}
	if m := termPattern.FindStringSubmatch(text); m != nil {
		dates.Term = m[1] + " years"
	}
	if dates.StartDate != "" || dates.Term != "" {
		fields.Dates = &dates
	}

	return fields
}

// firstCapture returns the trimmed first capture group of the first pattern
// that matches, or "".
func firstCapture(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractRent finds a rent amount and normalizes it to "£{amount} per
// {period}". The period token is lowercased with whitespace and hyphens
// removed, and "annum" mapped to "year". Amounts that fail decimal parsing
// are treated as misses so the next pattern gets a chance.
func extractRent(text string) string {
	for _, re := range rentPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount := m[1]
		if !validAmount(amount) {
			continue
		}
		period := strings.ToLower(m[2])
		period = strings.ReplaceAll(period, " ", "")
		period = strings.ReplaceAll(period, "-", "")
		if period == "annum" {
			period = "year"
		}
		return fmt.Sprintf("£%s per %s", amount, period)
	}
	return ""
}

func extractDeposit(text string) string {
	m := depositPattern.FindStringSubmatch(text)
	if m == nil || !validAmount(m[1]) {
		return ""
	}
	return "£" + m[1]
}

// validAmount checks that a captured money string parses cleanly once the
// thousands separators are removed
func validAmount(s string) bool {
	_, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	return err == nil
}
