package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/blociq/doc-intel-service/internal/models"
)

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^([A-Z\s]+(?:AGREEMENT|CONTRACT|LEASE|DEED|TENANCY))`),
	regexp.MustCompile(`(?i)(LEASE\s+AGREEMENT[^\n]*)`),
	regexp.MustCompile(`(?i)(TENANCY\s+AGREEMENT[^\n]*)`),
}

var fileExtRe = regexp.MustCompile(`(?i)\.(pdf|doc|docx)$`)

// DocumentName derives a display title for a document. Titles found in the
// text win over the filename; the filename is cleaned up as a fallback.
func DocumentName(filename, text string) string {
	for _, pattern := range titlePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	name := fileExtRe.ReplaceAllString(filename, "")
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCase(name)
}

func titleCase(s string) string {
	var sb strings.Builder
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if isLetter && !prevLetter && r >= 'a' && r <= 'z' {
			r = r - 'a' + 'A'
		}
		sb.WriteRune(r)
		prevLetter = isLetter
	}
	return sb.String()
}

// BuildSummary merges the regex pass with the AI overlay into the final
// record. Merging is field by field within each section, the AI value
// winning wherever it is non-empty.
func BuildSummary(filename, docType, text string, structured models.StructuredFields, ai models.AnalysisResult) models.DocumentSummary {
	summary := models.DocumentSummary{
		DocumentName:    DocumentName(filename, text),
		DocumentType:    docType,
		KeyDates:        mergeDates(structured.Dates, ai.Dates),
		KeyParties:      mergeParties(structured.Parties, ai.Parties),
		PropertyDetails: mergeProperty(structured.Property, ai.Property),
		FinancialTerms:  mergeFinancial(structured.Financial, ai.Financial),
		KeyTerms:        ai.KeyTerms,
		Summary:         ai.Summary,
		ExtractedLength: len(text),
		Confidence:      Score(structured, ai, text),
		ProcessedAt:     time.Now(),
	}
	if summary.KeyTerms == nil {
		summary.KeyTerms = []string{}
	}
	return summary
}

func mergeDates(base, overlay *models.KeyDates) models.KeyDates {
	var out models.KeyDates
	if base != nil {
		out = *base
	}
	if overlay != nil {
		overlayString(&out.StartDate, overlay.StartDate)
		overlayString(&out.EndDate, overlay.EndDate)
		overlayString(&out.Term, overlay.Term)
		if len(overlay.PaymentDates) > 0 {
			out.PaymentDates = overlay.PaymentDates
		}
		if len(overlay.ReviewDates) > 0 {
			out.ReviewDates = overlay.ReviewDates
		}
		if len(overlay.NoticePeriods) > 0 {
			out.NoticePeriods = overlay.NoticePeriods
		}
		if len(overlay.OtherImportantDates) > 0 {
			out.OtherImportantDates = overlay.OtherImportantDates
		}
	}
	return out
}

func mergeParties(base, overlay *models.KeyParties) models.KeyParties {
	var out models.KeyParties
	if base != nil {
		out = *base
	}
	if overlay != nil {
		overlayString(&out.Lessor, overlay.Lessor)
		overlayString(&out.Lessee, overlay.Lessee)
		overlayString(&out.Agent, overlay.Agent)
		overlayString(&out.Guarantor, overlay.Guarantor)
	}
	return out
}

func mergeProperty(base, overlay *models.PropertyDetails) models.PropertyDetails {
	var out models.PropertyDetails
	if base != nil {
		out = *base
	}
	if overlay != nil {
		overlayString(&out.Address, overlay.Address)
		overlayString(&out.Type, overlay.Type)
		overlayString(&out.Description, overlay.Description)
	}
	return out
}

func mergeFinancial(base, overlay *models.FinancialTerms) models.FinancialTerms {
	var out models.FinancialTerms
	if base != nil {
		out = *base
	}
	if overlay != nil {
		overlayString(&out.Rent, overlay.Rent)
		overlayString(&out.Deposit, overlay.Deposit)
		overlayString(&out.ServiceCharge, overlay.ServiceCharge)
		if len(overlay.OtherFees) > 0 {
			out.OtherFees = overlay.OtherFees
		}
	}
	return out
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
