package models

import (
	"time"
)

// KeyDates holds date-valued fields recovered from a document. List fields
// preserve extraction order.
type KeyDates struct {
	StartDate           string      `json:"startDate,omitempty"`
	EndDate             string      `json:"endDate,omitempty"`
	Term                string      `json:"term,omitempty"`
	PaymentDates        []string    `json:"paymentDates,omitempty"`
	ReviewDates         []string    `json:"reviewDates,omitempty"`
	NoticePeriods       []string    `json:"noticePeriods,omitempty"`
	OtherImportantDates []DatedNote `json:"otherImportantDates,omitempty"`
}

// DatedNote pairs a date with a description of what it represents
type DatedNote struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// KeyParties holds the parties to a lease or tenancy document
type KeyParties struct {
	Lessor    string `json:"lessor,omitempty"`
	Lessee    string `json:"lessee,omitempty"`
	Agent     string `json:"agent,omitempty"`
	Guarantor string `json:"guarantor,omitempty"`
}

// PropertyDetails describes the demised premises
type PropertyDetails struct {
	Address     string `json:"address,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// FinancialTerms holds money-valued fields. Amounts are formatted strings
// (e.g. "£450 per year") because source documents rarely agree on structure.
type FinancialTerms struct {
	Rent          string `json:"rent,omitempty"`
	Deposit       string `json:"deposit,omitempty"`
	ServiceCharge string `json:"serviceCharge,omitempty"`
	OtherFees     []Fee  `json:"otherFees,omitempty"`
}

// Fee is a labelled charge found in a document
type Fee struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

// StructuredFields is the output of the regex extraction pass. Sub-objects
// are nil when no pattern for that category matched.
type StructuredFields struct {
	Dates     *KeyDates        `json:"dates,omitempty"`
	Parties   *KeyParties      `json:"parties,omitempty"`
	Property  *PropertyDetails `json:"property,omitempty"`
	Financial *FinancialTerms  `json:"financial,omitempty"`
}

// AnalysisResult is the AI overlay: same shape as StructuredFields plus the
// free-text outputs. Produced by the AI analyzer and merged field-by-field
// over the regex pass, AI values winning where both are present.
type AnalysisResult struct {
	Dates     *KeyDates        `json:"dates,omitempty"`
	Parties   *KeyParties      `json:"parties,omitempty"`
	Property  *PropertyDetails `json:"property,omitempty"`
	Financial *FinancialTerms  `json:"financial,omitempty"`
	KeyTerms  []string         `json:"keyTerms"`
	Summary   string           `json:"summary"`
}

// DocumentSummary is the final record returned to the caller for one
// analysis run. Immutable once built.
type DocumentSummary struct {
	DocumentName    string          `json:"documentName"`
	DocumentType    string          `json:"documentType"`
	KeyDates        KeyDates        `json:"keyDates"`
	KeyParties      KeyParties      `json:"keyParties"`
	PropertyDetails PropertyDetails `json:"propertyDetails"`
	FinancialTerms  FinancialTerms  `json:"financialTerms"`
	KeyTerms        []string        `json:"keyTerms"`
	Summary         string          `json:"summary"`
	ExtractedLength int             `json:"extractedLength"`
	Confidence      float64         `json:"confidence"`
	ProcessedAt     time.Time       `json:"processedAt"`
}

// AnalyzeRequest is the JSON body for pre-extracted text analysis
type AnalyzeRequest struct {
	ExtractedText string `json:"extractedText"`
	Filename      string `json:"filename"`
	DocumentType  string `json:"documentType"`
}

// AnalyzeResponse is the envelope for document analysis
type AnalyzeResponse struct {
	Success  bool             `json:"success"`
	Analysis *DocumentSummary `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`

	// Processing metadata
	OCRDuration   float64 `json:"ocrDuration,omitempty"`   // OCR time in seconds
	AIDuration    float64 `json:"aiDuration,omitempty"`    // AI analysis time in seconds
	TotalDuration float64 `json:"totalDuration"`           // Total processing time
}
