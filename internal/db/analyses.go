package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Analysis is one stored document analysis. AnalysisJSON holds the full
// DocumentSummary as produced by the pipeline; the scalar columns are
// denormalized for listing and stats.
type Analysis struct {
	ID              uuid.UUID  `json:"id"`
	DocumentName    string     `json:"documentName"`
	DocumentType    string     `json:"documentType"`
	Filename        string     `json:"filename"`
	FileURL         string     `json:"fileUrl"`
	Source          string     `json:"source"`
	Summary         string     `json:"summary"`
	AnalysisJSON    string     `json:"analysisJson,omitempty"`
	Confidence      float64    `json:"confidence"`
	ExtractedLength int        `json:"extractedLength"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func SaveAnalysis(ctx context.Context, a *Analysis) error {
	query := `
		INSERT INTO document_analyses (
			document_name, document_type, filename, file_url,
			source, summary, analysis_json, confidence, extracted_length
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	return Pool.QueryRow(ctx, query,
		a.DocumentName, a.DocumentType, a.Filename, a.FileURL,
		a.Source, a.Summary, a.AnalysisJSON, a.Confidence, a.ExtractedLength,
	).Scan(&a.ID, &a.CreatedAt)
}

func GetAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	query := `
		SELECT id, COALESCE(document_name, ''), COALESCE(document_type, ''),
		       COALESCE(filename, ''), COALESCE(file_url, ''), COALESCE(source, ''),
		       COALESCE(summary, ''), COALESCE(confidence, 0),
		       COALESCE(extracted_length, 0), created_at
		FROM document_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		err := rows.Scan(
			&a.ID, &a.DocumentName, &a.DocumentType,
			&a.Filename, &a.FileURL, &a.Source,
			&a.Summary, &a.Confidence, &a.ExtractedLength, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

// GetAnalysisByID retrieves a single analysis including the full JSON record
func GetAnalysisByID(ctx context.Context, id string) (*Analysis, error) {
	query := `
		SELECT id, COALESCE(document_name, ''), COALESCE(document_type, ''),
		       COALESCE(filename, ''), COALESCE(file_url, ''), COALESCE(source, ''),
		       COALESCE(summary, ''), COALESCE(analysis_json::text, '{}'),
		       COALESCE(confidence, 0), COALESCE(extracted_length, 0), created_at
		FROM document_analyses
		WHERE id = $1
	`

	var a Analysis
	err := Pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.DocumentName, &a.DocumentType,
		&a.Filename, &a.FileURL, &a.Source,
		&a.Summary, &a.AnalysisJSON,
		&a.Confidence, &a.ExtractedLength, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAnalysis removes a stored analysis
func DeleteAnalysis(ctx context.Context, id string) error {
	_, err := Pool.Exec(ctx, `DELETE FROM document_analyses WHERE id = $1`, id)
	return err
}

// MonthlyStats represents statistics for the current month
type MonthlyStats struct {
	Month          string  `json:"month"`
	TotalDocuments int     `json:"totalDocuments"`
	AvgConfidence  float64 `json:"avgConfidence"`
	TotalExtracted int64   `json:"totalExtracted"`
}

// GetMonthlyStats returns aggregate stats for the current month
func GetMonthlyStats(ctx context.Context) (*MonthlyStats, error) {
	query := `
		SELECT
			COUNT(*) as total_documents,
			COALESCE(AVG(confidence), 0) as avg_confidence,
			COALESCE(SUM(extracted_length), 0) as total_extracted
		FROM document_analyses
		WHERE DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
	`

	stats := &MonthlyStats{
		Month: time.Now().Format("2006-01"),
	}

	err := Pool.QueryRow(ctx, query).Scan(
		&stats.TotalDocuments,
		&stats.AvgConfidence,
		&stats.TotalExtracted,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
