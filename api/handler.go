package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/blociq/doc-intel-service/internal/ai"
	"github.com/blociq/doc-intel-service/internal/db"
	"github.com/blociq/doc-intel-service/internal/extract"
	"github.com/blociq/doc-intel-service/internal/models"
	"github.com/blociq/doc-intel-service/internal/ocr"
	"github.com/blociq/doc-intel-service/internal/storage"
	"github.com/blociq/doc-intel-service/internal/textproc"
)

const Version = "1.0.0"

// Handler handles HTTP requests for document analysis
type Handler struct {
	config    *models.Config
	log       *zap.Logger
	provider  ai.Provider
	extractor *extract.Extractor
	analyzer  *ai.Analyzer
	chain     *ocr.Chain
}

// NewHandler creates a new API handler. The AI provider is resolved from
// config; a missing API key leaves it nil and the pipeline degrades to
// regex-only analysis.
func NewHandler(config *models.Config, log *zap.Logger) *Handler {
	provider := buildProvider(config)
	if provider == nil {
		log.Warn("no AI provider configured, running regex-only analysis")
	}

	return &Handler{
		config:    config,
		log:       log,
		provider:  provider,
		extractor: extract.NewExtractor(log),
		analyzer:  ai.NewAnalyzer(provider, log),
		chain:     ocr.NewChain(config.OCR, provider, log),
	}
}

func buildProvider(config *models.Config) ai.Provider {
	switch config.AI.DefaultProvider {
	case "gemini":
		if config.AI.Gemini.APIKey != "" {
			return ai.NewGeminiProvider(config.AI.Gemini.APIKey, config.AI.Gemini.Model)
		}
	default:
		if config.AI.OpenAI.APIKey != "" {
			return ai.NewOpenAIProvider(
				config.AI.OpenAI.APIKey,
				config.AI.OpenAI.BaseURL,
				config.AI.OpenAI.Model,
				config.AI.OpenAI.VisionModel,
			)
		}
	}
	return nil
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Document pipeline
	router.HandleFunc("/api/documents/analyze", h.AnalyzeDocument).Methods("POST")
	router.HandleFunc("/api/documents/extract-text", h.ExtractText).Methods("POST")

	// Email helpers
	router.HandleFunc("/api/emails/sender-name", h.SenderName).Methods("POST")

	// Stored analyses
	router.HandleFunc("/api/analyses", h.GetAnalyses).Methods("GET")
	router.HandleFunc("/api/analysis/{id}", h.GetAnalysis).Methods("GET")
	router.HandleFunc("/api/analysis/{id}", h.DeleteAnalysis).Methods("DELETE")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// AnalyzeDocument runs the full pipeline for one document. Accepts either a
// multipart upload (field "file", text recovered via the OCR chain) or a
// JSON body with pre-extracted text.
func (h *Handler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	startTime := time.Now()

	var (
		text        string
		filename    string
		docType     string
		source      string
		fileData    []byte
		contentType string
		ocrDuration float64
	)

	if isMultipart(r) {
		data, name, ctype, err := h.readUpload(w, r)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, err.Error())
			return
		}
		fileData = data
		filename = name
		contentType = ctype
		docType = r.FormValue("documentType")
		if docType == "" {
			docType = "lease_agreement"
		}

		ocrStart := time.Now()
		result, err := h.chain.Extract(ctx, filename, contentType, fileData)
		ocrDuration = time.Since(ocrStart).Seconds()
		if err != nil {
			h.sendChainError(w, err)
			return
		}
		text = result.Text
		source = result.Source
	} else {
		var req models.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		text = req.ExtractedText
		filename = req.Filename
		docType = req.DocumentType
	}

	normalized := textproc.Normalize(text)
	if normalized == "" {
		h.sendError(w, http.StatusBadRequest, "No extracted text provided for analysis")
		return
	}

	fields := h.extractor.Fields(normalized)

	aiStart := time.Now()
	aiResult := h.analyzer.Analyze(ctx, normalized, filename, docType, fields)
	aiDuration := time.Since(aiStart).Seconds()

	summary := extract.BuildSummary(filename, docType, normalized, fields, aiResult)

	// Store the raw file when storage is configured. Failure is logged,
	// not fatal.
	var fileURL string
	if fileData != nil && storage.Client != nil {
		url, err := storage.UploadDocument(ctx, filename, bytes.NewReader(fileData), int64(len(fileData)), contentType)
		if err != nil {
			h.log.Warn("failed to upload document to storage", zap.Error(err))
		} else {
			fileURL = url
		}
	}

	if db.Pool != nil {
		record := &db.Analysis{
			DocumentName:    summary.DocumentName,
			DocumentType:    summary.DocumentType,
			Filename:        filename,
			FileURL:         fileURL,
			Source:          source,
			Summary:         summary.Summary,
			Confidence:      summary.Confidence,
			ExtractedLength: summary.ExtractedLength,
		}
		if analysisJSON, err := json.Marshal(summary); err == nil {
			record.AnalysisJSON = string(analysisJSON)
		}
		if err := db.SaveAnalysis(ctx, record); err != nil {
			h.log.Warn("failed to persist analysis", zap.Error(err))
		}
	}

	h.log.Info("document analyzed",
		zap.String("filename", filename),
		zap.String("documentType", docType),
		zap.Float64("confidence", summary.Confidence),
		zap.Int("extractedLength", summary.ExtractedLength))

	json.NewEncoder(w).Encode(models.AnalyzeResponse{
		Success:       true,
		Analysis:      &summary,
		OCRDuration:   ocrDuration,
		AIDuration:    aiDuration,
		TotalDuration: time.Since(startTime).Seconds(),
	})
}

// ExtractText runs only the OCR fallback chain and returns the raw text.
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	data, filename, contentType, err := h.readUpload(w, r)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chain.Extract(r.Context(), filename, contentType, data)
	if err != nil {
		h.sendChainError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"text":     result.Text,
		"source":   result.Source,
		"metadata": result.Metadata,
	})
}

// SenderNameRequest is the body for sender-name extraction
type SenderNameRequest struct {
	Body         string `json:"body"`
	FallbackName string `json:"fallbackName"`
}

// SenderName extracts a human display name from a raw email body.
func (h *Handler) SenderName(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req SenderNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := textproc.ExtractSenderName(req.Body, req.FallbackName)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"name":    name,
	})
}

// GetAnalyses returns recent stored analyses
func (h *Handler) GetAnalyses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	analyses, err := db.GetAnalyses(ctx, limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get analyses: %v", err))
		return
	}

	// Generate presigned URLs for stored files
	for i := range analyses {
		if analyses[i].FileURL != "" && storage.Client != nil {
			if presignedURL, err := storage.GetPresignedURL(ctx, analyses[i].FileURL); err == nil {
				analyses[i].FileURL = presignedURL
			}
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"analyses": analyses,
		"count":    len(analyses),
	})
}

// GetAnalysis returns a single stored analysis with the full record
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	analysisID := mux.Vars(r)["id"]

	analysis, err := db.GetAnalysisByID(ctx, analysisID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "analysis not found")
		return
	}

	if analysis.FileURL != "" && storage.Client != nil {
		if presignedURL, err := storage.GetPresignedURL(ctx, analysis.FileURL); err == nil {
			analysis.FileURL = presignedURL
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"analysis": analysis,
		"record":   json.RawMessage(analysis.AnalysisJSON),
	})
}

// DeleteAnalysis removes a stored analysis and its file
func (h *Handler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	analysisID := mux.Vars(r)["id"]

	analysis, err := db.GetAnalysisByID(ctx, analysisID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "analysis not found")
		return
	}

	if analysis.FileURL != "" && storage.Client != nil {
		if err := storage.DeleteDocument(ctx, analysis.FileURL); err != nil {
			h.log.Warn("failed to delete stored document", zap.String("id", analysisID), zap.Error(err))
		}
	}

	if err := db.DeleteAnalysis(ctx, analysisID); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete analysis: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"deleted": analysisID,
	})
}

// GetStats returns aggregate statistics for the current month
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	stats, err := db.GetMonthlyStats(r.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get stats: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Memory    MemoryStats       `json:"memory"`
	Database  ServiceStatus     `json:"database"`
	Storage   ServiceStatus     `json:"storage"`
	OCR       ServiceStatus     `json:"ocr"`
	AI        map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	providerName := "none"
	if h.provider != nil {
		providerName = h.provider.Name()
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database: h.checkDatabase(),
		Storage:  h.checkStorage(),
		OCR:      h.checkOCR(),
		AI: map[string]string{
			"provider": providerName,
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL via PgBouncer",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// checkOCR reports whether the external OCR endpoint is configured
func (h *Handler) checkOCR() ServiceStatus {
	if h.config.OCR.Endpoint == "" {
		return ServiceStatus{
			Available: false,
			Error:     "no external OCR endpoint configured",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "external OCR service",
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readUpload parses the multipart form and returns the uploaded file bytes.
// Accepts both "file" and "document" field names.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	maxSize := h.config.OCR.MaxFileSize
	if maxSize == 0 {
		maxSize = 100 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", "", fmt.Errorf("file too large or invalid form data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("document")
		if err != nil {
			return nil, "", "", fmt.Errorf("no file provided (use 'file' or 'document' field)")
		}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read file")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	return data, header.Filename, contentType, nil
}

// sendChainError maps OCR chain errors onto HTTP statuses: oversized files
// get 413, exhausted fallbacks get 422 with the diagnostic payload.
func (h *Handler) sendChainError(w http.ResponseWriter, err error) {
	var tooLarge *ocr.TooLargeError
	if errors.As(err, &tooLarge) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("file too large: %d bytes (maximum %d)", tooLarge.Size, tooLarge.Max),
		})
		return
	}

	var failed *ocr.FailedError
	if errors.As(err, &failed) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   failed.Message,
			"metadata": map[string]interface{}{
				"fileType":         failed.FileType,
				"fileSize":         failed.FileSize,
				"isLargeFile":      failed.IsLargeFile,
				"attemptedMethods": failed.Attempts,
			},
		})
		return
	}

	h.sendError(w, http.StatusInternalServerError, err.Error())
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
