package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blociq/doc-intel-service/internal/ai"
	"github.com/blociq/doc-intel-service/internal/models"
)

// Extraction sources reported in results.
const (
	SourceExternalOCR = "external_ocr"
	visionSuffix      = "_vision"
)

// Default limits, used when the config leaves them zero.
const (
	defaultMaxFileSize     = 100 << 20 // absolute reject
	defaultExternalMaxSize = 20 << 20  // external OCR skip threshold
	defaultLargeFileSize   = 2 << 20   // failure message variant
	defaultMaxAttempts     = 3
	defaultExternalTimeout = 180 // seconds, per attempt
	defaultVisionTimeout   = 120
	defaultRequestTimeout  = 180 // overall budget
	backoffBase            = time.Second
	backoffCap             = 10 * time.Second
)

const visionPrompt = "Extract all text from this document. Focus on lease terms, dates, names, addresses, rent amounts, and other important lease information. Return only the text content, preserving structure when possible."

// Result is a successful text extraction.
type Result struct {
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the processed file and how it was handled.
type Metadata struct {
	FileType       string  `json:"fileType"`
	FileSize       int64   `json:"fileSize"`
	ProcessingTime float64 `json:"processingTime"` // seconds
	Model          string  `json:"model"`
}

// AttemptOutcome records one extraction method and how it ended.
type AttemptOutcome struct {
	Method  string `json:"method"`
	Outcome string `json:"outcome"`
}

// TooLargeError rejects a file over the absolute size limit before any
// network call is made. Maps to HTTP 413.
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file size %d exceeds maximum %d bytes", e.Size, e.Max)
}

// FailedError reports that every extraction method was exhausted. Maps to
// HTTP 422. Message is user-facing; the rest is diagnostic.
type FailedError struct {
	Message     string           `json:"error"`
	FileType    string           `json:"fileType"`
	FileSize    int64            `json:"fileSize"`
	IsLargeFile bool             `json:"isLargeFile"`
	Attempts    []AttemptOutcome `json:"attemptedMethods"`
}

func (e *FailedError) Error() string {
	return e.Message
}

// Chain extracts text from raw files by trying an external OCR service
// first and falling back to a vision model. Transitions:
//
//	START -> TRY_EXTERNAL_OCR -> TRY_VISION_LLM -> SUCCEEDED | FAILED
//
// Oversized files are rejected in START; files over the external limit go
// straight to the vision step.
type Chain struct {
	cfg      models.OCRConfig
	provider ai.Provider
	client   *http.Client
	log      *zap.Logger
}

// NewChain creates a fallback chain. provider may be nil, which disables
// the vision step. Zero config limits get defaults.
func NewChain(cfg models.OCRConfig, provider ai.Provider, log *zap.Logger) *Chain {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.ExternalMaxSize == 0 {
		cfg.ExternalMaxSize = defaultExternalMaxSize
	}
	if cfg.LargeFileSize == 0 {
		cfg.LargeFileSize = defaultLargeFileSize
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.ExternalTimeout == 0 {
		cfg.ExternalTimeout = defaultExternalTimeout
	}
	if cfg.VisionTimeout == 0 {
		cfg.VisionTimeout = defaultVisionTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return &Chain{
		cfg:      cfg,
		provider: provider,
		client:   &http.Client{},
		log:      log,
	}
}

// Extract runs the chain for one file. The returned error is either a
// *TooLargeError or a *FailedError.
func (c *Chain) Extract(ctx context.Context, filename, contentType string, data []byte) (*Result, error) {
	start := time.Now()
	size := int64(len(data))

	if size > c.cfg.MaxFileSize {
		return nil, &TooLargeError{Size: size, Max: c.cfg.MaxFileSize}
	}

	deadline := start.Add(time.Duration(c.cfg.RequestTimeout) * time.Second)
	var attempts []AttemptOutcome

	c.log.Info("processing file",
		zap.String("filename", filename),
		zap.String("contentType", contentType),
		zap.Int64("size", size))

	if size <= c.cfg.ExternalMaxSize && c.cfg.Endpoint != "" {
		text, err := c.tryExternal(ctx, filename, data, deadline)
		if err == nil {
			c.log.Info("external OCR successful", zap.String("filename", filename))
			return &Result{
				Text:   text,
				Source: SourceExternalOCR,
				Metadata: Metadata{
					FileType:       contentType,
					FileSize:       size,
					ProcessingTime: time.Since(start).Seconds(),
					Model:          "google_document_ai",
				},
			}, nil
		}
		attempts = append(attempts, AttemptOutcome{Method: SourceExternalOCR, Outcome: err.Error()})
	} else if c.cfg.Endpoint != "" {
		attempts = append(attempts, AttemptOutcome{Method: SourceExternalOCR, Outcome: "skipped: file exceeds external OCR size limit"})
	} else {
		attempts = append(attempts, AttemptOutcome{Method: SourceExternalOCR, Outcome: "skipped: no endpoint configured"})
	}

	if c.provider != nil && visionEligible(contentType) {
		source := c.provider.Name() + visionSuffix
		text, err := c.tryVision(ctx, contentType, data, deadline)
		if err == nil {
			c.log.Info("vision extraction successful",
				zap.String("filename", filename),
				zap.Int("textLength", len(text)))
			return &Result{
				Text:   text,
				Source: source,
				Metadata: Metadata{
					FileType:       contentType,
					FileSize:       size,
					ProcessingTime: time.Since(start).Seconds(),
					Model:          c.provider.Name(),
				},
			}, nil
		}
		attempts = append(attempts, AttemptOutcome{Method: source, Outcome: err.Error()})
	} else if c.provider == nil {
		attempts = append(attempts, AttemptOutcome{Method: "vision", Outcome: "skipped: no vision provider configured"})
	} else {
		attempts = append(attempts, AttemptOutcome{Method: "vision", Outcome: "skipped: unsupported content type " + contentType})
	}

	isLarge := size > c.cfg.LargeFileSize
	message := "Document processing failed. Please check the document format and try again."
	if isLarge {
		message = "Large document processing failed. The document may be too complex or the format is not supported."
	}

	c.log.Warn("all extraction methods failed",
		zap.String("filename", filename),
		zap.Int64("size", size),
		zap.Bool("isLargeFile", isLarge))

	return nil, &FailedError{
		Message:     message,
		FileType:    contentType,
		FileSize:    size,
		IsLargeFile: isLarge,
		Attempts:    attempts,
	}
}

func visionEligible(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

func (c *Chain) tryExternal(ctx context.Context, filename string, data []byte, deadline time.Time) (string, error) {
	r := retrier{
		attempts:   c.cfg.MaxAttempts,
		baseDelay:  backoffBase,
		maxDelay:   backoffCap,
		perAttempt: time.Duration(c.cfg.ExternalTimeout) * time.Second,
		deadline:   deadline,
		log:        c.log,
	}

	var text string
	err := r.do(ctx, "external OCR", func(ctx context.Context) error {
		extracted, err := c.postToOCR(ctx, filename, data)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	return text, err
}

func (c *Chain) postToOCR(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("building OCR request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding OCR response: %w", err)
	}
	return result.Text, nil
}

func (c *Chain) tryVision(ctx context.Context, contentType string, data []byte, deadline time.Time) (string, error) {
	r := retrier{
		attempts:   c.cfg.MaxAttempts,
		baseDelay:  backoffBase,
		maxDelay:   backoffCap,
		perAttempt: time.Duration(c.cfg.VisionTimeout) * time.Second,
		deadline:   deadline,
		log:        c.log,
	}

	var text string
	err := r.do(ctx, "vision extraction", func(ctx context.Context) error {
		extracted, err := c.provider.CompleteVision(ctx, visionPrompt, contentType, data)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	return text, err
}
