// Package mistral provides an OCR service adapter using the Mistral OCR API.
package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure OCRService implements the interface.
var _ driven.OCRService = (*OCRService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-ocr-latest"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Mistral OCR service.
type Config struct {
	// APIKey is the Mistral API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.mistral.ai/v1).
	BaseURL string

	// Model is the OCR model to use (default: mistral-ocr-latest).
	Model string

	// Timeout is the request timeout (default: 120s; scanned PDFs are
	// large and page-by-page OCR is slow).
	Timeout time.Duration
}

// OCRService converts PDF documents to markdown using the Mistral OCR API.
type OCRService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// ocrRequest is the Mistral OCR API request format. Documents are submitted
// inline as a base64 data URL.
type ocrRequest struct {
	Model    string      `json:"model"`
	Document ocrDocument `json:"document"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// ocrResponse is the Mistral OCR API response format.
type ocrResponse struct {
	Pages []struct {
		Index    int    `json:"index"`
		Markdown string `json:"markdown"`
	} `json:"pages"`
	Message *string `json:"message,omitempty"`
}

// NewOCRService creates a new Mistral OCR service.
func NewOCRService(cfg Config) (*OCRService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OCRService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Process submits the PDF bytes and returns extracted pages in page order.
func (s *OCRService) Process(ctx context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("mistral: empty document")
	}

	reqBody := ocrRequest{
		Model: s.model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/ocr",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var ocrResp ocrResponse
	if err := json.Unmarshal(body, &ocrResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if ocrResp.Message != nil {
			return nil, fmt.Errorf("mistral error (status %d): %s", resp.StatusCode, *ocrResp.Message)
		}
		return nil, fmt.Errorf("mistral error (status %d): %s", resp.StatusCode, string(body))
	}

	pages := make([]domain.Page, len(ocrResp.Pages))
	for i, p := range ocrResp.Pages {
		pages[i] = domain.Page{
			Index:    p.Index,
			Markdown: p.Markdown,
		}
	}

	// Page order is part of the contract; the API returns pages ordered
	// but the index field is authoritative.
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})

	return pages, nil
}

// ModelName returns the name of the OCR model being used.
func (s *OCRService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *OCRService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
