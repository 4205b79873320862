// Package gateway wraps the remote analysis/query service. It holds no
// state beyond the configured base URL: every call is fire-once, with no
// retry and no idempotency key.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pronob/libvision/internal/models"
)

const DefaultBaseURL = "http://localhost:3001/api"

type Config struct {
	BaseURL string
	// Timeout of zero means no timeout is enforced; a hung call leaves
	// the caller waiting. Set it to bound requests.
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type analyzeRequest struct {
	MediaURL  string           `json:"mediaUrl"`
	MediaType models.MediaType `json:"mediaType"`
}

type queryRequest struct {
	Query      string `json:"query"`
	AnalysisID string `json:"analysisId"`
}

// AnalysisPayload is the decoded analyze response. Raw keeps the payload
// exactly as the service returned it, for export and debugging.
type AnalysisPayload struct {
	ID     string
	Books  []models.Book
	People []models.Person
	Raw    json.RawMessage
}

type QueryResult struct {
	Answer string `json:"answer"`
}

func (c *Client) AnalyzeMedia(ctx context.Context, mediaURL string, mediaType models.MediaType) (*AnalysisPayload, error) {
	raw, err := c.post(ctx, "/analyze-media", analyzeRequest{
		MediaURL:  mediaURL,
		MediaType: mediaType,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		AnalysisID string          `json:"analysisId"`
		Books      []models.Book   `json:"books"`
		People     []models.Person `json:"people"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &APIError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("API error: malformed analyze response: %v", err),
		}
	}

	payload := &AnalysisPayload{
		ID:     decoded.AnalysisID,
		Books:  decoded.Books,
		People: decoded.People,
		Raw:    raw,
	}
	if payload.Books == nil {
		payload.Books = []models.Book{}
	}
	if payload.People == nil {
		payload.People = []models.Person{}
	}
	for i := range payload.People {
		payload.People[i].AgeCategory = models.NormalizeAgeCategory(string(payload.People[i].AgeCategory))
	}

	return payload, nil
}

func (c *Client) AskQuery(ctx context.Context, query, analysisID string) (*QueryResult, error) {
	raw, err := c.post(ctx, "/ask-query", queryRequest{
		Query:      query,
		AnalysisID: analysisID,
	})
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &APIError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("API error: malformed query response: %v", err),
		}
	}

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("request failed: %v", err),
			cause:   err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("failed to read response: %v", err),
			cause:   err,
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API error: %s", http.StatusText(resp.StatusCode)),
		}
	}

	return body, nil
}
