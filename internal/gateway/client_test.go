package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pronob/libvision/internal/models"
)

func TestAnalyzeMedia(t *testing.T) {
	var gotPath string
	var gotBody analyzeRequestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"analysisId": "an-123",
			"books": [{"id": "b1", "title": "Go in Action", "confidence": 0.92}],
			"people": [{"id": "p1", "ageCategory": "adult", "action": "reading", "confidence": 0.8}]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	payload, err := client.AnalyzeMedia(context.Background(), "data:image/jpeg;base64,abc", models.MediaTypeImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/analyze-media" {
		t.Errorf("expected path /analyze-media, got %s", gotPath)
	}
	if gotBody.MediaURL != "data:image/jpeg;base64,abc" {
		t.Errorf("unexpected mediaUrl in request: %s", gotBody.MediaURL)
	}
	if gotBody.MediaType != "image" {
		t.Errorf("unexpected mediaType in request: %s", gotBody.MediaType)
	}

	if payload.ID != "an-123" {
		t.Errorf("expected analysis ID an-123, got %s", payload.ID)
	}
	if len(payload.Books) != 1 || payload.Books[0].Title != "Go in Action" {
		t.Errorf("unexpected books: %+v", payload.Books)
	}
	if len(payload.People) != 1 || payload.People[0].Action != "reading" {
		t.Errorf("unexpected people: %+v", payload.People)
	}
	if len(payload.Raw) == 0 {
		t.Error("expected raw response to be retained")
	}
}

type analyzeRequestBody struct {
	MediaURL  string `json:"mediaUrl"`
	MediaType string `json:"mediaType"`
}

func TestAnalyzeMediaDefaultsMissingSequences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"analysisId": "an-1"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	payload, err := client.AnalyzeMedia(context.Background(), "data:image/png;base64,x", models.MediaTypeImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Books == nil || len(payload.Books) != 0 {
		t.Errorf("expected empty books slice, got %v", payload.Books)
	}
	if payload.People == nil || len(payload.People) != 0 {
		t.Errorf("expected empty people slice, got %v", payload.People)
	}
}

func TestAnalyzeMediaCoercesUnknownAgeCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"people": [{"id": "p1", "ageCategory": "teenager"}, {"id": "p2", "ageCategory": "elderly"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	payload, err := client.AnalyzeMedia(context.Background(), "data:image/png;base64,x", models.MediaTypeImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.People[0].AgeCategory != models.AgeAdult {
		t.Errorf("expected out-of-enum category coerced to adult, got %s", payload.People[0].AgeCategory)
	}
	if payload.People[1].AgeCategory != models.AgeElderly {
		t.Errorf("expected elderly preserved, got %s", payload.People[1].AgeCategory)
	}
}

func TestAnalyzeMediaTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.AnalyzeMedia(context.Background(), "data:image/png;base64,x", models.MediaTypeImage)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Kind != KindTransport {
		t.Errorf("expected transport kind, got %s", apiErr.Kind)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "API error: Internal Server Error" {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestAnalyzeMediaNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.AnalyzeMedia(context.Background(), "data:image/png;base64,x", models.MediaTypeImage)
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Kind != KindNetwork {
		t.Errorf("expected network kind, got %s", apiErr.Kind)
	}
	if apiErr.Unwrap() == nil {
		t.Error("expected network error to wrap its cause")
	}
}

func TestAskQuery(t *testing.T) {
	var gotBody struct {
		Query      string `json:"query"`
		AnalysisID string `json:"analysisId"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask-query" {
			t.Errorf("expected path /ask-query, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"answer": "One"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	result, err := client.AskQuery(context.Background(), "How many people are reading?", "an-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody.Query != "How many people are reading?" {
		t.Errorf("unexpected query in request: %s", gotBody.Query)
	}
	if gotBody.AnalysisID != "an-123" {
		t.Errorf("unexpected analysisId in request: %s", gotBody.AnalysisID)
	}
	if result.Answer != "One" {
		t.Errorf("expected answer %q, got %q", "One", result.Answer)
	}
}

func TestAskQueryTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.AskQuery(context.Background(), "anything", "an-123")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Kind != KindTransport {
		t.Errorf("expected transport kind, got %s", apiErr.Kind)
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient(Config{})
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL %s, got %s", DefaultBaseURL, client.baseURL)
	}
}
