package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pronob/libvision/internal/gateway"
	"github.com/pronob/libvision/internal/models"
	"github.com/pronob/libvision/internal/state"
	"github.com/pronob/libvision/internal/storage"
	"github.com/pronob/libvision/internal/validator"
)

type mockGateway struct {
	analyzeCalls int
	queryCalls   int
	payload      *gateway.AnalysisPayload
	analyzeErr   error
	queryResult  *gateway.QueryResult
	queryErr     error

	gotMediaURL  string
	gotMediaType models.MediaType
	gotQuery     string
	gotAnalysis  string
}

func (m *mockGateway) AnalyzeMedia(ctx context.Context, mediaURL string, mediaType models.MediaType) (*gateway.AnalysisPayload, error) {
	m.analyzeCalls++
	m.gotMediaURL = mediaURL
	m.gotMediaType = mediaType
	return m.payload, m.analyzeErr
}

func (m *mockGateway) AskQuery(ctx context.Context, query, analysisID string) (*gateway.QueryResult, error) {
	m.queryCalls++
	m.gotQuery = query
	m.gotAnalysis = analysisID
	return m.queryResult, m.queryErr
}

type mockNavigator struct {
	routes []string
}

func (m *mockNavigator) NavigateTo(route string) {
	m.routes = append(m.routes, route)
}

type mockPreview struct {
	shown     bool
	mediaURL  string
	mediaType models.MediaType
	// order records whether the preview fired before the remote call.
	beforeAnalyze bool
	gw            *mockGateway
}

func (m *mockPreview) ShowPreview(mediaURL string, mediaType models.MediaType) {
	m.shown = true
	m.mediaURL = mediaURL
	m.mediaType = mediaType
	m.beforeAnalyze = m.gw.analyzeCalls == 0
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegInfo() storage.FileInfo {
	return storage.FileInfo{Filename: "shelf.jpg", ContentType: "image/jpeg", Size: 16}
}

func TestUploadSuccess(t *testing.T) {
	book := models.Book{ID: "b1", Title: "Go in Action", Confidence: 0.92}
	gw := &mockGateway{
		payload: &gateway.AnalysisPayload{
			ID:     "an-123",
			Books:  []models.Book{book},
			People: []models.Person{},
		},
	}
	nav := &mockNavigator{}
	preview := &mockPreview{gw: gw}
	store := state.NewStore()

	upload := NewUpload(validator.NewConfig(), gw, store, nav, preview, testLogger())

	err := upload.HandleFile(context.Background(), jpegInfo(), strings.NewReader("fake jpeg bytes!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	analysis := store.CurrentAnalysis()
	if analysis == nil {
		t.Fatal("expected analysis committed to store")
	}
	if analysis.ID != "an-123" {
		t.Errorf("expected analysis ID an-123, got %s", analysis.ID)
	}
	if len(analysis.Books) != 1 || analysis.Books[0].ID != "b1" {
		t.Errorf("unexpected books: %+v", analysis.Books)
	}
	if len(analysis.People) != 0 {
		t.Errorf("expected no people, got %+v", analysis.People)
	}
	if analysis.MediaType != models.MediaTypeImage {
		t.Errorf("expected image media type, got %s", analysis.MediaType)
	}
	if !strings.HasPrefix(analysis.MediaURL, "data:image/jpeg;base64,") {
		t.Errorf("expected data URI media reference, got %s", analysis.MediaURL)
	}

	if store.Loading() {
		t.Error("loading flag should be cleared at completion")
	}
	if len(nav.routes) != 1 || nav.routes[0] != "results" {
		t.Errorf("expected exactly one navigation to results, got %v", nav.routes)
	}
	if upload.State() != StateResultReady {
		t.Errorf("expected result_ready state, got %s", upload.State())
	}
}

func TestUploadPreviewShownBeforeAnalyze(t *testing.T) {
	gw := &mockGateway{payload: &gateway.AnalysisPayload{Books: []models.Book{}, People: []models.Person{}}}
	preview := &mockPreview{gw: gw}
	store := state.NewStore()

	upload := NewUpload(validator.NewConfig(), gw, store, &mockNavigator{}, preview, testLogger())

	if err := upload.HandleFile(context.Background(), jpegInfo(), strings.NewReader("bytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !preview.shown {
		t.Fatal("expected preview to be surfaced")
	}
	if !preview.beforeAnalyze {
		t.Error("preview must be surfaced before the remote analyze call")
	}
	if preview.mediaType != models.MediaTypeImage {
		t.Errorf("expected image preview, got %s", preview.mediaType)
	}
}

func TestUploadAnalyzeFailure(t *testing.T) {
	gw := &mockGateway{
		analyzeErr: &gateway.APIError{Kind: gateway.KindNetwork, Message: "network down"},
	}
	nav := &mockNavigator{}
	store := state.NewStore()

	prior := &models.AnalysisResult{ID: "old", Books: []models.Book{{ID: "b0"}}}
	store.SetCurrentAnalysis(prior)

	upload := NewUpload(validator.NewConfig(), gw, store, nav, nil, testLogger())

	err := upload.HandleFile(context.Background(), jpegInfo(), strings.NewReader("bytes"))
	if err == nil {
		t.Fatal("expected error from failed analysis")
	}

	if !strings.Contains(store.Err(), "network down") {
		t.Errorf("expected store error to contain %q, got %q", "network down", store.Err())
	}
	if !strings.Contains(upload.LocalError(), "network down") {
		t.Errorf("expected form-local error to contain %q, got %q", "network down", upload.LocalError())
	}

	analysis := store.CurrentAnalysis()
	if analysis == nil || analysis.ID != "old" {
		t.Errorf("prior analysis must survive a failed call, got %+v", analysis)
	}
	if store.Loading() {
		t.Error("loading flag should be cleared after failure")
	}
	if len(nav.routes) != 0 {
		t.Errorf("expected no navigation on failure, got %v", nav.routes)
	}
	if upload.State() != StatePreviewReady {
		t.Errorf("expected return to preview_ready, got %s", upload.State())
	}
}

func TestUploadValidationFailure(t *testing.T) {
	gw := &mockGateway{}
	store := state.NewStore()
	upload := NewUpload(validator.NewConfig(), gw, store, &mockNavigator{}, nil, testLogger())

	info := storage.FileInfo{Filename: "notes.txt", ContentType: "text/plain", Size: 10}
	err := upload.HandleFile(context.Background(), info, strings.NewReader("plain text"))

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if validationErr.Reason != "File type not supported" {
		t.Errorf("unexpected reason: %s", validationErr.Reason)
	}

	if gw.analyzeCalls != 0 {
		t.Error("validation failure must not reach the network")
	}
	if store.CurrentAnalysis() != nil {
		t.Error("store must be untouched by a rejected file")
	}
	if store.Loading() {
		t.Error("loading flag must stay clear for rejected files")
	}
	if upload.State() != StateFailed {
		t.Errorf("expected failed state, got %s", upload.State())
	}
	if upload.LocalError() != "File type not supported" {
		t.Errorf("unexpected form-local error: %s", upload.LocalError())
	}
}

func TestUploadMintsIDWhenServiceOmitsIt(t *testing.T) {
	gw := &mockGateway{payload: &gateway.AnalysisPayload{Books: []models.Book{}, People: []models.Person{}}}
	store := state.NewStore()
	upload := NewUpload(validator.NewConfig(), gw, store, &mockNavigator{}, nil, testLogger())

	if err := upload.HandleFile(context.Background(), jpegInfo(), strings.NewReader("bytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.CurrentAnalysis().ID == "" {
		t.Error("expected a minted analysis ID when the service omits one")
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI("image/png", []byte("abc"))
	want := "data:image/png;base64,YWJj"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
