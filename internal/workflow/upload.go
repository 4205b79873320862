// Package workflow orchestrates the upload-analyze-navigate flow and the
// chat query flow. Each invocation is an ordered sequence of awaited
// steps: validate, preview, submit, commit.
package workflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pronob/libvision/internal/gateway"
	"github.com/pronob/libvision/internal/models"
	"github.com/pronob/libvision/internal/state"
	"github.com/pronob/libvision/internal/storage"
	"github.com/pronob/libvision/internal/validator"
)

type UploadState int

const (
	StateIdle UploadState = iota
	StateValidating
	StatePreviewReady
	StateAnalyzing
	StateResultReady
	StateFailed
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StatePreviewReady:
		return "preview_ready"
	case StateAnalyzing:
		return "analyzing"
	case StateResultReady:
		return "result_ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gateway is the slice of the remote service the workflows need.
type Gateway interface {
	AnalyzeMedia(ctx context.Context, mediaURL string, mediaType models.MediaType) (*gateway.AnalysisPayload, error)
	AskQuery(ctx context.Context, query, analysisID string) (*gateway.QueryResult, error)
}

// Navigator moves the user to a named view. The upload workflow calls it
// exactly once per successful analysis.
type Navigator interface {
	NavigateTo(route string)
}

// PreviewSink receives the local media reference as soon as validation
// passes, before the remote call, so the user sees their media while the
// analysis is pending. Implementations must not block.
type PreviewSink interface {
	ShowPreview(mediaURL string, mediaType models.MediaType)
}

// ValidationError is raised before any network call and never leaves the
// upload form: the user corrects the input and tries again.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Upload drives one upload form. Only one analysis may be in flight per
// instance; the view disables its file affordances while the store's
// loading flag is set rather than queueing submissions.
type Upload struct {
	cfg       validator.Config
	gateway   Gateway
	store     *state.Store
	navigator Navigator
	preview   PreviewSink
	logger    *slog.Logger

	mu        sync.Mutex
	formState UploadState
	localErr  string
}

func NewUpload(cfg validator.Config, gw Gateway, store *state.Store, nav Navigator, preview PreviewSink, logger *slog.Logger) *Upload {
	if logger == nil {
		logger = slog.Default()
	}
	return &Upload{
		cfg:       cfg,
		gateway:   gw,
		store:     store,
		navigator: nav,
		preview:   preview,
		logger:    logger,
	}
}

func (u *Upload) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.formState
}

// LocalError is the form-local error slot. Validation failures land only
// here; analysis failures land here and in the shared store.
func (u *Upload) LocalError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.localErr
}

// HandleFile runs the full flow for one selected file. On success the
// store holds a fresh AnalysisResult and the navigator has been invoked
// once; on failure the returned error is one of ValidationError or
// gateway.APIError and the flow has already surfaced it.
func (u *Upload) HandleFile(ctx context.Context, info storage.FileInfo, content io.Reader) error {
	u.setState(StateValidating)
	u.setLocalError("")

	if res := validator.Validate(u.cfg, info); !res.Valid {
		u.logger.Info("upload rejected", "filename", info.Filename, "reason", res.Reason)
		u.setLocalError(res.Reason)
		u.setState(StateFailed)
		return &ValidationError{Reason: res.Reason}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		msg := fmt.Sprintf("failed to read file: %v", err)
		u.setLocalError(msg)
		u.setState(StateFailed)
		return fmt.Errorf("failed to read file: %w", err)
	}

	mediaURL := DataURI(info.ContentType, data)
	mediaType := validator.MediaTypeOf(u.cfg, info.ContentType)

	if u.preview != nil {
		u.preview.ShowPreview(mediaURL, mediaType)
	}
	u.setState(StatePreviewReady)

	u.setState(StateAnalyzing)
	u.store.SetLoading(true)

	payload, err := u.gateway.AnalyzeMedia(ctx, mediaURL, mediaType)
	if err != nil {
		u.logger.Error("analysis failed", "filename", info.Filename, "error", err)
		u.setLocalError(err.Error())
		u.store.SetError(err.Error())
		u.store.SetLoading(false)
		u.setState(StatePreviewReady)
		return err
	}

	analysis := &models.AnalysisResult{
		ID:          payload.ID,
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		Books:       payload.Books,
		People:      payload.People,
		RawResponse: payload.Raw,
	}
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}

	u.store.SetCurrentAnalysis(analysis)
	u.store.SetLoading(false)
	u.setState(StateResultReady)

	u.logger.Info("analysis complete",
		"analysis_id", analysis.ID,
		"books", len(analysis.Books),
		"people", len(analysis.People))

	u.navigator.NavigateTo("results")
	return nil
}

func (u *Upload) setState(s UploadState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.formState = s
}

func (u *Upload) setLocalError(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.localErr = msg
}

// DataURI encodes raw media bytes as a displayable local reference.
func DataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
