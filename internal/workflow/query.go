package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pronob/libvision/internal/models"
	"github.com/pronob/libvision/internal/state"
)

// HistoryRecorder persists answered queries. Recording is best-effort and
// never affects the transcript.
type HistoryRecorder interface {
	RecordQuery(ctx context.Context, analysisID, query, answer string, took time.Duration) error
}

// Query drives the chat interface against one analysis. The user message
// is committed locally before the remote call and is never rolled back;
// a failed call appends an error message on top of it instead.
type Query struct {
	gateway Gateway
	store   *state.Store
	history HistoryRecorder
	logger  *slog.Logger
}

func NewQuery(gw Gateway, store *state.Store, history HistoryRecorder, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		gateway: gw,
		store:   store,
		history: history,
		logger:  logger,
	}
}

// Send submits one question. Empty or whitespace-only input is a no-op
// with no state change. On failure the error message is surfaced twice:
// in the shared error slot and as an assistant message in the transcript.
func (q *Query) Send(ctx context.Context, input, analysisID string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	q.store.AddChatMessage(models.NewChatMessage(models.RoleUser, input))
	q.store.SetError("")
	q.store.SetLoading(true)
	defer q.store.SetLoading(false)

	started := time.Now()
	result, err := q.gateway.AskQuery(ctx, input, analysisID)
	if err != nil {
		q.logger.Error("query failed", "analysis_id", analysisID, "error", err)
		q.store.SetError(err.Error())
		q.store.AddChatMessage(models.NewChatMessage(models.RoleAssistant, "Error: "+err.Error()))
		return err
	}

	answer := result.Answer
	if answer == "" {
		answer = "No response received"
	}
	q.store.AddChatMessage(models.NewChatMessage(models.RoleAssistant, answer))

	if q.history != nil {
		if err := q.history.RecordQuery(ctx, analysisID, input, answer, time.Since(started)); err != nil {
			q.logger.Warn("failed to record query history", "error", err)
		}
	}

	return nil
}
