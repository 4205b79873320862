package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/pronob/libvision/internal/database"
	"github.com/pronob/libvision/internal/gateway"
	"github.com/pronob/libvision/internal/report"
	"github.com/pronob/libvision/internal/state"
	"github.com/pronob/libvision/internal/storage"
	"github.com/pronob/libvision/internal/workflow"
)

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// App wires the session store and the two workflows to HTTP. One App
// serves one session: the store is created at startup and torn down with
// the process.
type App struct {
	Store         *state.Store
	Upload        *workflow.Upload
	Query         *workflow.Query
	Storage       storage.Storage
	HistoryRepo   *database.HistoryRepository
	AnalysisRepo  *database.AnalysisRepository
	Navigator     *RouteRecorder
	Preview       *PreviewCache
	MaxUploadSize int64
	Logger        *slog.Logger
}

// WithStore attaches the session store to every request context, so
// downstream consumers can reach it through state.FromContext.
func (app *App) WithStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(state.NewContext(r.Context(), app.Store)))
	})
}

func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	store, err := state.FromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Single-flight per form: the client disables its controls while the
	// loading flag is set; reject anything that slips through anyway.
	if store.Loading() {
		app.renderError(w, http.StatusConflict, "Analysis already in progress")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.renderError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		app.renderError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	info := storage.FileInfo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	if err := app.Upload.HandleFile(r.Context(), info, file); err != nil {
		var validationErr *workflow.ValidationError
		var apiErr *gateway.APIError
		switch {
		case errors.As(err, &validationErr):
			app.renderError(w, http.StatusBadRequest, validationErr.Reason)
		case errors.As(err, &apiErr):
			app.renderError(w, http.StatusBadGateway, apiErr.Message)
		default:
			app.renderError(w, http.StatusInternalServerError, "Upload failed")
		}
		return
	}

	analysis := store.CurrentAnalysis()

	// Keep the original media and a summary row so the activity view can
	// list past analyses after the session state is replaced.
	if _, err := file.Seek(0, 0); err == nil {
		if filename, err := app.Storage.SaveFile(file, info); err != nil {
			app.Logger.Warn("failed to persist media", "error", err)
		} else if app.AnalysisRepo != nil && analysis != nil {
			record := database.AnalysisRecord{
				ID:            analysis.ID,
				MediaFilename: filename,
				MediaType:     analysis.MediaType,
				BookCount:     len(analysis.Books),
				PeopleCount:   len(analysis.People),
			}
			if err := app.AnalysisRepo.InsertAnalysis(r.Context(), record); err != nil {
				app.Logger.Warn("failed to record analysis", "error", err)
			}
		}
	}

	if route, ok := app.Navigator.Consume(); ok {
		w.Header().Set("HX-Redirect", "/"+route)
	}
	app.renderSuccess(w, "Analysis complete")
}

func (app *App) QueryHandler(w http.ResponseWriter, r *http.Request) {
	store, err := state.FromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	analysis := store.CurrentAnalysis()
	if analysis == nil {
		app.renderError(w, http.StatusBadRequest, "No analysis to query")
		return
	}

	query := r.FormValue("query")

	// The workflow has already surfaced any failure in the transcript and
	// the error slot, so the response is the updated state either way.
	_ = app.Query.Send(r.Context(), query, analysis.ID)

	app.writeJSON(w, map[string]any{
		"chatHistory": store.ChatHistory(),
		"error":       store.Err(),
	})
}

func (app *App) ClearChatHandler(w http.ResponseWriter, r *http.Request) {
	store, err := state.FromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	store.ClearChat()
	app.renderSuccess(w, "Chat cleared")
}

func (app *App) StateHandler(w http.ResponseWriter, r *http.Request) {
	store, err := state.FromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	app.writeJSON(w, map[string]any{
		"currentAnalysis": store.CurrentAnalysis(),
		"chatHistory":     store.ChatHistory(),
		"isLoading":       store.Loading(),
		"error":           store.Err(),
	})
}

func (app *App) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	mediaURL, mediaType, ok := app.Preview.Current()
	if !ok {
		http.NotFound(w, r)
		return
	}

	app.writeJSON(w, map[string]any{
		"mediaUrl":  mediaURL,
		"mediaType": mediaType,
	})
}

func (app *App) ReportHandler(w http.ResponseWriter, r *http.Request) {
	store, err := state.FromContext(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	analysis := store.CurrentAnalysis()
	if analysis == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis-report.txt"`)
	w.Write([]byte(report.Generate(analysis)))
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if app.HistoryRepo == nil {
		http.NotFound(w, r)
		return
	}

	records, err := app.HistoryRepo.ListRecent(r.Context(), 20)
	if err != nil {
		http.Error(w, "Error loading query history", http.StatusInternalServerError)
		return
	}

	app.writeJSON(w, map[string]any{"queries": records})
}

func (app *App) RecentAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if app.AnalysisRepo == nil {
		http.NotFound(w, r)
		return
	}

	records, err := app.AnalysisRepo.ListRecent(r.Context(), 20)
	if err != nil {
		http.Error(w, "Error loading analyses", http.StatusInternalServerError)
		return
	}

	app.writeJSON(w, map[string]any{"analyses": records})
}

func (app *App) MediaHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		http.NotFound(w, r)
		return
	}

	file, err := app.Storage.OpenFile(filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.(interface{ Stat() (os.FileInfo, error) }).Stat()
	if err != nil {
		http.Error(w, "Error accessing media file", http.StatusInternalServerError)
		return
	}

	// ServeContent handles Range requests, so video seeking works.
	http.ServeContent(w, r, filename, stat.ModTime(), file)
}

func (app *App) renderError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="alert alert-error">%s</div>`, template.HTMLEscapeString(message))
}

func (app *App) renderSuccess(w http.ResponseWriter, message string) {
	fmt.Fprintf(w, `<div class="alert alert-success">%s</div>`, template.HTMLEscapeString(message))
}

func (app *App) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}
