package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.WithStore)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", app.UploadHandler)
		r.Post("/query", app.QueryHandler)
		r.Post("/chat/clear", app.ClearChatHandler)
		r.Get("/state", app.StateHandler)
		r.Get("/preview", app.PreviewHandler)
		r.Get("/report", app.ReportHandler)
		r.Get("/history", app.HistoryHandler)
		r.Get("/analyses", app.RecentAnalysesHandler)
		r.Get("/media/{filename}", app.MediaHandler)
	})

	return r
}
