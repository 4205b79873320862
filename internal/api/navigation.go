package api

import (
	"sync"

	"github.com/pronob/libvision/internal/models"
)

// RouteRecorder implements workflow.Navigator for the HTTP layer: the
// workflow's navigation becomes a pending route that the handler turns
// into a client redirect.
type RouteRecorder struct {
	mu    sync.Mutex
	route string
	set   bool
}

func NewRouteRecorder() *RouteRecorder {
	return &RouteRecorder{}
}

func (r *RouteRecorder) NavigateTo(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
	r.set = true
}

// Consume returns the pending route and clears it, so a navigation is
// acted on at most once.
func (r *RouteRecorder) Consume() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.route, r.set
	r.route, r.set = "", false
	return route, ok
}

// PreviewCache implements workflow.PreviewSink: it holds the most recent
// local media reference so the pending view can show it while the remote
// analysis is still running.
type PreviewCache struct {
	mu        sync.Mutex
	mediaURL  string
	mediaType models.MediaType
	set       bool
}

func NewPreviewCache() *PreviewCache {
	return &PreviewCache{}
}

func (p *PreviewCache) ShowPreview(mediaURL string, mediaType models.MediaType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mediaURL = mediaURL
	p.mediaType = mediaType
	p.set = true
}

func (p *PreviewCache) Current() (string, models.MediaType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mediaURL, p.mediaType, p.set
}
