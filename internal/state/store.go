// Package state holds the session's single source of truth: the current
// analysis, the chat transcript, and the loading/error flags every view
// reads from.
package state

import (
	"sync"

	"github.com/pronob/libvision/internal/models"
)

// Store is safe for concurrent use. The current analysis is replaced
// wholesale on every write and chat history is append-only; there are no
// merge or patch semantics anywhere. The loading and error flags are
// independent of the rest of the state; callers keep them consistent with
// their in-flight operations.
type Store struct {
	mu              sync.RWMutex
	currentAnalysis *models.AnalysisResult
	chatHistory     []models.ChatMessage
	isLoading       bool
	lastError       string
}

func NewStore() *Store {
	return &Store{}
}

// SetCurrentAnalysis replaces the current analysis. Passing nil clears it.
func (s *Store) SetCurrentAnalysis(analysis *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if analysis == nil {
		s.currentAnalysis = nil
		return
	}
	clone := cloneAnalysis(analysis)
	s.currentAnalysis = &clone
}

// CurrentAnalysis returns a copy of the current analysis, or nil when no
// analysis has completed yet. Mutating the copy does not affect the store.
func (s *Store) CurrentAnalysis() *models.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentAnalysis == nil {
		return nil
	}
	clone := cloneAnalysis(s.currentAnalysis)
	return &clone
}

// AddChatMessage appends to the transcript. Messages are never reordered
// or deduplicated.
func (s *Store) AddChatMessage(message models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatHistory = append(s.chatHistory, message)
}

// ChatHistory returns a copy of the transcript, oldest first.
func (s *Store) ChatHistory() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]models.ChatMessage, len(s.chatHistory))
	copy(history, s.chatHistory)
	return history
}

// ClearChat empties the transcript. The current analysis is untouched.
func (s *Store) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatHistory = nil
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = loading
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// SetError records the last user-visible error message. An empty string
// clears it.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func cloneAnalysis(a *models.AnalysisResult) models.AnalysisResult {
	clone := *a
	clone.Books = make([]models.Book, len(a.Books))
	copy(clone.Books, a.Books)
	clone.People = make([]models.Person, len(a.People))
	copy(clone.People, a.People)
	if a.RawResponse != nil {
		clone.RawResponse = make([]byte, len(a.RawResponse))
		copy(clone.RawResponse, a.RawResponse)
	}
	return clone
}
