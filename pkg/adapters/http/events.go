package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Event is the JSON payload pushed to stream subscribers.
type Event struct {
	Type      domain.EventType     `json:"type"`
	ProjectID string               `json:"projectId"`
	PageID    string               `json:"pageId,omitempty"`
	Op        string               `json:"op,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Diff      *domain.DocumentDiff `json:"diff,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// StreamManager fans editor events out to the subscribers of each project.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- []byte]struct{} // project id -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for projectID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(projectID string) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, 16)
	if _, ok := sm.subscribers[projectID]; !ok {
		sm.subscribers[projectID] = make(map[chan<- []byte]struct{})
	}
	sm.subscribers[projectID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[projectID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, projectID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of listeners of projectID.
func (sm *StreamManager) Subscribers(projectID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[projectID])
}

// Broadcast delivers msg to every subscriber of projectID. Slow clients drop messages.
func (sm *StreamManager) Broadcast(projectID string, msg []byte) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[projectID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("stream buffer full, dropping event", "project_id", projectID)
		}
	}
}

// Publish encodes ev and broadcasts it to its project.
func (sm *StreamManager) Publish(ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		sm.logger.Error("encode event", "err", err)
		return
	}
	sm.Broadcast(ev.ProjectID, raw)
}

// Hooks returns editor hooks that publish every commit, undo, redo and save.
func (sm *StreamManager) Hooks() domain.Hooks {
	commit := func(_ context.Context, e *domain.CommitEvent) {
		sm.Publish(Event{
			Type:      e.Type,
			ProjectID: e.ProjectID,
			PageID:    e.PageID,
			Op:        e.Op,
			Timestamp: e.Timestamp,
			Diff:      e.Diff,
		})
	}
	save := func(_ context.Context, e *domain.SaveEvent) {
		ev := Event{Type: e.Type, ProjectID: e.ProjectID, Timestamp: e.Timestamp}
		if e.Err != nil {
			ev.Error = e.Err.Error()
		}
		sm.Publish(ev)
	}
	return domain.Hooks{
		OnCommit:    commit,
		OnUndo:      commit,
		OnRedo:      commit,
		OnSave:      save,
		OnSaveError: save,
	}
}

// SubscribeEvents handles GET /projects/{projectID}/events as server-sent
// events. The optional types query parameter filters by event type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	projectID := chi.URLParam(r, "projectID")
	filter := typeFilter(r.URL.Query().Get("types"))

	ch, cancel := s.streams.Subscribe(projectID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "project_id", projectID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !filter(msg) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func typeFilter(param string) func([]byte) bool {
	if param == "" {
		return func([]byte) bool { return true }
	}
	want := map[domain.EventType]bool{}
	for _, t := range strings.Split(param, ",") {
		want[domain.EventType(strings.TrimSpace(t))] = true
	}
	return func(msg []byte) bool {
		var ev struct {
			Type domain.EventType `json:"type"`
		}
		return json.Unmarshal(msg, &ev) == nil && want[ev.Type]
	}
}
