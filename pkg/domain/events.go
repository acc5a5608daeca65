package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommit    EventType = "commit"
	EventUndo      EventType = "undo"
	EventRedo      EventType = "redo"
	EventSave      EventType = "save"
	EventSaveError EventType = "save_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id"`
}

// CommitEvent is emitted after a mutation has been applied and recorded.
type CommitEvent struct {
	EventBase
	PageID string        `json:"page_id"`
	Op     string        `json:"op"`
	Diff   *DocumentDiff `json:"diff,omitempty"`
}

// SaveEvent reports the outcome of one autosave attempt.
type SaveEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Hooks defines callbacks for editor observability.
// All fields are optional.
type Hooks struct {
	OnCommit    func(context.Context, *CommitEvent)
	OnUndo      func(context.Context, *CommitEvent)
	OnRedo      func(context.Context, *CommitEvent)
	OnSave      func(context.Context, *SaveEvent)
	OnSaveError func(context.Context, *SaveEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnCommit:    chain(h.OnCommit, other.OnCommit),
		OnUndo:      chain(h.OnUndo, other.OnUndo),
		OnRedo:      chain(h.OnRedo, other.OnRedo),
		OnSave:      chain(h.OnSave, other.OnSave),
		OnSaveError: chain(h.OnSaveError, other.OnSaveError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
