package ports

import "context"

// Watchable is implemented by sources that can notify about backend changes,
// such as a catalog file edited on disk.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying data changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
