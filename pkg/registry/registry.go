// Package registry maps command names to editor operations. Socket clients
// and other message-based transports dispatch through it by name.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
)

// ErrUnknownCommand is returned by Execute for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// CommandFunc runs one command against an editor session.
// It receives the decoded arguments of the message and returns a JSON-ready result.
type CommandFunc func(ctx context.Context, sess *editor.Session, args map[string]any) (any, error)

// Registry manages the available commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandFunc),
	}
}

// Register adds a command to the registry.
// If a command with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = fn
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute looks up a command by name and runs it.
// Returns ErrUnknownCommand if the command is not found.
func (r *Registry) Execute(ctx context.Context, name string, sess *editor.Session, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.commands[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return fn(ctx, sess, args)
}

// Changed is the result of commands that report whether the document moved.
type Changed struct {
	Changed bool `json:"changed"`
}

// Default returns a registry with the editor commands socket clients use:
// state, undo, redo, save, select, select_page and delete.
func Default() *Registry {
	r := NewRegistry()
	r.Register("state", func(_ context.Context, sess *editor.Session, _ map[string]any) (any, error) {
		return sess.State(), nil
	})
	r.Register("undo", func(_ context.Context, sess *editor.Session, _ map[string]any) (any, error) {
		return Changed{Changed: sess.Undo()}, nil
	})
	r.Register("redo", func(_ context.Context, sess *editor.Session, _ map[string]any) (any, error) {
		return Changed{Changed: sess.Redo()}, nil
	})
	r.Register("save", func(ctx context.Context, sess *editor.Session, _ map[string]any) (any, error) {
		if err := sess.Save(ctx); err != nil {
			return nil, err
		}
		return sess.SaveStatus(), nil
	})
	r.Register("select", func(_ context.Context, sess *editor.Session, args map[string]any) (any, error) {
		var in struct {
			IDs    []domain.BlockID `mapstructure:"ids"`
			Toggle bool             `mapstructure:"toggle"`
		}
		if err := decode(args, &in); err != nil {
			return nil, err
		}
		if len(in.IDs) == 0 {
			sess.ClearSelection()
		}
		for i, id := range in.IDs {
			sess.Select(id, in.Toggle || i > 0)
		}
		primary, selected := sess.Selection()
		return map[string]any{"primary": primary, "selected": selected}, nil
	})
	r.Register("select_page", func(_ context.Context, sess *editor.Session, args map[string]any) (any, error) {
		var in struct {
			PageID string `mapstructure:"pageId"`
		}
		if err := decode(args, &in); err != nil {
			return nil, err
		}
		if err := sess.SelectPage(in.PageID); err != nil {
			return nil, err
		}
		return sess.State(), nil
	})
	r.Register("delete", func(_ context.Context, sess *editor.Session, args map[string]any) (any, error) {
		var in struct {
			ID domain.BlockID `mapstructure:"id"`
		}
		if err := decode(args, &in); err != nil {
			return nil, err
		}
		return Changed{Changed: sess.Delete(in.ID)}, nil
	})
	return r
}

func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
