package canvas

import "strings"

// Action is an editor command bound to a key chord.
type Action string

const (
	ActionNone      Action = ""
	ActionCopy      Action = "copy"
	ActionPaste     Action = "paste"
	ActionDuplicate Action = "duplicate"
	ActionUndo      Action = "undo"
	ActionRedo      Action = "redo"
	ActionDelete    Action = "delete"
	ActionDeselect  Action = "deselect"
	ActionSelectAll Action = "select_all"
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
)

// KeyEvent is a key press with its modifiers. Key follows DOM KeyboardEvent.key.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

// Shortcut maps a key event to an action. Ctrl and Cmd are interchangeable.
func Shortcut(ev KeyEvent) Action {
	mod := ev.Ctrl || ev.Meta
	key := ev.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}

	switch {
	case mod && key == "c":
		return ActionCopy
	case mod && key == "v":
		return ActionPaste
	case mod && key == "d":
		return ActionDuplicate
	case mod && key == "z" && ev.Shift, mod && key == "y":
		return ActionRedo
	case mod && key == "z":
		return ActionUndo
	case mod && key == "a":
		return ActionSelectAll
	case key == "Delete", key == "Backspace":
		return ActionDelete
	case key == "Escape":
		return ActionDeselect
	case ev.Alt && key == "ArrowUp":
		return ActionMoveUp
	case ev.Alt && key == "ArrowDown":
		return ActionMoveDown
	}
	return ActionNone
}
