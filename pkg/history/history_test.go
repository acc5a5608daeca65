package history_test

import (
	"testing"
	"time"

	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestUndoRedo(t *testing.T) {
	h := history.New("a")
	assert.False(t, h.CanUndo())

	h.Commit("b")
	h.Commit("c")

	got, ok := h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	assert.True(t, h.CanRedo())

	got, ok = h.Redo()
	assert.True(t, ok)
	assert.Equal(t, "c", got)

	h.Undo()
	h.Undo()
	got, ok = h.Undo()
	assert.False(t, ok, "past exhausted")
	assert.Equal(t, "a", got)

	h.Commit("z")
	assert.False(t, h.CanRedo(), "commit clears the future")
	assert.Equal(t, "z", h.Present())
}

func TestRedoWithoutFuture(t *testing.T) {
	h := history.New(1)
	got, ok := h.Redo()
	assert.False(t, ok)
	assert.Equal(t, 1, got)
}

func TestDepthBound(t *testing.T) {
	h := history.New(0, history.WithDepth(3))
	for i := 1; i <= 10; i++ {
		h.Commit(i)
	}
	past, _ := h.Len()
	assert.Equal(t, 3, past)

	var last int
	for h.CanUndo() {
		last, _ = h.Undo()
	}
	assert.Equal(t, 7, last)
}

func TestCoalesce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := history.New("", history.WithClock(clock.now), history.WithWindow(time.Second))

	for _, s := range []string{"h", "he", "hel", "hell", "hello"} {
		h.Coalesce("block-1/content.text", s)
		clock.advance(200 * time.Millisecond)
	}
	past, _ := h.Len()
	assert.Equal(t, 1, past, "keystrokes collapse into one entry")
	assert.Equal(t, "hello", h.Present())

	got, _ := h.Undo()
	assert.Equal(t, "", got)
	h.Redo()

	t.Run("window expiry starts a new entry", func(t *testing.T) {
		clock.advance(2 * time.Second)
		h.Coalesce("block-1/content.text", "hello!")
		past, _ := h.Len()
		assert.Equal(t, 2, past)
	})

	t.Run("seal starts a new entry", func(t *testing.T) {
		h.Seal()
		h.Coalesce("block-1/content.text", "hello!!")
		past, _ := h.Len()
		assert.Equal(t, 3, past)
	})

	t.Run("different key starts a new entry", func(t *testing.T) {
		h.Coalesce("block-2/styles.color", "x")
		past, _ := h.Len()
		assert.Equal(t, 4, past)
	})

	t.Run("commit closes the group", func(t *testing.T) {
		h.Commit("structural")
		h.Coalesce("block-2/styles.color", "y")
		past, _ := h.Len()
		assert.Equal(t, 6, past)
	})
}

func TestReset(t *testing.T) {
	h := history.New("a")
	h.Commit("b")
	h.Reset("fresh")
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, "fresh", h.Present())
}
