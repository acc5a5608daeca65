package autosave_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/autosave"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls atomic.Int32
	err   error
}

func (c *counter) save(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestDebounce_CollapsesBursts(t *testing.T) {
	sched := testutils.NewManualScheduler()
	cnt := &counter{}
	c := autosave.New(cnt.save, autosave.WithScheduler(sched))
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.Trigger()
		sched.Advance(50 * time.Millisecond)
	}
	assert.Zero(t, cnt.calls.Load())
	assert.True(t, c.GuardUnload())

	sched.Advance(autosave.DefaultDebounce)
	assert.Equal(t, int32(1), cnt.calls.Load())

	st := c.Status()
	assert.False(t, st.HasUnsavedChanges)
	assert.False(t, st.LastSaveTime.IsZero())
	assert.False(t, c.GuardUnload())

	sched.Advance(time.Minute)
	assert.Equal(t, int32(1), cnt.calls.Load(), "nothing left to save")
}

func TestInterval_FloorUnderContinuousEdits(t *testing.T) {
	sched := testutils.NewManualScheduler()
	cnt := &counter{}
	c := autosave.New(cnt.save, autosave.WithScheduler(sched))
	defer c.Close()

	for i := 0; i < 29; i++ {
		c.Trigger()
		sched.Advance(time.Second)
	}
	assert.Zero(t, cnt.calls.Load())

	c.Trigger()
	sched.Advance(time.Second)
	assert.Equal(t, int32(1), cnt.calls.Load(), "interval fired at 30s")
}

func TestSave_AtMostOneInFlight(t *testing.T) {
	sched := testutils.NewManualScheduler()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := autosave.New(func(context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}, autosave.WithScheduler(sched))
	defer c.Close()

	c.Trigger()
	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-started

	assert.True(t, c.Status().IsSaving)
	assert.False(t, c.GuardUnload(), "no prompt while a save is running")

	sched.Advance(autosave.DefaultInterval)
	assert.NoError(t, c.Save(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSave_ChangesDuringFlightAreSavedAfterwards(t *testing.T) {
	sched := testutils.NewManualScheduler()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := autosave.New(func(context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}, autosave.WithScheduler(sched))
	defer c.Close()

	c.Trigger()
	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-started

	c.Trigger()
	sched.Advance(autosave.DefaultDebounce)
	assert.Equal(t, int32(1), calls.Load(), "debounce fired during flight")

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.Status().HasUnsavedChanges)

	sched.Advance(0)
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, c.Status().HasUnsavedChanges)
}

func TestFlush_WaitsForFlightThenSaves(t *testing.T) {
	sched := testutils.NewManualScheduler()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := autosave.New(func(context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}, autosave.WithScheduler(sched), autosave.WithEnabled(false))
	defer c.Close()

	require.NoError(t, c.Flush(context.Background()))
	assert.Zero(t, calls.Load(), "nothing to flush")

	c.Trigger()
	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-started
	c.Trigger()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Flush(canceled), context.Canceled)

	flushed := make(chan error, 1)
	go func() { flushed <- c.Flush(context.Background()) }()
	select {
	case <-flushed:
		t.Fatal("Flush returned while a save was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-flushed)
	assert.Equal(t, int32(2), calls.Load(), "edits made during the flight are saved")
	assert.False(t, c.Status().HasUnsavedChanges)
}

func TestFlush_ReturnsSaveError(t *testing.T) {
	cnt := &counter{err: errors.New("disk full")}
	c := autosave.New(cnt.save, autosave.WithScheduler(testutils.NewManualScheduler()))
	defer c.Close()

	c.Trigger()
	err := c.Flush(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, int32(1), cnt.calls.Load())
	assert.True(t, c.Status().HasUnsavedChanges)
}

func TestSave_FailureKeepsChanges(t *testing.T) {
	sched := testutils.NewManualScheduler()
	cnt := &counter{err: errors.New("disk full")}
	var hooked atomic.Int32
	c := autosave.New(cnt.save,
		autosave.WithScheduler(sched),
		autosave.WithProjectID("p1"),
		autosave.WithHooks(domain.Hooks{
			OnSaveError: func(_ context.Context, ev *domain.SaveEvent) {
				hooked.Add(1)
				assert.Equal(t, domain.EventSaveError, ev.Type)
			},
		}),
	)
	defer c.Close()

	c.Trigger()
	err := c.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "p1", pe.ProjectID)

	st := c.Status()
	assert.True(t, st.HasUnsavedChanges)
	assert.Contains(t, st.LastError, "disk full")
	assert.Equal(t, int32(1), hooked.Load())
}

func TestSetEnabled(t *testing.T) {
	sched := testutils.NewManualScheduler()
	cnt := &counter{}
	c := autosave.New(cnt.save, autosave.WithScheduler(sched))
	defer c.Close()

	c.Trigger()
	c.SetEnabled(false)
	sched.Advance(2 * autosave.DefaultInterval)
	assert.Zero(t, cnt.calls.Load(), "disable cancels pending timers without flushing")
	assert.True(t, c.GuardUnload())

	c.Trigger()
	assert.True(t, c.Status().HasUnsavedChanges)
	sched.Advance(autosave.DefaultDebounce)
	assert.Zero(t, cnt.calls.Load())

	c.SetEnabled(true)
	sched.Advance(autosave.DefaultDebounce)
	assert.Equal(t, int32(1), cnt.calls.Load())
}

func TestClose_StopsTimers(t *testing.T) {
	sched := testutils.NewManualScheduler()
	cnt := &counter{}
	c := autosave.New(cnt.save, autosave.WithScheduler(sched), autosave.WithDebounce(time.Second))
	c.Trigger()
	c.Close()
	sched.Advance(time.Hour)
	assert.Zero(t, cnt.calls.Load())
	c.Close()
}
