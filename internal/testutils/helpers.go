package testutils

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/dsl"
	"github.com/aretw0/pagecraft/pkg/schedule"
	"github.com/stretchr/testify/require"
)

// TempDir returns an absolute temporary directory removed after the test.
func TempDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")
	return abs
}

// SampleProject returns a project with a home page holding a text block and a
// container with one child, and an about page with a single heading.
func SampleProject(name string) *domain.ProjectData {
	p := dsl.NewProject(name)
	p.Home().Add(
		dsl.Text("hello").Name("Intro").Style("color", "red"),
		dsl.Container().Name("Box").Add(
			dsl.Button("Go").Name("CTA"),
		),
	)
	p.Page("about", "About").Add(dsl.Heading("About us"))
	return p.Build()
}

// ManualScheduler is a schedule.Scheduler whose clock only moves on Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Time
	every   time.Duration
	f       func()
	stopped bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// NewManualScheduler starts the clock at a fixed instant.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) schedule.Timer {
	return s.add(d, 0, f)
}

func (s *ManualScheduler) Every(d time.Duration, f func()) schedule.Timer {
	return s.add(d, d, f)
}

func (s *ManualScheduler) add(d, every time.Duration, f func()) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{s: s, at: s.now.Add(d), every: every, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, running due tasks in time order on
// the calling goroutine. Tasks scheduled by a running task are honoured when
// they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	for {
		var next *manualTask
		for _, t := range s.tasks {
			if t.stopped || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.stopped = true
		}
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of tasks that may still run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
