package canvas

import (
	"math"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/pkg/schedule"
)

// Gesture thresholds.
const (
	DefaultSwipeThreshold = 50.0
	DefaultLongPress      = 500 * time.Millisecond
	DefaultDoubleTap      = 300 * time.Millisecond

	tapMaxDistance   = 10.0
	tapMaxDuration   = 200 * time.Millisecond
	swipeMaxDuration = 300 * time.Millisecond
)

// GestureKind names a recognized touch gesture.
type GestureKind string

const (
	GestureTap        GestureKind = "tap"
	GestureDoubleTap  GestureKind = "double_tap"
	GestureLongPress  GestureKind = "long_press"
	GestureSwipeLeft  GestureKind = "swipe_left"
	GestureSwipeRight GestureKind = "swipe_right"
	GestureSwipeUp    GestureKind = "swipe_up"
	GestureSwipeDown  GestureKind = "swipe_down"
	GesturePinch      GestureKind = "pinch"
)

// Gesture is emitted by a GestureRecognizer. Scale is set for pinches only.
type Gesture struct {
	Kind  GestureKind `json:"kind"`
	Scale float64     `json:"scale,omitempty"`
}

// Point is a touch position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GestureOption configures a GestureRecognizer.
type GestureOption func(*GestureRecognizer)

// WithSwipeThreshold sets the minimum swipe distance in pixels.
func WithSwipeThreshold(px float64) GestureOption {
	return func(g *GestureRecognizer) { g.threshold = px }
}

// WithLongPress sets the hold duration of a long press.
func WithLongPress(d time.Duration) GestureOption {
	return func(g *GestureRecognizer) { g.longPress = d }
}

// WithDoubleTap sets the maximum delay between the taps of a double tap.
func WithDoubleTap(d time.Duration) GestureOption {
	return func(g *GestureRecognizer) { g.doubleTap = d }
}

// WithGestureScheduler replaces the wall clock.
func WithGestureScheduler(s schedule.Scheduler) GestureOption {
	return func(g *GestureRecognizer) { g.sched = s }
}

// GestureRecognizer turns raw touch start/move/end events into gestures.
// Long presses fire from the scheduler; everything else fires synchronously
// from Move or End.
type GestureRecognizer struct {
	emit      func(Gesture)
	sched     schedule.Scheduler
	threshold float64
	longPress time.Duration
	doubleTap time.Duration

	mu        sync.Mutex
	start     *Point
	startAt   time.Time
	lastTap   time.Time
	pinchFrom float64
	hold      schedule.Timer
}

// NewGestureRecognizer creates a recognizer that reports gestures to emit.
func NewGestureRecognizer(emit func(Gesture), opts ...GestureOption) *GestureRecognizer {
	g := &GestureRecognizer{
		emit:      emit,
		sched:     schedule.System{},
		threshold: DefaultSwipeThreshold,
		longPress: DefaultLongPress,
		doubleTap: DefaultDoubleTap,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start handles a touch start with the current touches.
func (g *GestureRecognizer) Start(touches []Point) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch len(touches) {
	case 1:
		p := touches[0]
		g.start = &p
		g.startAt = g.sched.Now()
		g.cancelHold()
		g.hold = g.sched.AfterFunc(g.longPress, func() {
			g.mu.Lock()
			held := g.hold != nil
			g.hold = nil
			g.mu.Unlock()
			if held {
				g.emit(Gesture{Kind: GestureLongPress})
			}
		})
	case 2:
		g.pinchFrom = distance(touches[0], touches[1])
	}
}

// Move handles a touch move. Any movement cancels a pending long press.
func (g *GestureRecognizer) Move(touches []Point) {
	g.mu.Lock()
	g.cancelHold()
	var out *Gesture
	if len(touches) == 2 && g.pinchFrom > 0 {
		out = &Gesture{Kind: GesturePinch, Scale: distance(touches[0], touches[1]) / g.pinchFrom}
	}
	g.mu.Unlock()

	if out != nil {
		g.emit(*out)
	}
}

// End handles a touch end. changed holds the lifted touches and remaining the
// number of touches still down.
func (g *GestureRecognizer) End(changed []Point, remaining int) {
	g.mu.Lock()
	g.cancelHold()
	var out *Gesture
	if len(changed) == 1 && g.start != nil {
		out = g.classify(*g.start, changed[0], g.sched.Now().Sub(g.startAt))
		g.start = nil
	}
	if remaining == 0 {
		g.pinchFrom = 0
	}
	g.mu.Unlock()

	if out != nil {
		g.emit(*out)
	}
}

func (g *GestureRecognizer) classify(from, to Point, took time.Duration) *Gesture {
	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)

	switch {
	case dist < tapMaxDistance && took < tapMaxDuration:
		now := g.sched.Now()
		if !g.lastTap.IsZero() && now.Sub(g.lastTap) < g.doubleTap {
			g.lastTap = time.Time{}
			return &Gesture{Kind: GestureDoubleTap}
		}
		g.lastTap = now
		return &Gesture{Kind: GestureTap}
	case dist > g.threshold && took < swipeMaxDuration:
		if math.Abs(dx) > math.Abs(dy) {
			if dx > 0 {
				return &Gesture{Kind: GestureSwipeRight}
			}
			return &Gesture{Kind: GestureSwipeLeft}
		}
		if dy > 0 {
			return &Gesture{Kind: GestureSwipeDown}
		}
		return &Gesture{Kind: GestureSwipeUp}
	}
	return nil
}

func (g *GestureRecognizer) cancelHold() {
	if g.hold != nil {
		g.hold.Stop()
		g.hold = nil
	}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PanelState tracks the side panels of the mobile editor.
type PanelState struct {
	LeftOpen  bool `json:"leftOpen"`
	RightOpen bool `json:"rightOpen"`
}

// Apply binds swipes to panels: a right swipe opens the left panel, a left
// swipe closes whichever panels are open. It reports whether anything changed.
// Long press and double tap have no panel binding.
func (p *PanelState) Apply(g Gesture) bool {
	switch g.Kind {
	case GestureSwipeRight:
		if !p.LeftOpen {
			p.LeftOpen = true
			return true
		}
	case GestureSwipeLeft:
		changed := p.LeftOpen || p.RightOpen
		p.LeftOpen, p.RightOpen = false, false
		return changed
	}
	return false
}
