// Package layout provides pure geometry over block bounds reported by the
// render layer: alignment, distribution and snapping.
package layout

import (
	"math"
	"sort"
	"strconv"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// DefaultSnapThreshold is the distance under which SnapToObject attaches.
const DefaultSnapThreshold = 5.0

// Rect is the measured box of a rendered block relative to its container.
type Rect struct {
	ID     domain.BlockID `json:"id"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Patch is a target position for one block. Nil coordinates are unchanged.
type Patch struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Edge selects an alignment target.
type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeCenter Edge = "center"
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeMiddle Edge = "middle"
)

// Axis selects a distribution mode.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
	// AxisSpacing equalizes horizontal gaps. It computes the same result as
	// AxisHorizontal.
	AxisSpacing Axis = "spacing"
)

// Align returns a position patch per block so that all blocks share the
// chosen edge. Fewer than two blocks, or an unknown edge, yields an empty map.
func Align(rects []Rect, edge Edge) map[domain.BlockID]Patch {
	out := map[domain.BlockID]Patch{}
	if len(rects) < 2 {
		return out
	}
	box := Bounds(rects)

	for _, r := range rects {
		switch edge {
		case EdgeLeft:
			out[r.ID] = Patch{X: ptr(box.X)}
		case EdgeRight:
			out[r.ID] = Patch{X: ptr(box.Right() - r.Width)}
		case EdgeCenter:
			out[r.ID] = Patch{X: ptr((box.X+box.Right())/2 - r.Width/2)}
		case EdgeTop:
			out[r.ID] = Patch{Y: ptr(box.Y)}
		case EdgeBottom:
			out[r.ID] = Patch{Y: ptr(box.Bottom() - r.Height)}
		case EdgeMiddle:
			out[r.ID] = Patch{Y: ptr((box.Y+box.Bottom())/2 - r.Height/2)}
		default:
			return map[domain.BlockID]Patch{}
		}
	}
	return out
}

// Distribute spaces blocks evenly along axis, keeping the outermost blocks in
// place. The gap is (span - sum(size)) / (n-1). Fewer than three blocks, or an
// unknown axis, yields an empty map.
func Distribute(rects []Rect, axis Axis) map[domain.BlockID]Patch {
	out := map[domain.BlockID]Patch{}
	if len(rects) < 3 {
		return out
	}

	var lead func(Rect) float64
	var size func(Rect) float64
	var set func(float64) Patch
	switch axis {
	case AxisHorizontal, AxisSpacing:
		lead = func(r Rect) float64 { return r.X }
		size = func(r Rect) float64 { return r.Width }
		set = func(v float64) Patch { return Patch{X: ptr(v)} }
	case AxisVertical:
		lead = func(r Rect) float64 { return r.Y }
		size = func(r Rect) float64 { return r.Height }
		set = func(v float64) Patch { return Patch{Y: ptr(v)} }
	default:
		return out
	}

	sorted := append([]Rect(nil), rects...)
	sort.SliceStable(sorted, func(i, j int) bool { return lead(sorted[i]) < lead(sorted[j]) })

	lo, hi := math.Inf(1), math.Inf(-1)
	total := 0.0
	for _, r := range sorted {
		lo = math.Min(lo, lead(r))
		hi = math.Max(hi, lead(r)+size(r))
		total += size(r)
	}
	gap := (hi - lo - total) / float64(len(sorted)-1)

	cur := lo
	for _, r := range sorted {
		out[r.ID] = set(cur)
		cur += size(r) + gap
	}
	return out
}

// SnapToGrid rounds value to the nearest multiple of gridSize, halves toward
// positive infinity. A non-positive grid size leaves value unchanged.
func SnapToGrid(value, gridSize float64) float64 {
	if gridSize <= 0 {
		return value
	}
	return math.Floor(value/gridSize+0.5) * gridSize
}

// SnapToObject returns the first candidate strictly closer than threshold to
// value, in list order, or value itself.
func SnapToObject(value float64, candidates []float64, threshold float64) float64 {
	for _, c := range candidates {
		if math.Abs(value-c) < threshold {
			return c
		}
	}
	return value
}

// Bounds returns the smallest rect enclosing all rects. The result has no ID.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SnapPoints collects the left, center and right x coordinates and the top,
// middle and bottom y coordinates of every rect except exclude. The result
// feeds SnapToObject while dragging.
func SnapPoints(rects []Rect, exclude domain.BlockID) (xs, ys []float64) {
	for _, r := range rects {
		if r.ID == exclude {
			continue
		}
		xs = append(xs, r.X, r.X+r.Width/2, r.Right())
		ys = append(ys, r.Y, r.Y+r.Height/2, r.Bottom())
	}
	return xs, ys
}

func ptr(v float64) *float64 {
	return &v
}

// Styles converts p into absolute-position style keys ("left"/"top" in px).
// An empty patch yields nil.
func (p Patch) Styles() domain.StyleMap {
	if p.X == nil && p.Y == nil {
		return nil
	}
	out := domain.StyleMap{"position": "absolute"}
	if p.X != nil {
		out["left"] = px(*p.X)
	}
	if p.Y != nil {
		out["top"] = px(*p.Y)
	}
	return out
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "px"
}
