package layout_test

import (
	"testing"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xs(t *testing.T, patches map[domain.BlockID]layout.Patch) map[domain.BlockID]float64 {
	t.Helper()
	out := map[domain.BlockID]float64{}
	for id, p := range patches {
		require.NotNil(t, p.X, "block %d", id)
		assert.Nil(t, p.Y)
		out[id] = *p.X
	}
	return out
}

func TestAlign(t *testing.T) {
	rects := []layout.Rect{
		{ID: 1, X: 10, Y: 0, Width: 50, Height: 20},
		{ID: 2, X: 30, Y: 40, Width: 20, Height: 10},
	}

	t.Run("left", func(t *testing.T) {
		assert.Equal(t, map[domain.BlockID]float64{1: 10, 2: 10}, xs(t, layout.Align(rects, layout.EdgeLeft)))
	})
	t.Run("right", func(t *testing.T) {
		assert.Equal(t, map[domain.BlockID]float64{1: 10, 2: 40}, xs(t, layout.Align(rects, layout.EdgeRight)))
	})
	t.Run("center", func(t *testing.T) {
		assert.Equal(t, map[domain.BlockID]float64{1: 10, 2: 25}, xs(t, layout.Align(rects, layout.EdgeCenter)))
	})
	t.Run("bottom", func(t *testing.T) {
		got := layout.Align(rects, layout.EdgeBottom)
		assert.Equal(t, 30.0, *got[1].Y)
		assert.Equal(t, 40.0, *got[2].Y)
		assert.Nil(t, got[1].X)
	})
	t.Run("middle", func(t *testing.T) {
		got := layout.Align(rects, layout.EdgeMiddle)
		assert.Equal(t, 15.0, *got[1].Y)
		assert.Equal(t, 20.0, *got[2].Y)
	})
	t.Run("single block", func(t *testing.T) {
		assert.Empty(t, layout.Align(rects[:1], layout.EdgeLeft))
	})
	t.Run("unknown edge", func(t *testing.T) {
		assert.Empty(t, layout.Align(rects, "diagonal"))
	})
}

func TestDistribute(t *testing.T) {
	rects := []layout.Rect{
		{ID: 3, X: 100, Width: 20, Y: 50, Height: 10},
		{ID: 1, X: 0, Width: 10, Y: 0, Height: 10},
		{ID: 2, X: 15, Width: 30, Y: 30, Height: 10},
	}

	// span 0..120, sizes 60, gap (120-60)/2 = 30
	want := map[domain.BlockID]float64{1: 0, 2: 40, 3: 100}
	assert.Equal(t, want, xs(t, layout.Distribute(rects, layout.AxisHorizontal)))
	assert.Equal(t, want, xs(t, layout.Distribute(rects, layout.AxisSpacing)))

	vert := layout.Distribute(rects, layout.AxisVertical)
	assert.Equal(t, 0.0, *vert[1].Y)
	assert.Equal(t, 25.0, *vert[2].Y)
	assert.Equal(t, 50.0, *vert[3].Y)

	assert.Empty(t, layout.Distribute(rects[:2], layout.AxisHorizontal))
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, 20.0, layout.SnapToGrid(17, 10))
	assert.Equal(t, 10.0, layout.SnapToGrid(14.9, 10))
	assert.Equal(t, 0.0, layout.SnapToGrid(-4, 10))
	assert.Equal(t, 20.0, layout.SnapToGrid(10, 20), "halves round up")
	assert.Equal(t, 0.0, layout.SnapToGrid(-10, 20), "negative halves round toward +inf")
	assert.Equal(t, -20.0, layout.SnapToGrid(-11, 20))
	assert.Equal(t, 7.5, layout.SnapToGrid(7.5, 0))
}

func TestSnapToObject(t *testing.T) {
	assert.Equal(t, 12.0, layout.SnapToObject(10, []float64{12, 10.5}, 5), "first in list wins, not closest")
	assert.Equal(t, 10.0, layout.SnapToObject(10, []float64{15, 30}, 5), "threshold is strict")
	assert.Equal(t, 10.0, layout.SnapToObject(10, nil, layout.DefaultSnapThreshold))
}

func TestBoundsAndSnapPoints(t *testing.T) {
	rects := []layout.Rect{
		{ID: 1, X: 10, Y: 5, Width: 20, Height: 10},
		{ID: 2, X: -5, Y: 20, Width: 10, Height: 30},
	}
	assert.Equal(t, layout.Rect{X: -5, Y: 5, Width: 35, Height: 45}, layout.Bounds(rects))
	assert.Equal(t, layout.Rect{}, layout.Bounds(nil))

	x, y := layout.SnapPoints(rects, 1)
	assert.Equal(t, []float64{-5, 0, 5}, x)
	assert.Equal(t, []float64{20, 35, 50}, y)
}

func TestPatchStyles(t *testing.T) {
	x, y := 12.5, 40.0
	assert.Nil(t, layout.Patch{}.Styles())
	assert.Equal(t, domain.StyleMap{"position": "absolute", "left": "12.5px"}, layout.Patch{X: &x}.Styles())
	assert.Equal(t, domain.StyleMap{"position": "absolute", "left": "12.5px", "top": "40px"}, layout.Patch{X: &x, Y: &y}.Styles())
}
