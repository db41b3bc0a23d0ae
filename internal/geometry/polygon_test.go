package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() Polygon {
	return Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}

func TestArea(t *testing.T) {
	t.Run("unit square", func(t *testing.T) {
		assert.InDelta(t, 1.0, unitSquare().Area(), 1e-9)
	})

	t.Run("clockwise winding gives same area", func(t *testing.T) {
		cw := Polygon{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
		assert.InDelta(t, 1.0, cw.Area(), 1e-9)
	})

	t.Run("degenerate rings", func(t *testing.T) {
		assert.Zero(t, Polygon(nil).Area())
		assert.Zero(t, Polygon{{X: 1, Y: 1}, {X: 2, Y: 2}}.Area())
		// three identical vertices
		assert.Zero(t, Polygon{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}.Area())
	})
}

func TestFromBBox(t *testing.T) {
	t.Run("normal corners", func(t *testing.T) {
		p := FromBBox(0.1, 0.2, 0.5, 0.6)
		assert.InDelta(t, 0.16, p.Area(), 1e-9)
	})

	t.Run("reversed corners are normalized", func(t *testing.T) {
		a := FromBBox(0.5, 0.6, 0.1, 0.2)
		b := FromBBox(0.1, 0.2, 0.5, 0.6)
		assert.InDelta(t, b.Area(), a.Area(), 1e-12)
		assert.InDelta(t, 1.0, IoU(a, b), 1e-9)
	})
}

func TestIoU(t *testing.T) {
	t.Run("identical polygon is 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, IoU(unitSquare(), unitSquare()), 1e-9)
	})

	t.Run("symmetry", func(t *testing.T) {
		a := FromBBox(0, 0, 1, 1)
		b := FromBBox(0.5, 0.5, 1.5, 1.5)
		assert.InDelta(t, IoU(a, b), IoU(b, a), 1e-12)
	})

	t.Run("disjoint is 0", func(t *testing.T) {
		a := FromBBox(0, 0, 1, 1)
		b := FromBBox(2, 2, 3, 3)
		assert.Zero(t, IoU(a, b))
	})

	t.Run("half overlap", func(t *testing.T) {
		a := FromBBox(0, 0, 1, 1)
		b := FromBBox(0.5, 0, 1.5, 1)
		// intersection 0.5, union 1.5
		assert.InDelta(t, 1.0/3.0, IoU(a, b), 1e-9)
	})

	t.Run("degenerate input never fails", func(t *testing.T) {
		zero := Polygon{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
		assert.Zero(t, IoU(zero, unitSquare()))
		assert.Zero(t, IoU(unitSquare(), zero))
		assert.Zero(t, IoU(zero, zero))
		assert.Zero(t, IoU(nil, nil))
	})

	t.Run("self intersecting ring stays in range", func(t *testing.T) {
		bowtie := Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
		v := IoU(bowtie, unitSquare())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	})
}

func TestCoverage(t *testing.T) {
	t.Run("small slot fully inside large lot", func(t *testing.T) {
		slot := FromBBox(2, 2, 3, 3)
		lot := FromBBox(0, 0, 10, 10)
		assert.InDelta(t, 1.0, Coverage(slot, lot), 1e-9)
		// IoU would be tiny for the same pair
		assert.Less(t, IoU(slot, lot), 0.5)
	})

	t.Run("directional", func(t *testing.T) {
		slot := FromBBox(2, 2, 3, 3)
		lot := FromBBox(0, 0, 10, 10)
		assert.InDelta(t, 0.01, Coverage(lot, slot), 1e-9)
	})

	t.Run("half outside", func(t *testing.T) {
		slot := FromBBox(-0.5, 0, 0.5, 1)
		lot := FromBBox(0, 0, 10, 10)
		assert.InDelta(t, 0.5, Coverage(slot, lot), 1e-9)
	})

	t.Run("zero area inner", func(t *testing.T) {
		line := Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
		assert.Zero(t, Coverage(line, unitSquare()))
	})
}

func TestContains(t *testing.T) {
	poly := unitSquare()

	assert.True(t, poly.Contains(r2.Point{X: 0.5, Y: 0.5}))
	assert.False(t, poly.Contains(r2.Point{X: 1.5, Y: 0.5}))
	assert.False(t, Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}.Contains(r2.Point{X: 0.5, Y: 0.5}))
}

func TestIntersectionArea(t *testing.T) {
	t.Run("offset squares", func(t *testing.T) {
		a := FromBBox(0, 0, 2, 2)
		b := FromBBox(1, 1, 3, 3)
		assert.InDelta(t, 1.0, IntersectionArea(a, b), 1e-9)
	})

	t.Run("triangle against square", func(t *testing.T) {
		tri := Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}}
		sq := FromBBox(0, 0, 1, 1)
		// square corner (1,1) lies on the hypotenuse; overlap is the full square
		assert.InDelta(t, 1.0, IntersectionArea(tri, sq), 1e-9)
	})
}

// lShape is a concave hexagon: a 2x2 square with the (1,1)-(2,2) quadrant
// removed. Area 3.
func lShape() Polygon {
	return Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
}

func TestConcavePolygons(t *testing.T) {
	l := lShape()

	t.Run("area", func(t *testing.T) {
		assert.InDelta(t, 3.0, l.Area(), 1e-9)
	})

	t.Run("triangulation preserves area", func(t *testing.T) {
		var sum float64
		for _, tri := range l.triangulate() {
			sum += tri.Area()
		}
		assert.InDelta(t, 3.0, sum, 1e-9)
	})

	t.Run("identical concave ring is 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, IoU(l, l), 1e-9)
	})

	t.Run("clockwise winding gives the same result", func(t *testing.T) {
		cw := make(Polygon, len(l))
		for i, pt := range l {
			cw[len(l)-1-i] = pt
		}
		assert.InDelta(t, 1.0, IoU(cw, l), 1e-9)
	})

	t.Run("symmetry against a convex square", func(t *testing.T) {
		sq := FromBBox(0.5, 0.5, 2.5, 2.5)
		// overlap is [0.5,2]x[0.5,2] minus the notch [1,2]x[1,2]: 2.25-1=1.25,
		// union 3+4-1.25=5.75
		assert.InDelta(t, 1.25/5.75, IoU(l, sq), 1e-9)
		assert.InDelta(t, IoU(l, sq), IoU(sq, l), 1e-12)
	})

	t.Run("notch excluded from coverage", func(t *testing.T) {
		inNotch := FromBBox(1.1, 1.1, 1.9, 1.9)
		assert.InDelta(t, 0.0, Coverage(inNotch, l), 1e-9)

		inArm := FromBBox(0.1, 1.1, 0.9, 1.9)
		assert.InDelta(t, 1.0, Coverage(inArm, l), 1e-9)
	})

	t.Run("concave intersecting concave", func(t *testing.T) {
		shifted := make(Polygon, len(l))
		for i, pt := range l {
			shifted[i] = r2.Point{X: pt.X + 1, Y: pt.Y + 1}
		}
		// overlap of the two Ls is the [1,2]x[1,2] square minus both notches.
		// l's notch is exactly that square, so the overlap is empty.
		assert.InDelta(t, 0.0, IntersectionArea(l, shifted), 1e-9)
		assert.InDelta(t, 0.0, IoU(l, shifted), 1e-9)
	})
}

func TestIoURange(t *testing.T) {
	// A small grid sweep: every result must stay within [0,1].
	base := FromBBox(0.25, 0.25, 0.75, 0.75)
	for dx := -1.0; dx <= 1.0; dx += 0.25 {
		for dy := -1.0; dy <= 1.0; dy += 0.25 {
			other := FromBBox(0.25+dx, 0.25+dy, 0.75+dx, 0.75+dy)
			v := IoU(base, other)
			require.False(t, math.IsNaN(v))
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
}
