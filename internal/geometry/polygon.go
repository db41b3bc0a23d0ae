package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Polygon is a closed ring of 2D points in the shared detection coordinate
// space (normalized [0,1] or consistent absolute pixels). The ring is implicit:
// the last vertex connects back to the first.
type Polygon []r2.Point

// FromBBox builds an axis-aligned rectangle polygon from two corner points.
// Reversed coordinates are normalized by taking min/max.
func FromBBox(x1, y1, x2, y2 float64) Polygon {
	minX, maxX := math.Min(x1, x2), math.Max(x1, x2)
	minY, maxY := math.Min(y1, y2), math.Max(y1, y2)

	return Polygon{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// Area calculates the polygon area using the shoelace formula.
// Degenerate rings (fewer than 3 vertices, collinear points) yield 0.
func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) signedArea() float64 {
	if len(p) < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < len(p); i++ {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Contains checks if a point is inside the polygon using ray casting.
func (p Polygon) Contains(pt r2.Point) bool {
	if len(p) < 3 {
		return false
	}

	inside := false
	j := len(p) - 1

	for i := 0; i < len(p); i++ {
		if ((p[i].Y > pt.Y) != (p[j].Y > pt.Y)) &&
			(pt.X < (p[j].X-p[i].X)*(pt.Y-p[i].Y)/(p[j].Y-p[i].Y)+p[i].X) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// counterClockwise returns the ring with counter-clockwise winding,
// regardless of input orientation.
func (p Polygon) counterClockwise() Polygon {
	if p.signedArea() >= 0 {
		return p
	}
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

const insideEps = 1e-12

// edgeSide is positive when pt lies to the left of the directed edge a->b.
func edgeSide(a, b, pt r2.Point) float64 {
	return (b.X-a.X)*(pt.Y-a.Y) - (b.Y-a.Y)*(pt.X-a.X)
}

// lineIntersection returns the intersection of segment p1-p2 with the
// infinite line through a-b. Parallel segments fall back to p2; the
// degenerate result only ever contributes zero area.
func lineIntersection(p1, p2, a, b r2.Point) r2.Point {
	d1 := r2.Point{X: p2.X - p1.X, Y: p2.Y - p1.Y}
	d2 := r2.Point{X: b.X - a.X, Y: b.Y - a.Y}

	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < insideEps {
		return p2
	}

	t := ((a.X-p1.X)*d2.Y - (a.Y-p1.Y)*d2.X) / denom
	return r2.Point{X: p1.X + t*d1.X, Y: p1.Y + t*d1.Y}
}

// isConvex reports whether the ring makes no right turns when walked
// counter-clockwise. Collinear vertices count as convex.
func (p Polygon) isConvex() bool {
	ccw := p.counterClockwise()
	n := len(ccw)
	if n < 4 {
		return true
	}
	for i := 0; i < n; i++ {
		if edgeSide(ccw[i], ccw[(i+1)%n], ccw[(i+2)%n]) < -insideEps {
			return false
		}
	}
	return true
}

// triangleContains reports whether pt lies strictly inside the CCW triangle
// a,b,c. Boundary points do not count, so shared ring vertices never block
// an ear.
func triangleContains(a, b, c, pt r2.Point) bool {
	return edgeSide(a, b, pt) > insideEps &&
		edgeSide(b, c, pt) > insideEps &&
		edgeSide(c, a, pt) > insideEps
}

// triangulate decomposes a simple ring into triangles by ear clipping.
// Rings it cannot decompose (self-intersecting input) fall back to a fan
// from the first vertex, which keeps the never-fails contract at the cost
// of exactness on already-invalid geometry.
func (p Polygon) triangulate() []Polygon {
	ccw := p.counterClockwise()
	ring := append(Polygon(nil), ccw...)

	var tris []Polygon
	for len(ring) > 3 {
		n := len(ring)
		earFound := false
		for i := 0; i < n; i++ {
			prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
			if edgeSide(prev, cur, next) <= insideEps {
				continue // reflex or collinear corner
			}
			blocked := false
			for j := 0; j < n; j++ {
				if j == i || j == (i+n-1)%n || j == (i+1)%n {
					continue
				}
				if triangleContains(prev, cur, next, ring[j]) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			tris = append(tris, Polygon{prev, cur, next})
			ring = append(ring[:i], ring[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			return ccw.fan()
		}
	}
	if len(ring) == 3 {
		tris = append(tris, Polygon{ring[0], ring[1], ring[2]})
	}
	return tris
}

func (p Polygon) fan() []Polygon {
	var tris []Polygon
	for i := 1; i+1 < len(p); i++ {
		tris = append(tris, Polygon{p[0], p[i], p[i+1]})
	}
	return tris
}

// intersection clips polygon a against polygon b using the
// Sutherland-Hodgman algorithm. The clip polygon b must be convex; a may be
// arbitrary (concave subjects produce zero-width bridge edges whose enclosed
// area is still exact). Callers route concave clips through triangulate.
func intersection(a, b Polygon) Polygon {
	if len(a) < 3 || len(b) < 3 {
		return nil
	}

	out := append(Polygon(nil), a...)
	clip := b.counterClockwise()

	for i := 0; i < len(clip) && len(out) > 0; i++ {
		edgeA := clip[i]
		edgeB := clip[(i+1)%len(clip)]

		in := out
		out = nil
		for j, cur := range in {
			prev := in[(j+len(in)-1)%len(in)]
			curInside := edgeSide(edgeA, edgeB, cur) >= -insideEps
			prevInside := edgeSide(edgeA, edgeB, prev) >= -insideEps

			switch {
			case curInside && prevInside:
				out = append(out, cur)
			case curInside && !prevInside:
				out = append(out, lineIntersection(prev, cur, edgeA, edgeB), cur)
			case !curInside && prevInside:
				out = append(out, lineIntersection(prev, cur, edgeA, edgeB))
			}
		}
	}

	return out
}

// IntersectionArea returns the overlap area of two polygons. A convex clip
// ring is clipped directly; a concave one is decomposed into triangles and
// the per-triangle overlaps summed, so user-drawn L-shaped zones measure
// exactly.
func IntersectionArea(a, b Polygon) float64 {
	if len(a) < 3 || len(b) < 3 {
		return 0
	}
	if b.isConvex() {
		return intersection(a, b).Area()
	}

	var sum float64
	for _, tri := range b.triangulate() {
		sum += intersection(a, tri).Area()
	}
	return sum
}

// IoU calculates Intersection over Union between two polygons.
// Returns 0.0 when the union area is zero or either polygon is degenerate;
// never fails on malformed input.
func IoU(a, b Polygon) float64 {
	areaA := a.Area()
	areaB := b.Area()
	if areaA == 0 && areaB == 0 {
		return 0
	}

	inter := IntersectionArea(a, b)
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}

	return clampRatio(inter / union)
}

// Coverage returns the fraction of inner's area that lies inside outer.
// Directional, unlike IoU: used when outer is much larger than inner
// (a slot inside a lot zone). Returns 0.0 when inner has zero area.
func Coverage(inner, outer Polygon) float64 {
	innerArea := inner.Area()
	if innerArea == 0 {
		return 0
	}

	return clampRatio(IntersectionArea(inner, outer) / innerArea)
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
