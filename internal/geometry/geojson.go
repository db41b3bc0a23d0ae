package geometry

import (
	"github.com/golang/geo/r2"
	"github.com/tidwall/gjson"
)

// FromGeoJSON converts a stored GeoJSON-like polygon into a Polygon, taking
// the first coordinate ring. Malformed input silently produces a degenerate
// polygon (IoU and coverage resolve to 0) rather than an error, so a broken
// slot definition cannot abort analysis of a whole video.
func FromGeoJSON(raw string) Polygon {
	ring := gjson.Get(raw, "coordinates.0")
	if !ring.Exists() {
		return nil
	}

	var poly Polygon
	ring.ForEach(func(_, pt gjson.Result) bool {
		coords := pt.Array()
		if len(coords) < 2 {
			return true
		}
		poly = append(poly, r2.Point{X: coords[0].Float(), Y: coords[1].Float()})
		return true
	})

	// Drop the explicit closing vertex if present; the ring is implicit.
	if n := len(poly); n > 1 && poly[0] == poly[n-1] {
		poly = poly[:n-1]
	}

	return poly
}

// ToGeoJSON serializes a polygon back to a GeoJSON Polygon geometry with a
// single closed ring.
func ToGeoJSON(p Polygon) map[string]interface{} {
	ring := make([][]float64, 0, len(p)+1)
	for _, pt := range p {
		ring = append(ring, []float64{pt.X, pt.Y})
	}
	if len(p) > 0 {
		ring = append(ring, []float64{p[0].X, p[0].Y})
	}

	return map[string]interface{}{
		"type":        "Polygon",
		"coordinates": [][][]float64{ring},
	}
}
