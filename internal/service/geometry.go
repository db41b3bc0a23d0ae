package service

import (
	"fmt"

	"github.com/parkvision/parking-backend-go/internal/geometry"
	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
)

// validatePolygon rejects geometry that cannot enclose any area. Stored
// polygons are GeoJSON text; everything downstream assumes they parse to at
// least a triangle.
func validatePolygon(raw string) error {
	poly := geometry.FromGeoJSON(raw)
	if len(poly) < 3 {
		return fmt.Errorf("%w: polygon must be a GeoJSON Polygon with at least 3 vertices", ErrInvalidInput)
	}
	if poly.Area() <= 0 {
		return fmt.Errorf("%w: polygon has zero area", ErrInvalidInput)
	}
	return nil
}

func slotGeometries(slots []models.ParkingSlot) []occupancy.SlotGeometry {
	out := make([]occupancy.SlotGeometry, 0, len(slots))
	for _, s := range slots {
		out = append(out, occupancy.SlotGeometry{
			ID:      s.ID,
			Name:    s.Name,
			Polygon: geometry.FromGeoJSON(s.Polygon),
		})
	}
	return out
}

func lotGeometries(lots []models.ParkingLot) []occupancy.LotGeometry {
	out := make([]occupancy.LotGeometry, 0, len(lots))
	for _, l := range lots {
		out = append(out, occupancy.LotGeometry{
			ID:      l.ID,
			Name:    l.Name,
			Polygon: geometry.FromGeoJSON(l.Polygon),
		})
	}
	return out
}
