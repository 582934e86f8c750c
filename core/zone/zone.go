package zone

import (
	"fmt"

	"github.com/brewline/maitre/core/geo"
)

// ShapeKind identifies the geometry of a zone.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Zone is a read-only snapshot of a service area (a cafe floor, a terrace).
// Its lifecycle is owned by the external store; this package only reads it.
type Zone struct {
	ID    string
	Shape ShapeKind
	// Circle geometry.
	Center       geo.Point
	RadiusMeters float64
	// Polygon geometry, ordered vertices.
	Vertices []geo.Point
	Active   bool
	// AcceptsSessions gates whether new customer sessions may start here.
	AcceptsSessions bool
}

// Contains reports whether p lies inside the zone geometry.
func (z Zone) Contains(p geo.Point) (bool, error) {
	switch z.Shape {
	case ShapeCircle:
		return geo.InsideCircle(p, z.Center, z.RadiusMeters), nil
	case ShapePolygon:
		return geo.InsidePolygon(p, z.Vertices)
	default:
		return false, fmt.Errorf("zone %s: unknown shape %d", z.ID, int(z.Shape))
	}
}

// open reports whether the zone may accept a new session at all. Checked
// before any geometry so inactive zones are rejected cheaply.
func (z Zone) open() bool {
	return z.Active && z.AcceptsSessions
}

// Classify returns every open zone containing the point. Overlapping zones
// are all returned; choosing among them is the caller's decision.
func Classify(p geo.Point, zones []Zone) ([]Zone, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var containing []Zone
	for _, z := range zones {
		if !z.open() {
			continue
		}
		in, err := z.Contains(p)
		if err != nil {
			return nil, err
		}
		if in {
			containing = append(containing, z)
		}
	}
	return containing, nil
}

// Nearest returns the open zone whose reference point is closest to p, if any
// lies within maxDistanceMeters. For circles the reference is the center; for
// polygons the nearest vertex.
func Nearest(p geo.Point, zones []Zone, maxDistanceMeters float64) (*Zone, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	var best *Zone
	bestDist := maxDistanceMeters
	for i := range zones {
		z := zones[i]
		if !z.open() {
			continue
		}
		d, err := referenceDistance(p, z)
		if err != nil {
			return nil, false, err
		}
		switch {
		case d > bestDist:
		case best != nil && d == bestDist && z.ID >= best.ID:
			// Equidistant zones resolve by ID, not slice order.
		default:
			best = &zones[i]
			bestDist = d
		}
	}
	return best, best != nil, nil
}

func referenceDistance(p geo.Point, z Zone) (float64, error) {
	switch z.Shape {
	case ShapeCircle:
		return geo.Distance(p, z.Center), nil
	case ShapePolygon:
		if len(z.Vertices) < 3 {
			return 0, geo.ErrDegeneratePolygon
		}
		min := geo.Distance(p, z.Vertices[0])
		for _, v := range z.Vertices[1:] {
			if d := geo.Distance(p, v); d < min {
				min = d
			}
		}
		return min, nil
	default:
		return 0, fmt.Errorf("zone %s: unknown shape %d", z.ID, int(z.Shape))
	}
}
