package geo

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// ErrInvalidCoordinate is returned when a coordinate is non-finite or outside
// the valid latitude/longitude ranges.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// ErrDegeneratePolygon is returned when a polygon has fewer than three
// vertices. Self-intersecting polygons are not detected; the result is the
// caller's responsibility.
var ErrDegeneratePolygon = errors.New("geo: polygon needs at least 3 vertices")

// Point is an immutable WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint validates the coordinates and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks that both coordinates are finite and within range.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, p.Lng)
	}
	return nil
}

// Distance returns the great-circle distance in meters between two points
// using the haversine formula. Symmetric and non-negative.
func Distance(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	rLat1 := radians(a.Lat)
	rLat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair past 1 near antipodal points, which
	// would make Sqrt(1-h) NaN.
	if h > 1 {
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// InsideCircle reports whether p lies within radiusMeters of center.
func InsideCircle(p, center Point, radiusMeters float64) bool {
	return Distance(p, center) <= radiusMeters
}

// InsidePolygon reports whether p lies inside the polygon described by
// vertices, using the even-odd ray-casting rule. The polygon is treated as
// closed; the last vertex connects back to the first.
func InsidePolygon(p Point, vertices []Point) (bool, error) {
	if len(vertices) < 3 {
		return false, ErrDegeneratePolygon
	}
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lng < (vj.Lng-vi.Lng)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
