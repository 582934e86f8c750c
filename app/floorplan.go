package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/brewline/maitre/core/geo"
	"github.com/brewline/maitre/core/model"
	"github.com/brewline/maitre/core/zone"
)

// FloorPlan is the decoded contents of a cafe layout file: the tables,
// staff and service zones the matching core works against. In production
// these snapshots come from the entity store; the file form feeds the CLI
// and the demo service.
type FloorPlan struct {
	Tables  []model.Table
	Waiters []model.Waiter
	Zones   []zone.Zone
}

type tableDTO struct {
	ID           string    `json:"id"`
	Position     geo.Point `json:"position"`
	RadiusMeters float64   `json:"radius_m"`
	Status       string    `json:"status"`
}

type waiterDTO struct {
	ID                string    `json:"id"`
	Position          geo.Point `json:"position"`
	Available         bool      `json:"available"`
	ActiveAssignments int       `json:"active_assignments"`
}

type zoneDTO struct {
	ID              string      `json:"id"`
	Shape           string      `json:"shape"`
	Center          geo.Point   `json:"center"`
	RadiusMeters    float64     `json:"radius_m"`
	Vertices        []geo.Point `json:"vertices"`
	Active          bool        `json:"active"`
	AcceptsSessions bool        `json:"accepts_sessions"`
}

type floorPlanDTO struct {
	Tables  []tableDTO  `json:"tables"`
	Waiters []waiterDTO `json:"waiters"`
	Zones   []zoneDTO   `json:"zones"`
}

// LoadFloorPlan reads and validates a JSON layout file.
func LoadFloorPlan(path string) (*FloorPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floor plan: %w", err)
	}
	var dto floorPlanDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode floor plan: %w", err)
	}

	fp := &FloorPlan{}
	for _, t := range dto.Tables {
		status, err := parseTableStatus(t.Status)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.ID, err)
		}
		tab := model.Table{ID: t.ID, Position: t.Position, RadiusMeters: t.RadiusMeters, Status: status}
		if err := tab.Validate(); err != nil {
			return nil, err
		}
		fp.Tables = append(fp.Tables, tab)
	}
	for _, w := range dto.Waiters {
		if w.ID == "" {
			return nil, fmt.Errorf("waiter with empty id")
		}
		if err := w.Position.Validate(); err != nil {
			return nil, fmt.Errorf("waiter %s: %w", w.ID, err)
		}
		fp.Waiters = append(fp.Waiters, model.Waiter{
			ID:                w.ID,
			Position:          w.Position,
			Available:         w.Available,
			ActiveAssignments: w.ActiveAssignments,
		})
	}
	for _, z := range dto.Zones {
		shape, err := parseShape(z.Shape)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		fp.Zones = append(fp.Zones, zone.Zone{
			ID:              z.ID,
			Shape:           shape,
			Center:          z.Center,
			RadiusMeters:    z.RadiusMeters,
			Vertices:        z.Vertices,
			Active:          z.Active,
			AcceptsSessions: z.AcceptsSessions,
		})
	}
	return fp, nil
}

func parseTableStatus(s string) (model.TableStatus, error) {
	switch s {
	case "free", "":
		return model.TableFree, nil
	case "reserved":
		return model.TableReserved, nil
	case "offline":
		return model.TableOffline, nil
	default:
		return 0, fmt.Errorf("unknown table status %q", s)
	}
}

func parseShape(s string) (zone.ShapeKind, error) {
	switch s {
	case "circle", "":
		return zone.ShapeCircle, nil
	case "polygon":
		return zone.ShapePolygon, nil
	default:
		return 0, fmt.Errorf("unknown shape %q", s)
	}
}
