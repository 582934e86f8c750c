package model

import (
	"fmt"

	"github.com/brewline/maitre/core/geo"
)

// TableStatus describes whether a table may be matched to a session.
type TableStatus int

const (
	TableFree TableStatus = iota
	TableReserved
	TableOffline
)

func (s TableStatus) String() string {
	switch s {
	case TableFree:
		return "free"
	case TableReserved:
		return "reserved"
	case TableOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Table is a read-only snapshot of a physical table as provided by the
// entity store. The matching core never mutates it.
type Table struct {
	ID       string
	Position geo.Point
	// RadiusMeters is the intrinsic detection radius around the table,
	// typically its seating area.
	RadiusMeters float64
	Status       TableStatus
}

// Eligible reports whether the table may participate in matching.
func (t Table) Eligible() bool {
	return t.Status == TableFree
}

// Validate checks that the snapshot is usable for matching.
func (t Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("table id must not be empty")
	}
	if err := t.Position.Validate(); err != nil {
		return fmt.Errorf("table %s: %w", t.ID, err)
	}
	if t.RadiusMeters < 0 {
		return fmt.Errorf("table %s: negative radius", t.ID)
	}
	return nil
}
