package model

import "time"

// TaskKind distinguishes the reasons a waiter can be called.
type TaskKind int

const (
	TaskNewOrder TaskKind = iota
	TaskAssistance
)

func (k TaskKind) String() string {
	switch k {
	case TaskNewOrder:
		return "new_order"
	case TaskAssistance:
		return "assistance"
	default:
		return "unknown"
	}
}

// Task is an immutable unit of work to be offered to staff: a new order to
// pick up or a customer asking for help. PayloadRef points at the externally
// stored entity (e.g. an order id).
type Task struct {
	ID         string
	Kind       TaskKind
	TableID    string
	PayloadRef string
	CreatedAt  time.Time
}
