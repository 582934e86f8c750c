// Package dispatch implements the cascading task-dispatch engine of the
// Brewline platform.
//
// A task (a new order to pick up, a customer asking for help) is offered to
// one waiter at a time, following a queue ranked nearest-first at dispatch
// start. Each offer carries a fixed response deadline; on an explicit pass
// or deadline expiry the dispatch advances to the next candidate, until one
// accepts or the queue is exhausted.
//
// Key components:
//   - AssignmentRecord: the per-dispatch state machine value
//     (Offered -> Offered'|Accepted|Exhausted, cursor monotonic).
//   - Store: per-record atomic check-and-set over the in-flight records;
//     MemoryStore is the process-local implementation.
//   - Orchestrator: drives offers, deadlines and the accept/pass protocol.
//     At most one Accept succeeds per assignment, enforced by construction.
//   - Sweeper: background safety net forcing expiry of offers whose timer
//     was lost, and evicting terminal records after the retention window.
//   - BuildQueue: ranks waiters by distance with a load tie-break.
//
// Lifecycle events are published through an injected events.Sink after each
// transition commits; notification delivery is fire-and-forget and a
// delivery failure never rolls back a transition.
package dispatch
