// Package events defines the dispatch lifecycle events published by the
// orchestrator and the Sink interface consumers implement.
//
// Available event types:
//   - OfferMade: a candidate has been offered a task
//   - AssignmentAccepted: a candidate claimed the task
//   - OfferPassed: a candidate declined the offer
//   - OfferTimedOut: the offer deadline expired without a response
//   - CandidateSkipped: a queued candidate was unavailable at offer time
//   - AssignmentExhausted: no candidate accepted; escalation required
//
// Each event carries enough identifiers for a notification collaborator to
// route a message; no further semantics are owned here.
package events
