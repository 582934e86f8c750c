// Package match implements proximity-based table resolution: given an
// uncertain GPS fix and a pool of table snapshots it decides which table a
// customer is sitting at, or reports the ambiguity so the caller can ask the
// customer to pick.
//
// The key property is the effective radius: a table matches when the fix is
// within max(table radius, measurement uncertainty). Without it, realistic
// GPS error (tens of meters) would never land inside a one-meter seating
// radius and nothing would ever match.
package match
