// Package zone answers "is this point inside a service area" for circular
// and polygonal zones, used to gate whether a customer session may start.
package zone
