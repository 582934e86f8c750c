// Package geo provides the pure geographic primitives used by the matching
// and zone packages: great-circle distance and circular/polygonal containment
// tests. All functions are stateless and side-effect free.
package geo
