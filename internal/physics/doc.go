// Package physics describes the arena the bodies move in.
//
// The arena is a square split into four quadrants by two perpendicular walls
// of finite thickness. Each body is confined to the inset rectangle of its own
// quadrant, returned by [Arena.QuadrantBounds]. Five [Zone] values sit at the
// center and at the four outer corners; only target zones take part in
// capture and win logic.
//
// Quadrant ids, screen coordinates (y grows downward):
//
//	0 | 1
//	--+--
//	2 | 3
//
// Everything here is recomputed wholesale on resize; nothing is mutated in place.
package physics
