// Package goal decides when a run is won.
package goal

import "github.com/san-kum/tiltbox/internal/capture"

// Evaluate is true iff every body is captured and the captured bodies
// occupy exactly required distinct zones. Two bodies sharing a zone count
// once.
func Evaluate(states []capture.State, required int) bool {
	if len(states) == 0 || required <= 0 {
		return false
	}
	seen := make(map[int]struct{}, len(states))
	for _, s := range states {
		if !s.Captured {
			return false
		}
		seen[s.ZoneID] = struct{}{}
	}
	return len(seen) == required
}

// Progress returns how many distinct zones currently hold a captured body.
func Progress(states []capture.State) int {
	seen := make(map[int]struct{}, len(states))
	for _, s := range states {
		if s.Captured {
			seen[s.ZoneID] = struct{}{}
		}
	}
	return len(seen)
}
