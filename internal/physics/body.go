package physics

import "github.com/san-kum/tiltbox/internal/dynamo"

// Body is one simulated ball. QuadrantID is fixed at creation.
type Body struct {
	Position   dynamo.Vec2 `json:"position"`
	Velocity   dynamo.Vec2 `json:"velocity"`
	Radius     float64     `json:"radius"`
	QuadrantID int         `json:"quadrant"`
}

// NewBodies places one resting body at the center of each quadrant.
func NewBodies(a Arena) []Body {
	bodies := make([]Body, NumQuadrants)
	for q := range bodies {
		bodies[q] = Body{
			Position:   a.QuadrantCenter(q),
			Radius:     a.BodyRadius,
			QuadrantID: q,
		}
	}
	return bodies
}

func (b Body) Speed() float64 { return b.Velocity.Len() }

// KineticEnergy is per unit mass.
func (b Body) KineticEnergy() float64 {
	return 0.5 * (b.Velocity.X*b.Velocity.X + b.Velocity.Y*b.Velocity.Y)
}
