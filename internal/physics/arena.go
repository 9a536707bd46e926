package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

const (
	NumQuadrants = 4
	// CenterZoneID is the id of the zone at the arena midpoint.
	CenterZoneID = 4
	// NoZone marks the absence of a zone.
	NoZone = -1
)

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

func (b Bounds) Center() dynamo.Vec2 {
	return dynamo.Vec2{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

func (b Bounds) Contains(p dynamo.Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Arena holds the square play field and the radii derived from its size.
type Arena struct {
	Size          float64
	Wall          float64
	BodyRadius    float64
	StickyRadius  float64
	CaptureRadius float64
}

func NewArena(size float64, p dynamo.Params) (Arena, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return Arena{}, fmt.Errorf("%w: size=%g", dynamo.ErrInvalidArena, size)
	}
	if p.WallThickness < 0 || p.WallThickness >= size/2 {
		return Arena{}, fmt.Errorf("%w: wall=%g size=%g", dynamo.ErrInvalidArena, p.WallThickness, size)
	}
	sticky := size * p.StickyRadiusFactor
	return Arena{
		Size:          size,
		Wall:          p.WallThickness,
		BodyRadius:    size * p.BodyRadiusFactor,
		StickyRadius:  sticky,
		CaptureRadius: sticky * p.CaptureRadiusFactor,
	}, nil
}

func (a Arena) Center() dynamo.Vec2 {
	return dynamo.Vec2{X: a.Size / 2, Y: a.Size / 2}
}

// QuadrantBounds returns the rectangle a body in quadrant id may occupy,
// inset by half the wall thickness along the interior edges. An unknown id
// yields quadrant 0's bounds together with ErrQuadrantOutOfRange so the
// caller can keep ticking.
func (a Arena) QuadrantBounds(id int) (Bounds, error) {
	var err error
	if id < 0 || id >= NumQuadrants {
		err = fmt.Errorf("%w: %d", dynamo.ErrQuadrantOutOfRange, id)
		id = 0
	}

	half, inset := a.Size/2, a.Wall/2
	b := Bounds{MinX: 0, MaxX: half - inset, MinY: 0, MaxY: half - inset}
	if id%2 == 1 {
		b.MinX, b.MaxX = half+inset, a.Size
	}
	if id/2 == 1 {
		b.MinY, b.MaxY = half+inset, a.Size
	}
	return b, err
}

// QuadrantCenter is the midpoint of the quadrant's nominal square, ignoring
// the wall inset.
func (a Arena) QuadrantCenter(id int) dynamo.Vec2 {
	if id < 0 || id >= NumQuadrants {
		id = 0
	}
	q := a.Size / 4
	return dynamo.Vec2{X: q + float64(id%2)*a.Size/2, Y: q + float64(id/2)*a.Size/2}
}

// Zone is a fixed trap location.
type Zone struct {
	Position dynamo.Vec2
	IsTarget bool
	ID       int
}

// ZonesOf builds the five zones in construction order: center, then
// top-left, top-right, bottom-left, bottom-right with ids 0..3. The center
// zone is a target only in the sticky variant.
func ZonesOf(a Arena, v dynamo.Variant) []Zone {
	s := a.Size
	return []Zone{
		{Position: a.Center(), IsTarget: v == dynamo.VariantSticky, ID: CenterZoneID},
		{Position: dynamo.Vec2{X: 0, Y: 0}, IsTarget: true, ID: 0},
		{Position: dynamo.Vec2{X: s, Y: 0}, IsTarget: true, ID: 1},
		{Position: dynamo.Vec2{X: 0, Y: s}, IsTarget: true, ID: 2},
		{Position: dynamo.Vec2{X: s, Y: s}, IsTarget: true, ID: 3},
	}
}

// Targets filters zones down to the ones taking part in capture, keeping order.
func Targets(zones []Zone) []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if z.IsTarget {
			out = append(out, z)
		}
	}
	return out
}

// IsWithinCornerRegion is true when both axes are within the sticky radius
// of the zone. A body sliding along one wall far from the corner fails the
// other axis even if a circular test would pass.
func (a Arena) IsWithinCornerRegion(p dynamo.Vec2, z Zone) bool {
	return math.Abs(p.X-z.Position.X) < a.StickyRadius &&
		math.Abs(p.Y-z.Position.Y) < a.StickyRadius
}

// InOuterRing reports the distance to the zone and whether the body is in
// its sticky ring.
func (a Arena) InOuterRing(p dynamo.Vec2, z Zone) (float64, bool) {
	d := p.Sub(z.Position).Len()
	return d, d < a.StickyRadius && a.IsWithinCornerRegion(p, z)
}
