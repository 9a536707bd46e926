package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
	"github.com/san-kum/tiltbox/internal/storage"
)

var bodyColors = []string{"#ff6b6b", "#feca57", "#48dbfb", "#1dd1a1"}

// TraceSVG draws the arena, its zones and every body's path from a stored
// trace, in arena coordinates.
func TraceSVG(w io.Writer, size float64, p dynamo.Params, rows []storage.TraceRow) error {
	arena, err := physics.NewArena(size, p)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="none" stroke="#444466" stroke-width="1">
`, size, size, size, size))

	for q := 0; q < physics.NumQuadrants; q++ {
		b, _ := arena.QuadrantBounds(q)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, b.MinX, b.MinY, b.MaxX-b.MinX, b.MaxY-b.MinY))
	}
	for _, z := range physics.ZonesOf(arena, p.Variant) {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, z.Position.X, z.Position.Y, arena.StickyRadius))
		if z.IsTarget {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" stroke-dasharray="4 3"/>
`, z.Position.X, z.Position.Y, arena.CaptureRadius))
		}
	}
	sb.WriteString("</g>\n")

	paths := make(map[int][]storage.TraceRow)
	for _, r := range rows {
		paths[r.Body] = append(paths[r.Body], r)
	}
	for b := 0; b < physics.NumQuadrants; b++ {
		pts := paths[b]
		if len(pts) == 0 {
			continue
		}
		color := bodyColors[b%len(bodyColors)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, pt := range pts {
			if i > 0 {
				sb.WriteString(" L")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", pt.X, pt.Y))
		}
		sb.WriteString("\"/>\n")

		last := pts[len(pts)-1]
		fill := "none"
		if last.Captured {
			fill = color
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" stroke="%s" fill="%s"/>
`, last.X, last.Y, arena.BodyRadius, color, fill))
	}

	sb.WriteString("</svg>\n")
	_, err = io.WriteString(w, sb.String())
	return err
}
