package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/storage"
)

func TestTraceSVG(t *testing.T) {
	rows := []storage.TraceRow{
		{Tick: 1, Body: 0, X: 150, Y: 150},
		{Tick: 2, Body: 0, X: 150, Y: 151, Captured: true, Zone: 0},
		{Tick: 1, Body: 1, X: 450, Y: 150},
	}

	var buf bytes.Buffer
	if err := TraceSVG(&buf, 600, dynamo.DefaultParams(), rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if got := strings.Count(out, "<rect "); got != 5 {
		t.Errorf("expected background and 4 quadrant rects, got %d", got)
	}
	if !strings.Contains(out, "M150.0,150.0 L150.0,151.0") {
		t.Error("missing body 0 path")
	}
	// 5 zones, 5 target rings in sticky, 2 body markers
	if got := strings.Count(out, "<circle "); got != 12 {
		t.Errorf("expected 12 circles, got %d", got)
	}
	if !strings.Contains(out, `fill="#ff6b6b"`) {
		t.Error("captured body should be drawn filled")
	}
}

func TestTraceSVG_ClassicCenter(t *testing.T) {
	p := dynamo.DefaultParams()
	p.Variant = dynamo.VariantClassic

	var buf bytes.Buffer
	if err := TraceSVG(&buf, 600, p, nil); err != nil {
		t.Fatal(err)
	}
	// decorative center has no capture ring
	if got := strings.Count(buf.String(), "stroke-dasharray"); got != 4 {
		t.Errorf("expected 4 target rings, got %d", got)
	}
}

func TestTraceSVG_InvalidArena(t *testing.T) {
	var buf bytes.Buffer
	if err := TraceSVG(&buf, 0, dynamo.DefaultParams(), nil); err == nil {
		t.Error("expected error for zero arena")
	}
}
