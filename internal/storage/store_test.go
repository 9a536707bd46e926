package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
	"github.com/san-kum/tiltbox/internal/sim"
)

func sampleResult() *sim.Result {
	body := func(x, y, vx, vy float64) physics.Body {
		return physics.Body{
			Position: dynamo.Vec2{X: x, Y: y},
			Velocity: dynamo.Vec2{X: vx, Y: vy},
			Radius:   15,
		}
	}
	return &sim.Result{
		Ticks: 2,
		Samples: []sim.TickResult{
			{
				Tick:     1,
				Bodies:   []physics.Body{body(150, 150, 0, 0.5), body(450, 150, 3, 4)},
				Captures: []capture.State{capture.Initial(), capture.Initial()},
			},
			{
				Tick:     2,
				Bodies:   []physics.Body{body(150, 151, 0, 1), body(453, 154, 3, 4)},
				Captures: []capture.State{{Captured: true, ZoneID: 0}, capture.Initial()},
			},
		},
		Events: []sim.EventRecord{
			{Tick: 2, Event: dynamo.Capture(0, 0)},
			{Tick: 2, Event: dynamo.Bounce(1, 4.5)},
		},
		Metrics: map[string]float64{"bounces": 1},
		Stopped: "max_ticks",
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := dynamo.DefaultParams()
	runID, err := st.Save("test", p, 600, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Size != 600 || meta.Ticks != 2 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Params != p {
		t.Errorf("params mismatch: %+v", meta.Params)
	}
	if meta.Metrics["bounces"] != 1 {
		t.Errorf("expected bounces 1, got %f", meta.Metrics["bounces"])
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(trace) != 4 {
		t.Fatalf("expected 4 trace rows, got %d", len(trace))
	}
	if trace[2] != (TraceRow{Tick: 2, Body: 0, X: 150, Y: 151, VX: 0, VY: 1, Captured: true, Zone: 0}) {
		t.Errorf("unexpected trace row: %+v", trace[2])
	}
	if trace[1].Zone != -1 || trace[1].Captured {
		t.Errorf("free body should store zone -1: %+v", trace[1])
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	ev, err := events[1].Event()
	if err != nil {
		t.Fatal(err)
	}
	if ev != dynamo.Bounce(1, 4.5) {
		t.Errorf("expected bounce event, got %v", ev)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("a", dynamo.DefaultParams(), 600, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save("b", dynamo.DefaultParams(), 600, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "a" || runs[1].Name != "b" {
		t.Errorf("expected runs oldest first, got %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("test", dynamo.DefaultParams(), 600, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "trace.csv", "events.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, runID, "trace.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "tick,body,x,y,vx,vy,captured,zone" {
		t.Errorf("unexpected trace header %q", header)
	}
}

func TestStoreEngineRun(t *testing.T) {
	p := dynamo.DefaultParams()
	eng, err := sim.New(p, 600)
	if err != nil {
		t.Fatal(err)
	}
	result, err := eng.Run(context.Background(), sim.Constant(dynamo.RestInput(p)), 50)
	if err != nil {
		t.Fatal(err)
	}

	st := New(t.TempDir())
	runID, err := st.Save("rest", p, 600, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trace) != 50*physics.NumQuadrants {
		t.Errorf("expected %d rows, got %d", 50*physics.NumQuadrants, len(trace))
	}
}

func TestEventRowUnknownKind(t *testing.T) {
	if _, err := (EventRow{Kind: "explode"}).Event(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSpeedSeries(t *testing.T) {
	rows := TraceRows(sampleResult().Samples)
	got := SpeedSeries(rows, 1)
	if len(got) != 2 || got[0] != 5 || got[1] != 5 {
		t.Errorf("expected [5 5], got %v", got)
	}
}

func TestExportJSON(t *testing.T) {
	data := NewExport(dynamo.DefaultParams(), 600, sampleResult())

	var buf bytes.Buffer
	if err := ExportJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(back.Trace) != 4 || len(back.Events) != 2 || back.Events[0].Kind != "capture" {
		t.Errorf("unexpected export: %+v", back)
	}

	buf.Reset()
	if err := ExportCSV(&buf, data); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 5 {
		t.Errorf("expected header + 4 rows, got %d lines", lines)
	}
}
