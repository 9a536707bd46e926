package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

type ExportData struct {
	Size    float64            `json:"size"`
	Params  dynamo.Params      `json:"params"`
	Ticks   int                `json:"ticks"`
	Won     bool               `json:"won"`
	WinTick int                `json:"win_tick,omitempty"`
	Stopped string             `json:"stopped"`
	Trace   []TraceRow         `json:"trace"`
	Events  []EventRow         `json:"events"`
	Metrics map[string]float64 `json:"metrics"`
}

func NewExport(p dynamo.Params, size float64, result *sim.Result) ExportData {
	return ExportData{
		Size:    size,
		Params:  p,
		Ticks:   result.Ticks,
		Won:     result.Won,
		WinTick: result.WinTick,
		Stopped: result.Stopped,
		Trace:   TraceRows(result.Samples),
		Events:  EventRows(result.Events),
		Metrics: result.Metrics,
	}
}

func ExportJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes the trace rows only.
func ExportCSV(w io.Writer, data ExportData) error {
	return gocsv.Marshal(data.Trace, w)
}
