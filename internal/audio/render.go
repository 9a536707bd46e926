package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/tiltbox/internal/sim"
)

// Timeline lays every event's cue at its tick offset over a track covering
// ticks at tickRate ticks per second, plus room for the last cue to ring out.
func Timeline(events []sim.EventRecord, ticks, tickRate int, sr beep.SampleRate) (beep.Streamer, int, error) {
	if tickRate <= 0 {
		return nil, 0, fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}
	tickLen := time.Second / time.Duration(tickRate)

	total := sr.N(time.Duration(ticks) * tickLen)
	streams := make([]beep.Streamer, 0, len(events)+1)
	for _, rec := range events {
		start := sr.N(time.Duration(rec.Tick-1) * tickLen)
		if start < 0 {
			start = 0
		}
		if end := start + sr.N(CueLength(rec.Event.Kind)); end > total {
			total = end
		}
		streams = append(streams, beep.Seq(beep.Silence(start), Cue(rec.Event, sr)))
	}
	streams = append(streams, beep.Silence(total))

	return beep.Take(total, beep.Mix(streams...)), total, nil
}

// RenderWAV writes a 16-bit stereo WAV of a run's event cues.
func RenderWAV(w io.WriteSeeker, events []sim.EventRecord, ticks, tickRate int) (int, error) {
	track, n, err := Timeline(events, ticks, tickRate, SampleRate)
	if err != nil {
		return 0, err
	}
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, track, format); err != nil {
		return 0, fmt.Errorf("encoding wav: %w", err)
	}
	return n, nil
}
