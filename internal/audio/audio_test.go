package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

func drain(s beep.Streamer) (n int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		k, ok := s.Stream(buf)
		for i := 0; i < k; i++ {
			if v := buf[i][0]; v > peak {
				peak = v
			} else if -v > peak {
				peak = -v
			}
		}
		n += k
		if !ok {
			return n, peak
		}
	}
}

func TestTriangle(t *testing.T) {
	tests := []struct {
		phase, want float64
	}{
		{0, 1},
		{0.25, 0},
		{0.5, -1},
		{1.5, -1},
	}
	for _, tt := range tests {
		if got := triangle(tt.phase); got != tt.want {
			t.Errorf("triangle(%v) = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestCueLengths(t *testing.T) {
	tests := []struct {
		ev   dynamo.Event
		want int
	}{
		{dynamo.Bounce(0, 3), SampleRate.N(bounceLen)},
		{dynamo.Capture(1, 2), 2 * SampleRate.N(captureLen)},
		{dynamo.Escape(1, 4), SampleRate.N(escapeLen)},
		{dynamo.Win(), len(chord) * SampleRate.N(winNoteLen)},
	}
	for _, tt := range tests {
		n, peak := drain(Cue(tt.ev, SampleRate))
		if n != tt.want {
			t.Errorf("%s: expected %d samples, got %d", tt.ev.Kind, tt.want, n)
		}
		if peak <= 0 || peak > 1 {
			t.Errorf("%s: peak %f out of range", tt.ev.Kind, peak)
		}
	}
}

func TestBounceLouderWithSpeed(t *testing.T) {
	_, soft := drain(Cue(dynamo.Bounce(0, 1.5), SampleRate))
	_, hard := drain(Cue(dynamo.Bounce(0, 15), SampleRate))
	if hard <= soft {
		t.Errorf("expected harder bounce to be louder: %f vs %f", hard, soft)
	}
}

func TestTimeline(t *testing.T) {
	events := []sim.EventRecord{
		{Tick: 1, Event: dynamo.Bounce(0, 4)},
		{Tick: 60, Event: dynamo.Win()},
	}
	track, total, err := Timeline(events, 60, 60, SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if total <= SampleRate.N(time.Second) {
		t.Errorf("win cue should extend the track past one second, got %d samples", total)
	}
	n, _ := drain(track)
	if n != total {
		t.Errorf("expected %d samples, got %d", total, n)
	}

	if _, _, err := Timeline(events, 60, 0, SampleRate); err == nil {
		t.Error("expected error for zero tick rate")
	}
}

func TestRenderWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cues.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	events := []sim.EventRecord{{Tick: 3, Event: dynamo.Capture(0, 0)}}
	n, err := RenderWAV(f, events, 30, 60)
	f.Close()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	s, format, err := wav.Decode(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if format.SampleRate != SampleRate || format.NumChannels != 2 {
		t.Errorf("unexpected format %+v", format)
	}
	if s.Len() != n {
		t.Errorf("expected %d frames, got %d", n, s.Len())
	}
}

func TestPlayerDropsWhenInactive(t *testing.T) {
	p := NewPlayer(0.5)
	p.OnEvent(dynamo.Win())
	if p.mixer.Len() != 0 {
		t.Error("inactive player should not queue cues")
	}
	p.Stop()
}

func TestGainToVolume(t *testing.T) {
	if gainToVolume(1) != 0 || gainToVolume(2) != 0 {
		t.Error("full gain should map to volume 0")
	}
	if gainToVolume(0.5) != -1 {
		t.Errorf("half gain should map to -1, got %f", gainToVolume(0.5))
	}
}
