package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

const SampleRate = beep.SampleRate(44100)

// G2 Bb2 D3 F3 A3, raised two octaves for short cues.
var chord = []float64{392.00, 466.16, 587.33, 698.46, 880.00}

// triangle is smooth and flute-like, no harsh buzz.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// tone is a triangle wave with a short linear attack and exponential decay.
type tone struct {
	freq   float64
	amp    float64
	decay  float64
	attack int
	total  int
	pos    int
	sr     beep.SampleRate
}

func newTone(freq, amp float64, d time.Duration, sr beep.SampleRate) *tone {
	return &tone{
		freq:   freq,
		amp:    amp,
		decay:  6 / d.Seconds(),
		attack: sr.N(5 * time.Millisecond),
		total:  sr.N(d),
		sr:     sr,
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		sec := float64(t.pos) / float64(t.sr)
		env := math.Exp(-sec * t.decay)
		if t.pos < t.attack {
			env *= float64(t.pos) / float64(t.attack)
		}
		v := t.amp * env * triangle(sec*t.freq)
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

const (
	bounceLen  = 60 * time.Millisecond
	captureLen = 90 * time.Millisecond
	escapeLen  = 120 * time.Millisecond
	winNoteLen = 140 * time.Millisecond
)

// CueLength is the duration of the cue emitted for kind.
func CueLength(kind dynamo.EventKind) time.Duration {
	switch kind {
	case dynamo.EventBounce:
		return bounceLen
	case dynamo.EventCapture:
		return 2 * captureLen
	case dynamo.EventEscape:
		return escapeLen
	case dynamo.EventWin:
		return time.Duration(len(chord)) * winNoteLen
	}
	return 0
}

// Cue builds the sound for one event. Bounces get louder and higher with
// impact speed; captures rise, escapes fall, a win arpeggiates the chord.
func Cue(ev dynamo.Event, sr beep.SampleRate) beep.Streamer {
	switch ev.Kind {
	case dynamo.EventBounce:
		s := math.Min(ev.Speed, 20) / 20
		return newTone(180+220*s, 0.15+0.25*s, bounceLen, sr)
	case dynamo.EventCapture:
		base := chord[ev.Zone%len(chord)]
		return beep.Seq(
			newTone(base, 0.3, captureLen, sr),
			newTone(base*1.5, 0.3, captureLen, sr),
		)
	case dynamo.EventEscape:
		base := chord[ev.Zone%len(chord)]
		return newTone(base/2, 0.25, escapeLen, sr)
	case dynamo.EventWin:
		notes := make([]beep.Streamer, len(chord))
		for i, f := range chord {
			notes[i] = newTone(f, 0.35, winNoteLen, sr)
		}
		return beep.Seq(notes...)
	}
	return beep.Silence(0)
}
