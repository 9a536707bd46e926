package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/san-kum/tiltbox/internal/dynamo"
)

// Player plays event cues on the default output device. It implements
// dynamo.Observer; events arriving before Start or after Stop are dropped.
type Player struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume *effects.Volume
	active bool
}

// NewPlayer takes a linear gain in [0, 1].
func NewPlayer(gain float64) *Player {
	mixer := &beep.Mixer{}
	return &Player{
		mixer:  mixer,
		volume: &effects.Volume{Streamer: mixer, Base: 2, Volume: gainToVolume(gain), Silent: gain <= 0},
	}
}

func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.volume)
	p.active = true
	return nil
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.mixer.Clear()
	p.active = false
}

func (p *Player) OnEvent(ev dynamo.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	speaker.Lock()
	p.mixer.Add(Cue(ev, SampleRate))
	speaker.Unlock()
}

// gainToVolume maps a linear gain to the log2 volume effects.Volume expects.
func gainToVolume(gain float64) float64 {
	if gain <= 0 {
		return 0
	}
	if gain > 1 {
		gain = 1
	}
	return math.Log2(gain)
}
