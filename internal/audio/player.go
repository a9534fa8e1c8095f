// Package audio turns game events into short synthesized sound cues played
// through the system speaker.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
)

const sampleRate = beep.SampleRate(44100)

// Player mixes cues into a single speaker stream.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewPlayer creates a player; nothing is audible until Init succeeds.
func NewPlayer(cfg config.AudioConfig) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: cfg.Volume,
	}
}

// Init opens the audio device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: cannot open speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences pending cues and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Handle plays the cues for one tick's events. Safe to call when the
// device never opened.
func (p *Player) Handle(events []core.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || len(events) == 0 {
		return
	}

	cues := Cues(events, sampleRate, p.volume)
	if len(cues) == 0 {
		return
	}
	speaker.Lock()
	p.mixer.Add(cues...)
	speaker.Unlock()
}

// Cues maps events to streamers. Game over drowns out everything else and a
// line clear replaces the lock click of the piece that completed it.
func Cues(events []core.Event, rate beep.SampleRate, vol float64) []beep.Streamer {
	var (
		locked, dual, over bool
		lines              int
	)
	for _, e := range events {
		switch e.Kind {
		case core.EventLock:
			locked = true
		case core.EventLineClear:
			lines += e.Value
		case core.EventDualSpawn:
			dual = true
		case core.EventGameOver:
			over = true
		}
	}

	if over {
		return []beep.Streamer{GameOverSound(rate, vol)}
	}

	var cues []beep.Streamer
	switch {
	case lines > 0:
		cues = append(cues, LineClearSound(rate, lines, vol))
	case locked:
		cues = append(cues, LockSound(rate, vol))
	}
	if dual {
		cues = append(cues, DualSpawnSound(rate, vol))
	}
	return cues
}
