package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
)

// Cue timings.
const (
	lockDuration     = 40 * time.Millisecond
	noteDuration     = 70 * time.Millisecond
	gameOverDuration = 180 * time.Millisecond
	attack           = 4 * time.Millisecond
	release          = 25 * time.Millisecond
)

// Line-clear arpeggio, C major up to the octave (C5 E5 G5 C6).
var arpeggio = [...]float64{523.25, 659.25, 783.99, 1046.50}

// Game-over fall (A4 F4 D4 A3).
var gameOverNotes = [...]float64{440.00, 349.23, 293.66, 220.00}

// oscillator generates a fixed-length tone
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a tone of the given frequency and length
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s, which is expected to last duration
func NewEnvelope(s beep.Streamer, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; remaining < e.release && e.release > 0 {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; log2(0) is -Inf so 0 means silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	var tone beep.Streamer = NewOscillator(freq, d, wave, rate)
	if wave == WaveSine {
		// SineTone rejects frequencies at or above the Nyquist limit.
		if sine, err := generators.SineTone(rate, freq); err == nil {
			tone = beep.Take(rate.N(d), sine)
		}
	}
	return NewEnvelope(tone, d, rate)
}

// LockSound is a short low click.
func LockSound(rate beep.SampleRate, vol float64) beep.Streamer {
	return newVolume(note(180, lockDuration, WaveSquare, rate), vol*0.5)
}

// LineClearSound plays one rising note per cleared line.
func LineClearSound(rate beep.SampleRate, lines int, vol float64) beep.Streamer {
	lines = max(1, min(lines, len(arpeggio)))
	notes := make([]beep.Streamer, 0, lines)
	for _, freq := range arpeggio[:lines] {
		notes = append(notes, note(freq, noteDuration, WaveSine, rate))
	}
	return newVolume(beep.Seq(notes...), vol)
}

// GameOverSound is a descending phrase with a short rest before the last note.
func GameOverSound(rate beep.SampleRate, vol float64) beep.Streamer {
	last := len(gameOverNotes) - 1
	parts := make([]beep.Streamer, 0, len(gameOverNotes)+1)
	for _, freq := range gameOverNotes[:last] {
		parts = append(parts, note(freq, gameOverDuration, WaveSquare, rate))
	}
	parts = append(parts,
		beep.Silence(rate.N(gameOverDuration/2)),
		note(gameOverNotes[last], 2*gameOverDuration, WaveSquare, rate),
	)
	return newVolume(beep.Seq(parts...), vol*0.6)
}

// DualSpawnSound is two quick high blips.
func DualSpawnSound(rate beep.SampleRate, vol float64) beep.Streamer {
	blip := func() beep.Streamer { return note(1318.51, lockDuration, WaveSine, rate) }
	return newVolume(beep.Seq(blip(), beep.Silence(rate.N(lockDuration)), blip()), vol*0.4)
}
