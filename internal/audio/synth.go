package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate of every synthesised cue.
const SampleRate = beep.SampleRate(44100)

// Format is the stream format of synthesised cues.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// oscillator generates a sine sweep from freq to freq*bend.
type oscillator struct {
	freq     float64
	bend     float64
	phase    float64
	position int
	duration int
}

func newOscillator(freq, bend float64, duration time.Duration) beep.Streamer {
	return &oscillator{freq: freq, bend: bend, duration: SampleRate.N(duration)}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq * math.Pow(o.bend, progress)
		o.phase += freq / float64(SampleRate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   SampleRate.N(attack),
		release:  SampleRate.N(release),
		total:    SampleRate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.position >= releaseStart && e.release > 0 {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

type voice struct {
	freq     float64
	bend     float64
	duration time.Duration
	attack   time.Duration
	release  time.Duration
}

var voices = map[Cue]voice{
	// Springy upward chirp.
	CueBounce: {freq: 220, bend: 2.5, duration: 180 * time.Millisecond, attack: 5 * time.Millisecond, release: 120 * time.Millisecond},
	// Low falling thud.
	CueBlocked: {freq: 110, bend: 0.5, duration: 120 * time.Millisecond, attack: 2 * time.Millisecond, release: 80 * time.Millisecond},
}

// Synthesize returns the stream of cue at the given volume. Pitch scales
// the frequency; values at or below zero fall back to 1.
func Synthesize(cue Cue, volume, pitch float64) beep.Streamer {
	v, ok := voices[cue]
	if !ok {
		return beep.Silence(0)
	}
	if pitch <= 0 {
		pitch = 1
	}
	osc := newOscillator(v.freq*pitch, v.bend, v.duration)
	return withVolume(newEnvelope(osc, v.duration, v.attack, v.release), volume)
}

// Duration returns how long cue plays.
func Duration(cue Cue) time.Duration {
	return voices[cue].duration
}
