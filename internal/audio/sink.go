package audio

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Event is one played cue.
type Event struct {
	Cue    Cue
	Pos    mgl64.Vec3
	Volume float64
	Pitch  float64
}

// Sink renders played cues into an in-memory track, one after another, and
// keeps a log of them. The track can be written out as a WAV file.
type Sink struct {
	mu     sync.Mutex
	events []Event
	track  *beep.Buffer
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{track: beep.NewBuffer(Format)}
}

// Play synthesises cue and appends it to the track.
func (s *Sink) Play(cue Cue, pos mgl64.Vec3, volume, pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{Cue: cue, Pos: pos, Volume: volume, Pitch: pitch})
	s.track.Append(Synthesize(cue, volume, pitch))
}

// Events returns a copy of the played cues.
func (s *Sink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Count returns how often cue was played.
func (s *Sink) Count(cue Cue) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Cue == cue {
			n++
		}
	}
	return n
}

// Samples returns the length of the rendered track in samples.
func (s *Sink) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.Len()
}

// WriteWAV writes the rendered track to filename.
func (s *Sink) WriteWAV(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", filename, err)
	}
	defer f.Close()

	var stream beep.Streamer = s.track.Streamer(0, s.track.Len())
	if s.track.Len() == 0 {
		stream = beep.Silence(1)
	}
	if err := wav.Encode(f, stream, Format); err != nil {
		return fmt.Errorf("audio: encode %s: %w", filename, err)
	}
	return nil
}

// Discard drops every cue.
type Discard struct{}

// Play does nothing.
func (Discard) Play(Cue, mgl64.Vec3, float64, float64) {}
