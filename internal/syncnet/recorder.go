package syncnet

import "sync"

// Recorder keeps every packet sent to it. It stands in for a connection
// in tests and headless runs.
type Recorder struct {
	mu      sync.Mutex
	packets []MotionPacket
}

// SendMotion records p.
func (r *Recorder) SendMotion(p MotionPacket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, p)
	return nil
}

// Packets returns a copy of the recorded packets.
func (r *Recorder) Packets() []MotionPacket {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MotionPacket, len(r.packets))
	copy(out, r.packets)
	return out
}

// Len returns the number of recorded packets.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}
