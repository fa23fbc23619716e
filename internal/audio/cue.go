// Package audio synthesises the short cues played by collisions.
package audio

// Cue identifies a collision sound.
type Cue int

const (
	// CueBounce plays when an entity rebounds off a bouncy cell.
	CueBounce Cue = iota
	// CueBlocked plays when terrain stops an assembly.
	CueBlocked
)

func (c Cue) String() string {
	switch c {
	case CueBounce:
		return "bounce"
	case CueBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}
