package obb

import (
	"assembly-sim/internal/common"

	"github.com/go-gl/mathgl/mgl64"
)

// SurfaceThreshold is the minimum alignment between a contact normal and
// the box's up axis for the contact to count as standing on a surface.
const SurfaceThreshold = 0.5

// Kind classifies a manifold.
type Kind int

const (
	KindNone Kind = iota
	// KindSurface is a resting or overlapping contact from below.
	KindSurface
	// KindTemporal is a hit that happens later within the tick.
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindSurface:
		return "surface"
	case KindTemporal:
		return "temporal"
	default:
		return "none"
	}
}

// Manifold describes one contact between a swept oriented box and a static
// box. Normal points from the static box towards the oriented box; Normal
// and ContactPoint are zero when undefined.
type Manifold struct {
	TimeOfImpact float64
	Normal       mgl64.Vec3
	ContactPoint mgl64.Vec3

	// discrete manifolds overlap (or touch) at the start of the motion.
	discrete bool
	up       mgl64.Vec3
	// depth is the minimum penetration along Normal.
	depth float64
	// lift is how far the box must rise along up to separate.
	lift float64
}

// Kind classifies the contact.
func (m *Manifold) Kind() Kind {
	switch {
	case m.TimeOfImpact > 0 && m.TimeOfImpact < 1:
		return KindTemporal
	case m.TimeOfImpact == 0 && m.Normal.Dot(m.up) >= SurfaceThreshold:
		return KindSurface
	}
	return KindNone
}

// Temporal reports whether the contact happens strictly inside the tick.
func (m *Manifold) Temporal() bool {
	return m.Kind() == KindTemporal
}

// Surface reports whether the box rests on the static box.
func (m *Manifold) Surface() bool {
	return m.Kind() == KindSurface
}

// Separation returns the smallest correction that pushes an overlapping
// box out: straight up along the box's up axis when that lift is within
// stepHeight, otherwise along the normal by the penetration depth. It
// reports false when the boxes do not overlap or the correction is zero.
func (m *Manifold) Separation(stepHeight float64) (mgl64.Vec3, bool) {
	if !m.discrete {
		return common.Zero, false
	}
	var v mgl64.Vec3
	if m.lift <= stepHeight {
		v = m.up.Mul(m.lift)
	} else {
		v = m.Normal.Mul(m.depth)
	}
	if common.IsZero(v) {
		return common.Zero, false
	}
	return v, true
}
