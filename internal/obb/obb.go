// Package obb implements the continuous separating-axis test between a
// moving oriented box and a static axis-aligned box.
package obb

import (
	"math"

	"assembly-sim/internal/common"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// axisEpsilon is the length below which an edge cross product is too
	// close to parallel to serve as a separating axis.
	axisEpsilon = 1e-6
	// motionEpsilon is the projected speed below which an axis is treated as
	// stationary.
	motionEpsilon = 1e-12
	// touchEpsilon is the time of impact below which a hit counts as
	// already touching.
	touchEpsilon = 1e-7
	// ContactInset is how far contact points are pushed into the static box.
	ContactInset = 1.0 / 8
	// ReachMargin is the slack added around an entity by Reachable.
	ReachMargin = 1.0
)

// Box is an oriented box. The columns of Axes are its unit axes.
type Box struct {
	Center mgl64.Vec3
	Half   mgl64.Vec3
	Axes   mgl64.Mat3
}

// New returns the box with the extents of bb rotated by axes around the
// center of bb.
func New(bb cube.BBox, axes mgl64.Mat3) Box {
	return Box{Center: common.Center(bb), Half: common.HalfExtents(bb), Axes: axes}
}

// Axis returns the i-th axis of the box.
func (b Box) Axis(i int) mgl64.Vec3 {
	return b.Axes.Col(i)
}

// Up returns the box axis that points up in the box's own frame.
func (b Box) Up() mgl64.Vec3 {
	return b.Axes.Col(1)
}

// WithCenter returns a copy of b centered at c.
func (b Box) WithCenter(c mgl64.Vec3) Box {
	b.Center = c
	return b
}

// radius returns the half length of the projection of b onto unit axis l.
func (b Box) radius(l mgl64.Vec3) float64 {
	r := 0.0
	for i := 0; i < 3; i++ {
		r += b.Half[i] * math.Abs(b.Axis(i).Dot(l))
	}
	return r
}

// support returns the vertex of b furthest along dir. Axes perpendicular
// to dir contribute nothing, so face contacts land on the face center.
func (b Box) support(dir mgl64.Vec3) mgl64.Vec3 {
	p := b.Center
	for i := 0; i < 3; i++ {
		axis := b.Axis(i)
		d := axis.Dot(dir)
		if math.Abs(d) < axisEpsilon {
			continue
		}
		p = p.Add(axis.Mul(b.Half[i] * common.Signum(d)))
	}
	return p
}

// separatingAxes returns the candidate axes against an axis-aligned box:
// the three world axes, the three box axes and their non-degenerate cross
// products.
func (b Box) separatingAxes() []mgl64.Vec3 {
	axes := make([]mgl64.Vec3, 0, 15)
	world := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	axes = append(axes, world[:]...)
	for i := 0; i < 3; i++ {
		axes = append(axes, b.Axis(i))
	}
	for _, w := range world {
		for i := 0; i < 3; i++ {
			c := w.Cross(b.Axis(i))
			l := c.Len()
			if l < axisEpsilon {
				continue
			}
			axes = append(axes, c.Mul(1/l))
		}
	}
	return axes
}

// Reachable is the cheap bound run before the exact test: it reports
// whether, on every axis, a box of size entitySize centered at center could
// come within ReachMargin of bb while moving by motion.
func Reachable(center, motion, entitySize mgl64.Vec3, bb cube.BBox) bool {
	c, half := common.Center(bb), common.HalfExtents(bb)
	for i := 0; i < 3; i++ {
		gap := math.Min(math.Abs(center[i]-c[i]), math.Abs(center[i]+motion[i]-c[i]))
		if gap-entitySize[i]-ReachMargin > half[i] {
			return false
		}
	}
	return true
}

// Intersect sweeps b along motion against the static box bb. It returns nil
// when the boxes do not touch within the motion, which covers [0, 1].
// Touching counts as contact.
func (b Box) Intersect(bb cube.BBox, motion mgl64.Vec3) *Manifold {
	sc, sh := common.Center(bb), common.HalfExtents(bb)
	up := b.Up()

	tEnter, tExit := math.Inf(-1), math.Inf(1)
	var enterNormal mgl64.Vec3

	depth := math.Inf(1)
	var depthNormal mgl64.Vec3
	lift := math.Inf(1)

	for _, l := range b.separatingAxes() {
		d := b.Center.Sub(sc).Dot(l)
		r := b.radius(l) + sh[0]*math.Abs(l[0]) + sh[1]*math.Abs(l[1]) + sh[2]*math.Abs(l[2])
		v := motion.Dot(l)

		// Direction from the static box towards b on this axis.
		n := l
		if d < 0 {
			n = l.Mul(-1)
		}

		if math.Abs(v) < motionEpsilon {
			if math.Abs(d) > r {
				return nil
			}
		} else {
			lo, hi := (-r-d)/v, (r-d)/v
			if lo > hi {
				lo, hi = hi, lo
			}
			if lo > tEnter {
				tEnter = lo
				enterNormal = n
			}
			if hi < tExit {
				tExit = hi
			}
			if tEnter > tExit {
				return nil
			}
		}

		if pen := r - math.Abs(d); pen < depth {
			depth = pen
			depthNormal = n
		}
		if u := up.Dot(l); math.Abs(u) > axisEpsilon {
			if s := (math.Copysign(r, u) - d) / u; s < lift {
				lift = s
			}
		}
	}

	if tExit < 0 || tEnter > 1 {
		return nil
	}

	m := &Manifold{up: up}
	if tEnter <= touchEpsilon {
		m.discrete = true
		m.Normal = depthNormal
		m.depth = math.Max(0, depth)
		m.lift = math.Max(0, lift)
	} else {
		m.TimeOfImpact = tEnter
		m.Normal = enterNormal
	}
	m.ContactPoint = contactPoint(b.WithCenter(b.Center.Add(motion.Mul(m.TimeOfImpact))), bb, m.Normal)
	return m
}

// contactPoint returns the support point of b towards the static box,
// clamped onto that box and inset into it along the normal.
func contactPoint(b Box, bb cube.BBox, normal mgl64.Vec3) mgl64.Vec3 {
	if common.IsZero(normal) {
		return common.Zero
	}
	p := b.support(normal.Mul(-1))
	lo, hi := bb.Min(), bb.Max()
	for i := 0; i < 3; i++ {
		p[i] = math.Max(lo[i], math.Min(hi[i], p[i]))
	}
	return p.Sub(normal.Mul(ContactInset))
}
