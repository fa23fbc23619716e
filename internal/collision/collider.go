package collision

import (
	"assembly-sim/internal/assembly"
	"assembly-sim/internal/common"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/obb"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// boundsGrowth keeps touching boxes overlapping by a hair so resting
	// contacts are reported as surfaces.
	boundsGrowth = 1e-7
	// passSpread widens the horizontal correction before the vertical
	// pass so repeated rounding cannot tunnel the entity back in.
	passSpread = 129.0 / 128
	// gatherGrowth and gatherHeight size the region entities are gathered
	// from around an assembly.
	gatherGrowth = 2
	gatherHeight = 32
)

// Collider resolves entities against assemblies. It is not safe for
// concurrent use; the simulation calls it from the tick goroutine.
type Collider struct {
	deps Deps
	opts Options
}

// New creates a Collider.
func New(deps Deps, opts Options) *Collider {
	return &Collider{deps: deps, opts: opts}
}

// Response reports what resolution did to one entity.
type Response struct {
	Entity *entity.Entity
	Role   Role
	// Skipped entities were left untouched because of their role.
	Skipped bool
	// Bounced entities were reflected and received no other response.
	Bounced bool

	Hard         bool
	Surface      bool
	Temporal     bool
	TimeOfImpact float64

	PositionDelta      mgl64.Vec3
	VelocityDelta      mgl64.Vec3
	OnGround           bool
	ContactPointMotion mgl64.Vec3
}

// GatherRegion returns the world box entities must intersect to be
// resolved against a. It reports false for an assembly without cells.
func GatherRegion(a *assembly.Assembly) (cube.BBox, bool) {
	bounds, ok := a.Bounds()
	if !ok {
		return cube.BBox{}, false
	}
	return bounds.Grow(gatherGrowth).Extend(mgl64.Vec3{0, gatherHeight, 0}), true
}

// CollideEntities resolves every entity against a for this tick. Entities
// are expected to come from GatherRegion; all of them see a as it was at
// the start of the call.
func (c *Collider) CollideEntities(a *assembly.Assembly, entities []*entity.Entity) []Response {
	if a == nil {
		return nil
	}
	if _, ok := a.Bounds(); !ok {
		return nil
	}

	out := make([]Response, 0, len(entities))
	localSeen := false
	for _, e := range entities {
		r := Response{Entity: e, Role: Classify(e, c.opts.LocalPlayer)}
		switch r.Role {
		case RoleRemote:
			r.Skipped = true
		case RoleAuthoritative:
			e.FloatingTicks = 0
			r.Skipped = true
		case RoleLocal:
			// Stale copies of the local player can linger; only the first
			// is resolved.
			r.Skipped = localSeen
			localSeen = true
		}
		if !r.Skipped {
			c.resolve(a, e, &r)
		}
		out = append(out, r)
	}
	return out
}

// accumulator folds separation manifolds for one entity.
type accumulator struct {
	response mgl64.Vec3
	// toi is the nearest temporal time of impact, 1 when there is none.
	toi      float64
	normal   mgl64.Vec3
	location mgl64.Vec3
	surface  bool
}

func (acc *accumulator) fold(m *obb.Manifold, vertical bool, stepHeight float64) {
	if vertical && !acc.surface {
		acc.surface = m.Surface()
	}
	toi := m.TimeOfImpact
	temporal := m.Temporal()
	if !temporal {
		if sep, ok := m.Separation(stepHeight); ok {
			acc.response = acc.response.Add(sep)
			toi = 0
		}
	}

	// Equal temporal hits keep the first; overlaps always replace.
	if toi >= 0 && acc.toi > toi {
		if !common.IsZero(m.Normal) {
			acc.normal = m.Normal
		}
		if !common.IsZero(m.ContactPoint) {
			acc.location = m.ContactPoint
		}
	}
	if temporal && acc.toi > toi {
		acc.toi = toi
	}
}

func (acc *accumulator) hard() bool     { return !common.IsZero(acc.response) }
func (acc *accumulator) temporal() bool { return acc.toi != 1 }

// sweep runs the separation test of box moving by motion against every
// candidate. Tilted assemblies get a horizontal pass before the vertical
// one.
func sweep(box obb.Box, motion, size mgl64.Vec3, stepHeight float64, boxes []cube.BBox, tilted bool) accumulator {
	acc := accumulator{toi: 1}
	center := box.Center
	for pass := 0; ; pass++ {
		vertical := !tilted || pass > 0
		for _, bb := range boxes {
			current := center.Add(acc.response)
			if !obb.Reachable(current, motion, size, bb) {
				continue
			}
			m := box.WithCenter(current).Intersect(bb, motion)
			if m == nil {
				continue
			}
			acc.fold(m, vertical, stepHeight)
		}
		if vertical {
			break
		}
		if acc.response[1] == 0 && !acc.temporal() {
			break
		}
		acc.response = mgl64.Vec3{acc.response[0] * passSpread, 0, acc.response[2] * passSpread}
	}
	return acc
}

func (c *Collider) resolve(a *assembly.Assembly, e *entity.Entity, r *Response) {
	frame := a.Frame()
	bounds := e.Bounds()
	local := bounds.Translate(frame.EntityTranslation(e.Pos, e.Height)).Grow(boundsGrowth)
	motion := frame.DirToLocal(e.Velocity.Sub(a.Motion()))

	box := obb.New(local, frame.Basis())
	size := common.Size(bounds)
	acc := sweep(box, motion, size, e.StepHeight, candidates(a, local.Extend(motion)), a.HasTilt())

	r.Hard = acc.hard()
	r.Surface = acc.surface
	r.Temporal = acc.temporal()
	if r.Temporal {
		r.TimeOfImpact = acc.toi
	}
	c.respond(a, e, frame, motion, acc, r)
}

func (c *Collider) debugf(format string, args ...any) {
	if c.opts.Debugf != nil {
		c.opts.Debugf(format, args...)
	}
}
