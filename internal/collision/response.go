package collision

import (
	"math"

	"assembly-sim/internal/assembly"
	"assembly-sim/internal/audio"
	"assembly-sim/internal/common"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/syncnet"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// horizontalEpsilon ignores negligible horizontal corrections when
	// zeroing velocity.
	horizontalEpsilon = 1.0 / 128
	// minRebound is the squared rebound speed below which a bounce is
	// dropped.
	minRebound = 1.0 / 16
	// slideBias is the downward nudge projected onto a slippery surface.
	slideBias  = 0.01
	slideDrag  = 0.8
	slideBase  = 0.2
	slideDrop  = 0.1
	bounceGain = 0.5
	maxSwing   = 1.0
	swingScale = 4.0
)

// respond turns the folded collision of e into velocity and position
// changes. motion is the entity motion relative to a in local space.
func (c *Collider) respond(a *assembly.Assembly, e *entity.Entity, frame assembly.Frame, motion mgl64.Vec3, acc accumulator, r *Response) {
	startPos, startVel := e.Pos, e.Velocity
	defer func() {
		r.PositionDelta = e.Pos.Sub(startPos)
		r.VelocityDelta = e.Velocity.Sub(startVel)
		r.OnGround = e.OnGround
	}()

	hard, temporal := acc.hard(), acc.temporal()
	swept := motion
	if temporal {
		swept = motion.Mul(acc.toi)
	}
	motionResponse := frame.DirToWorld(swept).Add(a.Motion())
	totalResponse := frame.DirToWorld(acc.response)
	normal := frame.DirToWorld(acc.normal)

	var bounce, slide float64
	if !common.IsZero(acc.location) {
		if cell, ok := a.Cell(common.PosFloor(acc.location)); ok {
			bounce = cell.Material.Bounce
			slide = cell.Material.SlideResistance()
		}
	}

	hasNormal := !common.IsZero(normal)
	anyCollision := hard || temporal
	tilted := a.HasTilt()

	if bounce > 0 && hasNormal && anyCollision && bounceEntity(a, e, normal, bounce) {
		r.Bounced = true
		if c.deps.Cues != nil {
			c.deps.Cues.Play(audio.CueBounce, e.Pos, bounceGain, 1)
		}
		return
	}

	velocity := e.Velocity
	if temporal && motionResponse[1] != velocity[1] {
		velocity[1] = motionResponse[1]
	}

	if hard {
		if velocity[0] != 0 && math.Abs(totalResponse[0]) > horizontalEpsilon && opposes(velocity[0], totalResponse[0]) {
			velocity[0] = 0
		}
		if velocity[1] != 0 && totalResponse[1] != 0 && opposes(velocity[1], totalResponse[1]) {
			velocity[1] = a.Motion()[1]
		}
		if velocity[2] != 0 && math.Abs(totalResponse[2]) > horizontalEpsilon && opposes(velocity[2], totalResponse[2]) {
			velocity[2] = 0
		}
	}

	if bounce == 0 && slide > 0 && hasNormal && anyCollision && tilted {
		velocity = slideVelocity(startVel, velocity, common.Normalize(normal), slide)
	}

	if !hard && !acc.surface {
		e.Velocity = velocity
		return
	}

	e.Move(c.deps.Steps.AllowedMovement(e, totalResponse))

	var carry mgl64.Vec3
	if acc.surface {
		e.FallDistance = 0
		a.MarkContact(e.ID)
		canWalk := bounce != 0 || slide == 0
		if canWalk || !tilted {
			if canWalk {
				e.OnGround = true
			}
			if e.Kind == entity.KindItem {
				velocity = mgl64.Vec3{velocity[0] * 0.5, velocity[1], velocity[2] * 0.5}
			}
		}
		carry = a.ContactPointMotion(e.Pos)
		allowed := c.deps.Steps.AllowedMovement(e, carry)
		e.Move(common.Horizontal(allowed))
	}
	r.ContactPointMotion = carry
	e.Velocity = velocity

	if r.Role != RoleLocal || c.deps.Sync == nil {
		return
	}
	walked := e.Pos.Sub(e.PrevPos).Sub(carry)
	swing := math.Min(maxSwing, swingScale*math.Hypot(walked[0], walked[2]))
	if err := c.deps.Sync.SendMotion(syncnet.NewMotionPacket(e.ID, velocity, e.OnGround, swing)); err != nil {
		c.debugf("collision: motion sync for %s: %v", e.ID, err)
	}
}

// opposes reports whether a velocity component points against a
// correction component.
func opposes(v, correction float64) bool {
	return (v > 0) == (correction < 0)
}

// bounceEntity reflects the motion of e relative to the assembly surface
// about normal, scaled by factor. It reports false when the rebound is too
// weak to matter.
func bounceEntity(a *assembly.Assembly, e *entity.Entity, normal mgl64.Vec3, factor float64) bool {
	if factor == 0 || e.BypassesLanding || common.IsZero(normal) {
		return false
	}
	n := common.Normalize(normal)
	surface := a.ContactPointMotion(e.Pos)
	rel := e.Velocity.Sub(surface)
	into := rel.Dot(n)
	if into >= 0 {
		return false
	}
	rebound := -factor * into
	if rebound*rebound <= minRebound {
		return false
	}
	tangent := rel.Sub(n.Mul(into))
	e.Velocity = surface.Add(tangent).Add(n.Mul(rebound))
	return true
}

// slideVelocity makes an entity slip down a slippery tilted surface.
func slideVelocity(start, velocity, normal mgl64.Vec3, slide float64) mgl64.Vec3 {
	in := mgl64.Vec3{0, start[1] - slideBias, 0}
	downhill := common.Normalize(normal.Cross(in.Cross(normal)))
	return common.Horizontal(velocity).Mul(slideDrag).
		Add(downhill.Mul((slideBase + slide) * in.Len())).
		Add(mgl64.Vec3{0, -slideDrop, 0})
}
