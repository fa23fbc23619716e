package world

import (
	"assembly-sim/internal/common"
	"assembly-sim/internal/entity"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// AllowedMovement returns how far e can actually move along delta through
// the terrain, stepping up ledges no higher than its step height.
func (t *Terrain) AllowedMovement(e *entity.Entity, delta mgl64.Vec3) mgl64.Vec3 {
	if common.IsZero(delta) {
		return delta
	}
	box := e.Bounds()
	boxes := t.Boxes(box.Extend(delta))
	moved := clip(box, delta, boxes)

	collidedX := moved[0] != delta[0]
	collidedY := moved[1] != delta[1]
	collidedZ := moved[2] != delta[2]
	grounded := e.OnGround || (collidedY && delta[1] < 0)
	if e.StepHeight <= 0 || !grounded || !(collidedX || collidedZ) {
		return moved
	}

	step := e.StepHeight
	horizontal := mgl64.Vec3{delta[0], 0, delta[2]}
	boxes = t.Boxes(box.Extend(delta).Extend(mgl64.Vec3{0, step, 0}))

	// Step diagonally, or lift first and then walk; keep whichever gets
	// further horizontally.
	stepped := clip(box, mgl64.Vec3{delta[0], step, delta[2]}, boxes)
	lift := clip(box.Extend(horizontal), mgl64.Vec3{0, step, 0}, boxes)
	if lift[1] < step {
		walked := clip(box.Translate(lift), horizontal, boxes).Add(lift)
		if common.HorizontalLenSqr(walked) > common.HorizontalLenSqr(stepped) {
			stepped = walked
		}
	}
	if common.HorizontalLenSqr(stepped) <= common.HorizontalLenSqr(moved) {
		return moved
	}
	// Settle back down onto whatever was stepped onto.
	settle := clip(box.Translate(stepped), mgl64.Vec3{0, delta[1] - stepped[1], 0}, boxes)
	return stepped.Add(settle)
}

// clip moves box along delta one axis at a time, Y first, stopping each
// axis at the first box in the way.
func clip(box cube.BBox, delta mgl64.Vec3, boxes []cube.BBox) mgl64.Vec3 {
	var out mgl64.Vec3
	for _, axis := range [3]int{1, 0, 2} {
		d := delta[axis]
		if d == 0 {
			continue
		}
		for _, b := range boxes {
			d = axisOffset(b, box, axis, d)
		}
		out[axis] = d
		var move mgl64.Vec3
		move[axis] = d
		box = box.Translate(move)
	}
	return out
}

// axisOffset limits a movement d of moving along axis so that it does not
// pass into static.
func axisOffset(static, moving cube.BBox, axis int, d float64) float64 {
	sMin, sMax := static.Min(), static.Max()
	mMin, mMax := moving.Min(), moving.Max()
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if mMax[i] <= sMin[i] || mMin[i] >= sMax[i] {
			return d
		}
	}
	switch {
	case d > 0 && mMax[axis] <= sMin[axis]:
		if gap := sMin[axis] - mMax[axis]; gap < d {
			d = gap
		}
	case d < 0 && mMin[axis] >= sMax[axis]:
		if gap := sMax[axis] - mMin[axis]; gap > d {
			d = gap
		}
	}
	return d
}
