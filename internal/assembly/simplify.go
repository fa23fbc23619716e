package assembly

import (
	"assembly-sim/internal/common"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// SimplifyColliders replaces the per-cell collision shapes used for
// entities with a precomputed list in which runs of full cubes along X are
// merged into single boxes. Other shapes are kept as they are.
func (a *Assembly) SimplifyColliders() {
	var boxes []cube.BBox
	var run []cube.Pos

	flush := func() {
		if len(run) == 0 {
			return
		}
		first, last := run[0], run[len(run)-1]
		boxes = append(boxes, cube.Box(
			float64(first[0]), float64(first[1]), float64(first[2]),
			float64(last[0]+1), float64(last[1]+1), float64(last[2]+1),
		))
		run = run[:0]
	}

	// Iterate rows of constant (y, z) in ascending x.
	rows := make(map[[2]int][]cube.Pos)
	var keys [][2]int
	for _, p := range a.order {
		key := [2]int{p[1], p[2]}
		if _, ok := rows[key]; !ok {
			keys = append(keys, key)
		}
		rows[key] = append(rows[key], p)
	}

	for _, key := range keys {
		for _, p := range rows[key] {
			c := a.cells[p]
			if isFullCube(c) {
				if len(run) > 0 && run[len(run)-1][0] != p[0]-1 {
					flush()
				}
				run = append(run, p)
				continue
			}
			flush()
			offset := mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
			for _, box := range c.Material.Shape {
				boxes = append(boxes, box.Translate(offset))
			}
		}
		flush()
	}

	a.simplified = boxes
	a.hasSimplified = true
}

// ClearSimplifiedColliders reverts to per-cell collision shapes.
func (a *Assembly) ClearSimplifiedColliders() {
	a.simplified = nil
	a.hasSimplified = false
}

// SimplifiedColliders returns the precomputed collider list, if one is
// installed.
func (a *Assembly) SimplifiedColliders() ([]cube.BBox, bool) {
	return a.simplified, a.hasSimplified
}

func isFullCube(c Cell) bool {
	return len(c.Material.Shape) == 1 && c.Material.Shape[0] == common.FullCube
}
