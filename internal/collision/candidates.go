package collision

import (
	"assembly-sim/internal/assembly"
	"assembly-sim/internal/common"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// candidates returns the local-space boxes an entity sweeping through
// sweep may touch: the simplified collider list when one is installed,
// otherwise the shapes of the cells around the sweep.
func candidates(a *assembly.Assembly, sweep cube.BBox) []cube.BBox {
	if boxes, ok := a.SimplifiedColliders(); ok {
		return boxes
	}

	size := common.Size(sweep)
	width, height := size[0], size[1]
	horizontal, vertical := 1.0, 1.0
	if height > width && width != 0 {
		horizontal = height / width
	}
	if width > height && height != 0 {
		vertical = width / height
	}
	scan := sweep.Grow(0.5).GrowVec3(mgl64.Vec3{horizontal, vertical, horizontal})

	var boxes []cube.BBox
	add := func(c assembly.Cell) {
		if !c.Material.HasShape() {
			return
		}
		offset := mgl64.Vec3{float64(c.Pos[0]), float64(c.Pos[1]), float64(c.Pos[2])}
		for _, b := range c.Material.Shape {
			boxes = append(boxes, b.Translate(offset))
		}
	}

	if common.CellCount(scan) > a.Len() {
		lo, hi := common.PosFloor(scan.Min()), common.PosFloor(scan.Max())
		for _, c := range a.Cells() {
			if inRange(c.Pos, lo, hi) {
				add(c)
			}
		}
		return boxes
	}
	for _, p := range common.Cells(scan) {
		if c, ok := a.Cell(p); ok {
			add(c)
		}
	}
	return boxes
}

func inRange(p, lo, hi cube.Pos) bool {
	for i := 0; i < 3; i++ {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}
