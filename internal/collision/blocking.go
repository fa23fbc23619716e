package collision

import (
	"assembly-sim/internal/assembly"
	"assembly-sim/internal/common"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// CollideBlocks reports whether the translation a intends this tick would
// run it into terrain or into another assembly. Callers must not apply
// the translation when it returns true. Assemblies are treated as
// axis-aligned and grid-snapped here, as only translating assemblies
// collide with terrain.
func (c *Collider) CollideBlocks(a *assembly.Assembly) bool {
	if a == nil || !a.TerrainCollision {
		return false
	}
	bounds, ok := a.Bounds()
	if !ok || common.IsZero(a.Velocity) {
		return false
	}

	dir := common.FaceFromVector(a.Velocity)
	gridPos := common.PosFloor(a.Position)
	if common.FacePositive(dir) {
		gridPos = gridPos.Side(dir)
	}
	if c.collidesWithTerrain(a, gridPos, dir) {
		return true
	}

	if c.deps.Assemblies == nil {
		return false
	}
	swept := bounds.Translate(a.Velocity)
	for _, other := range c.deps.Assemblies.AssembliesNear(bounds.Grow(1), a) {
		if other == nil || other == a || !other.TerrainCollision {
			continue
		}
		otherBounds, ok := other.Bounds()
		if !ok {
			continue
		}
		if !swept.IntersectsWith(otherBounds.Translate(other.Velocity)) {
			continue
		}
		otherGrid := common.PosFloor(other.Position)
		for _, p := range a.Colliders(dir) {
			if _, occupied := other.Cell(common.PosSub(p.Add(gridPos), otherGrid)); occupied {
				c.debugf("collision: %s blocked by %s", a, other)
				return true
			}
		}
	}
	return false
}

// collidesWithTerrain checks the world cells the leading cells of a would
// enter when its anchor moves to gridPos.
func (c *Collider) collidesWithTerrain(a *assembly.Assembly, gridPos cube.Pos, dir cube.Face) bool {
	for _, p := range a.Colliders(dir) {
		target := p.Add(gridPos)
		if !c.deps.Terrain.Loaded(target) {
			c.debugf("collision: %s blocked by unloaded cell %v", a, target)
			return true
		}
		m := c.deps.Terrain.Material(target)

		cell, _ := a.Cell(p)
		if cell.Material.Breaker {
			if !m.Breakable() && m.HasShape() {
				return true
			}
			continue
		}

		if m.Passable(dir) && p == (cube.Pos{}) {
			continue
		}
		if m != nil && m.Decoration {
			continue
		}
		if m.HasShape() && !m.Replaceable {
			return true
		}
	}
	return false
}
