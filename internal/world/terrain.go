// Package world holds the static voxel terrain assemblies move through.
package world

import (
	"fmt"

	"assembly-sim/internal/common"
	"assembly-sim/internal/material"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Regions are 16x16x16 cells; a cell's region is its position shifted right.
const regionShift = 4

// RegionCoord addresses one loaded region.
type RegionCoord struct{ X, Y, Z int32 }

// RegionOf returns the region containing pos.
func RegionOf(pos cube.Pos) RegionCoord {
	return RegionCoord{int32(pos[0] >> regionShift), int32(pos[1] >> regionShift), int32(pos[2] >> regionShift)}
}

// Terrain is a sparse voxel store. Cells outside loaded regions are
// unknown: they are never reported as air and they stop movement.
type Terrain struct {
	materials *material.Table
	cells     map[cube.Pos]*material.Props
	loaded    map[RegionCoord]struct{}
}

// New creates empty, fully unloaded terrain.
func New(materials *material.Table) *Terrain {
	return &Terrain{
		materials: materials,
		cells:     make(map[cube.Pos]*material.Props, 1024),
		loaded:    make(map[RegionCoord]struct{}, 64),
	}
}

// Materials returns the table cells are resolved against.
func (t *Terrain) Materials() *material.Table {
	return t.materials
}

// LoadRegion marks region c as loaded.
func (t *Terrain) LoadRegion(c RegionCoord) {
	t.loaded[c] = struct{}{}
}

// UnloadRegion marks region c as unloaded. Its cells are kept.
func (t *Terrain) UnloadRegion(c RegionCoord) {
	delete(t.loaded, c)
}

// LoadBox loads every region overlapped by box.
func (t *Terrain) LoadBox(box cube.BBox) {
	lo, hi := RegionOf(common.PosFloor(box.Min())), RegionOf(common.PosFloor(box.Max()))
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				t.LoadRegion(RegionCoord{x, y, z})
			}
		}
	}
}

// Loaded reports whether pos lies in a loaded region.
func (t *Terrain) Loaded(pos cube.Pos) bool {
	_, ok := t.loaded[RegionOf(pos)]
	return ok
}

// Material returns the material at pos, or nil for air.
func (t *Terrain) Material(pos cube.Pos) *material.Props {
	return t.cells[pos]
}

// Set places m at pos. A nil material clears the cell.
func (t *Terrain) Set(pos cube.Pos, m *material.Props) {
	if m == nil {
		delete(t.cells, pos)
		return
	}
	t.cells[pos] = m
}

// SetNamed places the named material at pos.
func (t *Terrain) SetNamed(pos cube.Pos, name string) error {
	m, ok := t.materials.Lookup(name)
	if !ok {
		return fmt.Errorf("world: unknown material %q", name)
	}
	t.Set(pos, m)
	return nil
}

// Fill places m in every cell of the inclusive range from..to.
func (t *Terrain) Fill(from, to cube.Pos, m *material.Props) {
	for x := min(from[0], to[0]); x <= max(from[0], to[0]); x++ {
		for y := min(from[1], to[1]); y <= max(from[1], to[1]); y++ {
			for z := min(from[2], to[2]); z <= max(from[2], to[2]); z++ {
				t.Set(cube.Pos{x, y, z}, m)
			}
		}
	}
}

// Len returns the number of non-air cells.
func (t *Terrain) Len() int {
	return len(t.cells)
}

// SetMaterials swaps the material table, re-resolving every cell by name.
// Cells whose material disappeared keep their old properties.
func (t *Terrain) SetMaterials(tbl *material.Table) {
	t.materials = tbl
	for pos, old := range t.cells {
		if m, ok := tbl.Lookup(old.Name); ok {
			t.cells[pos] = m
		}
	}
}

// Boxes returns the world-space collision boxes of every cell near area.
// Unloaded cells count as full cubes.
func (t *Terrain) Boxes(area cube.BBox) []cube.BBox {
	var boxes []cube.BBox
	for _, pos := range common.Cells(area.Grow(1)) {
		offset := mgl64.Vec3{float64(pos[0]), float64(pos[1]), float64(pos[2])}
		if !t.Loaded(pos) {
			boxes = append(boxes, common.FullCube.Translate(offset))
			continue
		}
		m := t.cells[pos]
		if !m.HasShape() {
			continue
		}
		for _, b := range m.Shape {
			boxes = append(boxes, b.Translate(offset))
		}
	}
	return boxes
}
