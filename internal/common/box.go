package common

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// FullCube is the collision box of a solid unit cell.
var FullCube = cube.Box(0, 0, 0, 1, 1, 1)

// Center returns the center point of box.
func Center(box cube.BBox) mgl64.Vec3 {
	return box.Min().Add(box.Max()).Mul(0.5)
}

// Size returns the edge lengths of box along X, Y and Z.
func Size(box cube.BBox) mgl64.Vec3 {
	return box.Max().Sub(box.Min())
}

// HalfExtents returns half the edge lengths of box.
func HalfExtents(box cube.BBox) mgl64.Vec3 {
	return Size(box).Mul(0.5)
}

// EntityBox returns the box of an entity standing at feet position pos.
func EntityBox(pos mgl64.Vec3, width, height float64) cube.BBox {
	hw := width / 2
	return cube.Box(pos[0]-hw, pos[1], pos[2]-hw, pos[0]+hw, pos[1]+height, pos[2]+hw)
}

// PosFloor returns the cell containing v.
func PosFloor(v mgl64.Vec3) cube.Pos {
	return cube.Pos{int(math.Floor(v[0])), int(math.Floor(v[1])), int(math.Floor(v[2]))}
}

// PosSub returns a - b.
func PosSub(a, b cube.Pos) cube.Pos {
	return cube.Pos{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Cells returns every cell overlapped by box, in X-major then Y then Z order.
func Cells(box cube.BBox) []cube.Pos {
	lo, hi := PosFloor(box.Min()), PosFloor(box.Max())
	if lo[0] > hi[0] || lo[1] > hi[1] || lo[2] > hi[2] {
		return nil
	}
	cells := make([]cube.Pos, 0, (hi[0]-lo[0]+1)*(hi[1]-lo[1]+1)*(hi[2]-lo[2]+1))
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				cells = append(cells, cube.Pos{x, y, z})
			}
		}
	}
	return cells
}

// CellCount returns the number of cells overlapped by box.
func CellCount(box cube.BBox) int {
	lo, hi := PosFloor(box.Min()), PosFloor(box.Max())
	n := 1
	for i := 0; i < 3; i++ {
		if hi[i] < lo[i] {
			return 0
		}
		n *= hi[i] - lo[i] + 1
	}
	return n
}

// facingOrder is the order faces are tried in by FaceFromVector.
var facingOrder = [...]cube.Face{cube.FaceDown, cube.FaceUp, cube.FaceNorth, cube.FaceSouth, cube.FaceWest, cube.FaceEast}

// FaceFromVector returns the face whose direction best matches v. Ties
// favour Y, then Z, then X. The zero vector faces north.
func FaceFromVector(v mgl64.Vec3) cube.Face {
	best, most := cube.FaceNorth, 0.0
	for _, f := range facingOrder {
		d := cube.Pos{}.Side(f)
		if dot := v[0]*float64(d[0]) + v[1]*float64(d[1]) + v[2]*float64(d[2]); dot > most {
			best, most = f, dot
		}
	}
	return best
}

// FacePositive reports whether f points along a positive axis.
func FacePositive(f cube.Face) bool {
	d := cube.Pos{}.Side(f)
	return d[0]+d[1]+d[2] > 0
}
