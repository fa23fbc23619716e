package assembly

import (
	"github.com/go-gl/mathgl/mgl64"
)

// cellCenter is the offset from a cell corner to its center. Rotations turn
// the assembly around the center of its anchor cell.
var cellCenter = mgl64.Vec3{0.5, 0.5, 0.5}

// Frame converts between world space and an assembly's local space, where
// the cell at local position p occupies [p, p+1].
type Frame struct {
	Anchor  mgl64.Vec3
	toLocal mgl64.Mat3
	toWorld mgl64.Mat3
}

// NewFrame returns the frame of an assembly anchored at anchor with the
// given rotation.
func NewFrame(anchor mgl64.Vec3, r Rotation) Frame {
	basis := r.Basis()
	return Frame{Anchor: anchor, toLocal: basis, toWorld: basis.Transpose()}
}

// Basis returns the world-to-local rotation. Its columns are the world
// axes expressed in local space.
func (f Frame) Basis() mgl64.Mat3 {
	return f.toLocal
}

// ToLocal converts a world-space point into local space.
func (f Frame) ToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return f.toLocal.Mul3x1(p.Sub(cellCenter).Sub(f.Anchor)).Add(cellCenter)
}

// ToWorld converts a local-space point into world space.
func (f Frame) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return f.toWorld.Mul3x1(p.Sub(cellCenter)).Add(cellCenter).Add(f.Anchor)
}

// DirToLocal rotates a world-space direction into local space.
func (f Frame) DirToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return f.toLocal.Mul3x1(v)
}

// DirToWorld rotates a local-space direction into world space.
func (f Frame) DirToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return f.toWorld.Mul3x1(v)
}

// EntityTranslation returns the offset that moves an entity standing at
// feet position pos with the given height into local space. The entity is
// rotated about its vertical midpoint, so only its position changes.
func (f Frame) EntityTranslation(pos mgl64.Vec3, height float64) mgl64.Vec3 {
	mid := mgl64.Vec3{0, height / 2, 0}
	return f.ToLocal(pos.Add(mid)).Sub(mid).Sub(pos)
}

// EntityTranslationToWorld is the inverse of EntityTranslation for an
// entity standing at local feet position pos.
func (f Frame) EntityTranslationToWorld(pos mgl64.Vec3, height float64) mgl64.Vec3 {
	mid := mgl64.Vec3{0, height / 2, 0}
	return f.ToWorld(pos.Add(mid)).Sub(mid).Sub(pos)
}
