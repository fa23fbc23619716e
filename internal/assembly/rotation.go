package assembly

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// tiltEpsilon is how far the rotated up axis may deviate from world up
// before an assembly counts as tilted.
const tiltEpsilon = 1e-9

// Rotation is the orientation of an assembly for one tick. Matrix maps
// world directions into the assembly frame after the yaw offset has been
// undone.
type Rotation struct {
	Matrix    mgl64.Mat3
	YawOffset float64
}

// Identity returns the rotation of an axis-aligned, unyawed assembly.
func Identity() Rotation {
	return Rotation{Matrix: mgl64.Ident3()}
}

// NewRotation returns a rotation with matrix m re-orthonormalised, so that
// its inverse is exactly its transpose.
func NewRotation(m mgl64.Mat3, yawOffset float64) Rotation {
	return Rotation{Matrix: Orthonormalize(m), YawOffset: yawOffset}
}

// EulerRotation builds the world-to-local rotation of an assembly turned by
// pitch (around X), yaw (around Y) and roll (around Z), in radians. The
// assembly turns Z first, then Y, then X; the returned matrix undoes that.
func EulerRotation(pitch, yaw, roll, yawOffset float64) Rotation {
	forward := mgl64.Rotate3DX(pitch).Mul3(mgl64.Rotate3DY(yaw)).Mul3(mgl64.Rotate3DZ(roll))
	return NewRotation(forward.Transpose(), yawOffset)
}

// HasTilt reports whether the rotation moves world up, i.e. the assembly
// is not merely turned about the vertical axis.
func (r Rotation) HasTilt() bool {
	up := r.Matrix.Col(1)
	return math.Abs(up[0]) > tiltEpsilon || math.Abs(up[1]-1) > tiltEpsilon || math.Abs(up[2]) > tiltEpsilon
}

// Basis returns the full world-to-local rotation including the yaw offset.
func (r Rotation) Basis() mgl64.Mat3 {
	if r.YawOffset == 0 {
		return r.Matrix
	}
	return r.Matrix.Mul3(mgl64.Rotate3DY(-r.YawOffset))
}

// Orthonormalize returns the rotation closest to m, found through the
// polar decomposition U·Vᵀ of its singular value decomposition. Degenerate
// matrices yield the identity.
func Orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	a := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, m.At(i, j))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return mgl64.Ident3()
	}
	values := svd.Values(nil)
	if values[len(values)-1] < 1e-12 {
		return mgl64.Ident3()
	}

	var u, v, r mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	r.Mul(&u, v.T())
	if mat.Det(&r) < 0 {
		// Flip the weakest direction so the result is a rotation, not a
		// reflection.
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		r.Mul(&u, v.T())
	}

	var out mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r.At(i, j))
		}
	}
	return out
}
