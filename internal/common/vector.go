package common

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon below which a vector length is treated as zero.
const Epsilon = 1e-9

// Zero is the zero vector. Undefined normals and contact points use it.
var Zero = mgl64.Vec3{}

// IsZero reports whether every component of v is exactly zero.
func IsZero(v mgl64.Vec3) bool {
	return v == Zero
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Zero
	}
	return v.Mul(1 / l)
}

// HorizontalLenSqr returns the squared length of the XZ components of v.
func HorizontalLenSqr(v mgl64.Vec3) float64 {
	return v[0]*v[0] + v[2]*v[2]
}

// Horizontal returns v with the Y component cleared.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// Signum returns -1, 0 or 1 according to the sign of x.
func Signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Format returns a string representation of v with limited precision.
func Format(v mgl64.Vec3) string {
	strs := make([]string, len(v))
	for i, val := range v {
		strs[i] = fmt.Sprintf("%.3f", val)
	}
	return fmt.Sprintf("[%s]", strings.Join(strs, ", "))
}
