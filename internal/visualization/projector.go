// Package visualization draws the sandbox with ebiten.
package visualization

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projector flattens world positions onto the screen plane.
type Projector interface {
	// Project returns one 2D point per input point, in order.
	Project(points []mgl64.Vec3) ([]mgl64.Vec2, error)
}

// TopDown projects onto the horizontal plane, X right and Z down.
type TopDown struct{}

// Project drops the Y coordinate.
func (TopDown) Project(points []mgl64.Vec3) ([]mgl64.Vec2, error) {
	out := make([]mgl64.Vec2, len(points))
	for i, p := range points {
		out[i] = mgl64.Vec2{p[0], p[2]}
	}
	return out, nil
}

// minPCASamples is the fewest points that span a plane.
const minPCASamples = 3

var errPCA = errors.New("visualization: PCA computation failed")

// PCAProjector projects onto the plane of the two principal components, so
// a tilted or vertical scene is seen face on. It falls back to a top-down
// view for scenes too small to analyse.
type PCAProjector struct {
	fallback TopDown
}

// NewPCAProjector creates a new PCA projector.
func NewPCAProjector() *PCAProjector {
	return &PCAProjector{}
}

// Project performs PCA over points and returns their coordinates on the
// first two components.
func (p *PCAProjector) Project(points []mgl64.Vec3) ([]mgl64.Vec2, error) {
	if len(points) < minPCASamples {
		return p.fallback.Project(points)
	}

	data := make([]float64, 0, len(points)*3)
	for _, pt := range points {
		data = append(data, pt[0], pt[1], pt[2])
	}
	// Samples as rows, dimensions as columns.
	m := mat.NewDense(len(points), 3, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return nil, errPCA
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var reduced mat.Dense
	reduced.Mul(m, vecs.Slice(0, 3, 0, 2))

	out := make([]mgl64.Vec2, len(points))
	for i := range out {
		out[i] = mgl64.Vec2{reduced.At(i, 0), reduced.At(i, 1)}
	}
	return out, nil
}
