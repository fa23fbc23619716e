package simulation

import (
	"math"

	"assembly-sim/internal/assembly"

	"github.com/go-gl/mathgl/mgl64"
)

// Driver moves an assembly. The simulation asks it for the intended
// motion every tick and tells it when that motion was vetoed.
type Driver interface {
	// Drive sets the Velocity, Rotation and AngularVelocity a intends to
	// use this tick.
	Drive(a *assembly.Assembly)
	// Blocked is called when the intended translation was refused.
	Blocked(a *assembly.Assembly)
}

// Patrol shuttles an assembly back and forth along a fixed velocity,
// turning around when it strays Range blocks from Origin or is blocked.
type Patrol struct {
	Velocity mgl64.Vec3
	Origin   mgl64.Vec3
	Range    float64
}

// NewPatrol creates a patrol starting at the current position of a.
func NewPatrol(a *assembly.Assembly, velocity mgl64.Vec3, rng float64) *Patrol {
	return &Patrol{Velocity: velocity, Origin: a.Position, Range: rng}
}

// Drive reverses the patrol at the end of its range.
func (p *Patrol) Drive(a *assembly.Assembly) {
	offset := a.Position.Sub(p.Origin)
	if offset.Len() >= p.Range && offset.Dot(p.Velocity) > 0 {
		p.Velocity = p.Velocity.Mul(-1)
	}
	a.Velocity = p.Velocity
}

// Blocked turns the patrol around.
func (p *Patrol) Blocked(a *assembly.Assembly) {
	p.Velocity = p.Velocity.Mul(-1)
}

// Spinner turns an assembly around the vertical axis at a fixed rate,
// optionally tilted by a constant pitch.
type Spinner struct {
	// Rate in radians per tick.
	Rate  float64
	Pitch float64
	yaw   float64
}

// Drive advances the yaw.
func (s *Spinner) Drive(a *assembly.Assembly) {
	s.yaw = math.Mod(s.yaw+s.Rate, 2*math.Pi)
	a.Rotation = assembly.EulerRotation(s.Pitch, s.yaw, 0, 0)
	a.AngularVelocity = mgl64.Vec3{0, s.Rate, 0}
	a.Velocity = mgl64.Vec3{}
}

// Blocked does nothing; spinners do not translate.
func (s *Spinner) Blocked(*assembly.Assembly) {}
