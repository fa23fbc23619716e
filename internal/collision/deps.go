// Package collision resolves entities against moving assemblies and vetoes
// assembly moves that would run into terrain or other assemblies.
package collision

import (
	"assembly-sim/internal/assembly"
	"assembly-sim/internal/audio"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/material"
	"assembly-sim/internal/syncnet"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Terrain answers voxel queries about the static world.
type Terrain interface {
	// Loaded reports whether the cell at pos is known.
	Loaded(pos cube.Pos) bool
	// Material returns the material at pos, or nil for air.
	Material(pos cube.Pos) *material.Props
}

// StepResolver clips a desired displacement against static geometry,
// stepping the entity up low obstacles.
type StepResolver interface {
	AllowedMovement(e *entity.Entity, delta mgl64.Vec3) mgl64.Vec3
}

// MotionSync carries resolved motion of the locally controlled player.
type MotionSync interface {
	SendMotion(p syncnet.MotionPacket) error
}

// CueSink plays positional audio cues.
type CueSink interface {
	Play(cue audio.Cue, pos mgl64.Vec3, volume, pitch float64)
}

// AssemblySource finds the assemblies whose bounds intersect box, other
// than exclude.
type AssemblySource interface {
	AssembliesNear(box cube.BBox, exclude *assembly.Assembly) []*assembly.Assembly
}

// Deps are the collaborators of a Collider. Sync, Cues and Assemblies may
// be nil.
type Deps struct {
	Terrain    Terrain
	Steps      StepResolver
	Sync       MotionSync
	Cues       CueSink
	Assemblies AssemblySource
}

// Options tune a Collider.
type Options struct {
	// LocalPlayer is the ID of the player controlled on this side.
	LocalPlayer uuid.UUID
	// Debugf, when set, receives diagnostic messages.
	Debugf func(format string, args ...any)
}
