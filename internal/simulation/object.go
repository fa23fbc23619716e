package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Object is anything in the simulation with an identity and a position.
// Entities and assemblies both satisfy it.
type Object interface {
	// GetID returns the unique identifier of the object.
	GetID() uuid.UUID
	// GetPosition returns the current world position of the object.
	GetPosition() mgl64.Vec3
}
