package entity

import (
	"fmt"

	"assembly-sim/internal/common"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind distinguishes the kinds of entity that ride or bump into assemblies.
type Kind int

const (
	KindMob Kind = iota
	KindPlayer
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindItem:
		return "item"
	default:
		return "mob"
	}
}

// Default sizes and step heights per kind.
const (
	PlayerWidth      = 0.6
	PlayerHeight     = 1.8
	PlayerStepHeight = 0.6
	ItemSize         = 0.25
)

// Entity is a dynamic body with an axis-aligned box standing at Pos.
type Entity struct {
	ID   uuid.UUID
	Kind Kind

	// Pos is the feet position: the bottom center of the box.
	Pos     mgl64.Vec3
	PrevPos mgl64.Vec3
	// Velocity in blocks per tick.
	Velocity mgl64.Vec3

	Width, Height float64
	StepHeight    float64

	OnGround     bool
	FallDistance float64
	// BypassesLanding entities (e.g. sneaking players) never bounce.
	BypassesLanding bool
	// FloatingTicks counts consecutive airborne server ticks for riding
	// players; resolution on the authoritative side resets it.
	FloatingTicks int

	// Side is the side this entity instance lives on. Players only.
	Side Side
}

// Side tells which half of a client/server pair an entity instance lives on.
type Side int

const (
	SideServer Side = iota
	SideClient
)

// New creates an entity of the given kind at pos with default dimensions.
func New(kind Kind, pos mgl64.Vec3) *Entity {
	e := &Entity{
		ID:      uuid.New(),
		Kind:    kind,
		Pos:     pos,
		PrevPos: pos,
	}
	switch kind {
	case KindItem:
		e.Width, e.Height = ItemSize, ItemSize
	default:
		e.Width, e.Height = PlayerWidth, PlayerHeight
		e.StepHeight = PlayerStepHeight
	}
	return e
}

// Bounds returns the current world-space box of the entity.
func (e *Entity) Bounds() cube.BBox {
	return common.EntityBox(e.Pos, e.Width, e.Height)
}

// Move translates the entity without changing its previous position.
func (e *Entity) Move(delta mgl64.Vec3) {
	e.Pos = e.Pos.Add(delta)
}

// BeginTick records the position at tick start.
func (e *Entity) BeginTick() {
	e.PrevPos = e.Pos
}

// GetID returns the identifier of the entity.
func (e *Entity) GetID() uuid.UUID {
	return e.ID
}

// GetPosition returns the feet position.
func (e *Entity) GetPosition() mgl64.Vec3 {
	return e.Pos
}

// String representation for logging
func (e *Entity) String() string {
	return fmt.Sprintf("Entity[%s %s] Pos: %s Vel: %s Ground: %t",
		e.Kind, e.ID.String()[:8], common.Format(e.Pos), common.Format(e.Velocity), e.OnGround)
}
