package collision

import (
	"assembly-sim/internal/entity"

	"github.com/google/uuid"
)

// Role classifies an entity for one resolution call.
type Role int

const (
	// RoleNone covers mobs and items.
	RoleNone Role = iota
	// RoleAuthoritative is a player simulated by the server.
	RoleAuthoritative
	// RoleLocal is the player controlled on this client.
	RoleLocal
	// RoleRemote is a client-side echo of another player.
	RoleRemote
)

func (r Role) String() string {
	switch r {
	case RoleAuthoritative:
		return "authoritative"
	case RoleLocal:
		return "local"
	case RoleRemote:
		return "remote"
	default:
		return "none"
	}
}

// Classify derives the role of e given the locally controlled player.
func Classify(e *entity.Entity, localPlayer uuid.UUID) Role {
	if e.Kind != entity.KindPlayer {
		return RoleNone
	}
	if e.Side == entity.SideServer {
		return RoleAuthoritative
	}
	if e.ID == localPlayer {
		return RoleLocal
	}
	return RoleRemote
}
