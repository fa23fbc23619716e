// Package syncnet carries resolved motion of the locally controlled player
// to the authoritative side.
package syncnet

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// MotionPacket reports the velocity a client resolved for its own player
// after colliding with an assembly.
type MotionPacket struct {
	Entity    string     `msgpack:"entity"`
	Velocity  [3]float64 `msgpack:"velocity"`
	OnGround  bool       `msgpack:"on_ground"`
	LimbSwing float64    `msgpack:"limb_swing"`
}

// NewMotionPacket builds a packet for entity id.
func NewMotionPacket(id uuid.UUID, velocity mgl64.Vec3, onGround bool, limbSwing float64) MotionPacket {
	return MotionPacket{
		Entity:    id.String(),
		Velocity:  velocity,
		OnGround:  onGround,
		LimbSwing: limbSwing,
	}
}

// EntityID parses the entity identifier.
func (p MotionPacket) EntityID() (uuid.UUID, error) {
	return uuid.Parse(p.Entity)
}

// Encode serialises the packet.
func (p MotionPacket) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("syncnet: encode motion: %w", err)
	}
	return data, nil
}

// DecodeMotion parses a packet produced by Encode.
func DecodeMotion(data []byte) (MotionPacket, error) {
	var p MotionPacket
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return MotionPacket{}, fmt.Errorf("syncnet: decode motion: %w", err)
	}
	return p, nil
}
