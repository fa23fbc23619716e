package assembly

import (
	"fmt"
	"math"
	"sort"

	"assembly-sim/internal/common"
	"assembly-sim/internal/material"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// DefaultContactMemory is how many ticks an entity stays in the contact map
// after it last rested on an assembly.
const DefaultContactMemory = 20

// Cell is one voxel of an assembly.
type Cell struct {
	Pos      cube.Pos
	Material *material.Props
}

// Assembly is a rigid compound of cells moving as one body. Cell positions
// are local; the cell at local (0, 0, 0) sits at Position when the
// assembly is unrotated.
type Assembly struct {
	ID uuid.UUID

	cells map[cube.Pos]Cell
	order []cube.Pos

	Position     mgl64.Vec3
	PrevPosition mgl64.Vec3
	Rotation     Rotation
	// Velocity is the translation the assembly intends to make this tick.
	Velocity mgl64.Vec3
	// AngularVelocity in radians per tick, world frame, around the center
	// of the anchor cell.
	AngularVelocity mgl64.Vec3
	// TerrainCollision assemblies are stopped by terrain and by each other.
	TerrainCollision bool

	simplified    []cube.BBox
	hasSimplified bool

	contacts  map[uuid.UUID]int
	colliders map[cube.Face][]cube.Pos

	localBounds cube.BBox
	boundsValid bool
}

// New creates an empty assembly at position.
func New(position mgl64.Vec3) *Assembly {
	return &Assembly{
		ID:           uuid.New(),
		cells:        make(map[cube.Pos]Cell),
		Position:     position,
		PrevPosition: position,
		Rotation:     Identity(),
		contacts:     make(map[uuid.UUID]int),
	}
}

// SetCell places material m at local position pos. A nil material removes
// the cell.
func (a *Assembly) SetCell(pos cube.Pos, m *material.Props) {
	if m == nil {
		a.RemoveCell(pos)
		return
	}
	if _, ok := a.cells[pos]; !ok {
		a.order = append(a.order, pos)
		sortPositions(a.order)
	}
	a.cells[pos] = Cell{Pos: pos, Material: m}
	a.invalidate()
}

// RemoveCell removes the cell at pos, if any.
func (a *Assembly) RemoveCell(pos cube.Pos) {
	if _, ok := a.cells[pos]; !ok {
		return
	}
	delete(a.cells, pos)
	for i, p := range a.order {
		if p == pos {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.invalidate()
}

// Cell returns the cell at local position pos.
func (a *Assembly) Cell(pos cube.Pos) (Cell, bool) {
	c, ok := a.cells[pos]
	return c, ok
}

// Cells returns all cells ordered by X, then Y, then Z.
func (a *Assembly) Cells() []Cell {
	cells := make([]Cell, len(a.order))
	for i, p := range a.order {
		cells[i] = a.cells[p]
	}
	return cells
}

// Len returns the number of cells.
func (a *Assembly) Len() int {
	return len(a.cells)
}

func (a *Assembly) invalidate() {
	a.colliders = nil
	a.boundsValid = false
	if a.hasSimplified {
		a.SimplifyColliders()
	}
}

// Anchor returns the world position the local frame is anchored to.
func (a *Assembly) Anchor() mgl64.Vec3 {
	return a.Position
}

// Frame returns the transform between world and local space for the
// current tick.
func (a *Assembly) Frame() Frame {
	return NewFrame(a.Anchor(), a.Rotation)
}

// Motion returns how far the assembly moved during the last tick.
func (a *Assembly) Motion() mgl64.Vec3 {
	return a.Position.Sub(a.PrevPosition)
}

// HasTilt reports whether the assembly is rotated off the vertical axis.
func (a *Assembly) HasTilt() bool {
	return a.Rotation.HasTilt()
}

// Translate moves the assembly by delta, recording the previous position.
func (a *Assembly) Translate(delta mgl64.Vec3) {
	a.PrevPosition = a.Position
	a.Position = a.Position.Add(delta)
}

// Hold keeps the assembly in place for this tick.
func (a *Assembly) Hold() {
	a.PrevPosition = a.Position
}

// LocalBounds returns the box enclosing every cell in local space.
func (a *Assembly) LocalBounds() (cube.BBox, bool) {
	if len(a.cells) == 0 {
		return cube.BBox{}, false
	}
	if !a.boundsValid {
		lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
		hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		for p := range a.cells {
			for i := 0; i < 3; i++ {
				lo[i] = math.Min(lo[i], float64(p[i]))
				hi[i] = math.Max(hi[i], float64(p[i]+1))
			}
		}
		a.localBounds = cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
		a.boundsValid = true
	}
	return a.localBounds, true
}

// Bounds returns the world-space box enclosing the rotated assembly. It
// reports false for an assembly without cells.
func (a *Assembly) Bounds() (cube.BBox, bool) {
	local, ok := a.LocalBounds()
	if !ok {
		return cube.BBox{}, false
	}
	f := a.Frame()
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	localMin, localMax := local.Min(), local.Max()
	for i := 0; i < 8; i++ {
		corner := localMin
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corner[axis] = localMax[axis]
			}
		}
		w := f.ToWorld(corner)
		for axis := 0; axis < 3; axis++ {
			lo[axis] = math.Min(lo[axis], w[axis])
			hi[axis] = math.Max(hi[axis], w[axis])
		}
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]), true
}

// ContactPointMotion returns the velocity of the assembly at world point p:
// its linear motion plus the rotational contribution around the anchor
// cell center.
func (a *Assembly) ContactPointMotion(p mgl64.Vec3) mgl64.Vec3 {
	motion := a.Motion()
	if common.IsZero(a.AngularVelocity) {
		return motion
	}
	pivot := a.Anchor().Add(cellCenter)
	return motion.Add(a.AngularVelocity.Cross(p.Sub(pivot)))
}

// Colliders returns the cells that lead the assembly when it moves towards
// face: solid cells whose neighbour in that direction is not solid.
func (a *Assembly) Colliders(face cube.Face) []cube.Pos {
	if cached, ok := a.colliders[face]; ok {
		return cached
	}
	var out []cube.Pos
	for _, p := range a.order {
		c := a.cells[p]
		if !c.Material.HasShape() {
			continue
		}
		if next, ok := a.cells[p.Side(face)]; ok && next.Material.HasShape() {
			continue
		}
		out = append(out, p)
	}
	if a.colliders == nil {
		a.colliders = make(map[cube.Face][]cube.Pos, 6)
	}
	a.colliders[face] = out
	return out
}

// MarkContact records that entity id rests on the assembly this tick.
func (a *Assembly) MarkContact(id uuid.UUID) {
	a.contacts[id] = 0
}

// InContact returns for how many ticks entity id has been tracked since it
// last touched the assembly.
func (a *Assembly) InContact(id uuid.UUID) (int, bool) {
	frames, ok := a.contacts[id]
	return frames, ok
}

// Contacts returns the number of tracked entities.
func (a *Assembly) Contacts() int {
	return len(a.contacts)
}

// TickContacts ages the contact map, forgetting entities that have not
// touched the assembly for more than memory ticks.
func (a *Assembly) TickContacts(memory int) {
	for id, frames := range a.contacts {
		frames++
		if frames > memory {
			delete(a.contacts, id)
			continue
		}
		a.contacts[id] = frames
	}
}

// GetID returns the identifier of the assembly.
func (a *Assembly) GetID() uuid.UUID {
	return a.ID
}

// GetPosition returns the world position of the anchor cell corner.
func (a *Assembly) GetPosition() mgl64.Vec3 {
	return a.Position
}

// String representation for logging
func (a *Assembly) String() string {
	return fmt.Sprintf("Assembly[%s] Pos: %s Cells: %d Tilt: %t",
		a.ID.String()[:8], common.Format(a.Position), len(a.cells), a.HasTilt())
}

func sortPositions(ps []cube.Pos) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
}
