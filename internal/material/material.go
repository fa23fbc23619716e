package material

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// DefaultSlipperiness is the slipperiness of ordinary walkable material.
// Anything above it makes entities slide on tilted assemblies.
const DefaultSlipperiness = 0.6

// Props are the collision capabilities of one material.
type Props struct {
	Name string

	// Shape holds the collision boxes of one cell, in cell-local
	// coordinates (0..1). An empty shape never collides.
	Shape []cube.BBox

	Bounce       float64
	Slipperiness float64
	Replaceable  bool
	// Hardness below zero means the material cannot be broken.
	Hardness float64
	Fluid    bool
	// Decoration materials never block a moving assembly.
	Decoration bool
	// PassableFrom lists the movement directions in which an assembly's
	// anchor cell may move into this material.
	PassableFrom []cube.Face
	// Breaker cells destroy yielding materials in their path instead of
	// being blocked by them.
	Breaker bool
}

// HasShape reports whether the material has any collision volume.
func (p *Props) HasShape() bool {
	return p != nil && len(p.Shape) > 0
}

// SlideResistance returns how far the material's slipperiness exceeds the
// walkable threshold.
func (p *Props) SlideResistance() float64 {
	if p == nil {
		return 0
	}
	return math.Max(0, p.Slipperiness-DefaultSlipperiness)
}

// Breakable reports whether a breaker cell can clear this material.
func (p *Props) Breakable() bool {
	return p.HasShape() && !p.Fluid && p.Hardness >= 0
}

// Passable reports whether an anchor cell moving along face may enter.
func (p *Props) Passable(face cube.Face) bool {
	if p == nil {
		return false
	}
	for _, f := range p.PassableFrom {
		if f == face {
			return true
		}
	}
	return false
}

// Table maps material names to their capabilities. It is built once and
// shared read-only by terrain and assemblies.
type Table struct {
	props map[string]*Props
}

// NewTable creates a table from the given materials. Later entries with a
// duplicate name replace earlier ones.
func NewTable(props ...*Props) *Table {
	t := &Table{props: make(map[string]*Props, len(props))}
	for _, p := range props {
		t.props[p.Name] = p
	}
	return t
}

// Lookup returns the capabilities of the named material.
func (t *Table) Lookup(name string) (*Props, bool) {
	if t == nil {
		return nil, false
	}
	p, ok := t.props[name]
	return p, ok
}

// MustLookup is like Lookup but panics on unknown names. Intended for
// fixtures built from constants.
func (t *Table) MustLookup(name string) *Props {
	p, ok := t.Lookup(name)
	if !ok {
		panic("material: unknown material " + name)
	}
	return p
}

// Len returns the number of materials.
func (t *Table) Len() int {
	return len(t.props)
}
