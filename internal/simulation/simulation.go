package simulation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"assembly-sim/internal/assembly"
	"assembly-sim/internal/audio"
	"assembly-sim/internal/collision"
	"assembly-sim/internal/config"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/material"
	"assembly-sim/internal/world"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Stats counts what happened during a run.
type Stats struct {
	Ticks    int
	Blocked  int
	Bounces  int
	Surfaces int
	Temporal int
	Skipped  int
	Reloads  int
}

// Options are the collaborators a Simulation reports to. Nil fields are
// replaced with silent defaults.
type Options struct {
	Sync collision.MotionSync
	Cues collision.CueSink
	// Materials delivers replacement material tables; they are swapped in
	// at the start of the next tick.
	Materials <-chan *material.Table
	// LocalPlayer is the player controlled on this side.
	LocalPlayer uuid.UUID
}

// Simulation owns the terrain, assemblies and entities and advances them
// tick by tick on a single goroutine.
type Simulation struct {
	cfg      *config.Config
	terrain  *world.Terrain
	collider *collision.Collider
	opts     Options

	assemblies []*assembly.Assembly
	drivers    map[uuid.UUID]Driver
	entities   []*entity.Entity

	stats Stats
}

// New creates an empty simulation over terrain.
func New(cfg *config.Config, terrain *world.Terrain, opts Options) *Simulation {
	if opts.Cues == nil {
		opts.Cues = audio.Discard{}
	}
	s := &Simulation{
		cfg:     cfg,
		terrain: terrain,
		opts:    opts,
		drivers: make(map[uuid.UUID]Driver),
	}
	copts := collision.Options{LocalPlayer: opts.LocalPlayer}
	if cfg.Debug {
		copts.Debugf = log.Printf
	}
	s.collider = collision.New(collision.Deps{
		Terrain:    terrain,
		Steps:      terrain,
		Sync:       opts.Sync,
		Cues:       opts.Cues,
		Assemblies: s,
	}, copts)
	return s
}

// AddAssembly adds a to the simulation, moved by driver when non-nil.
func (s *Simulation) AddAssembly(a *assembly.Assembly, driver Driver) error {
	for _, existing := range s.assemblies {
		if existing.ID == a.ID {
			return fmt.Errorf("simulation: assembly %s already exists", a.ID)
		}
	}
	s.assemblies = append(s.assemblies, a)
	if driver != nil {
		s.drivers[a.ID] = driver
	}
	return nil
}

// AddEntity adds e to the simulation.
func (s *Simulation) AddEntity(e *entity.Entity) error {
	for _, existing := range s.entities {
		if existing == e {
			return fmt.Errorf("simulation: entity %s already added", e.ID)
		}
	}
	s.entities = append(s.entities, e)
	return nil
}

// Terrain returns the static world.
func (s *Simulation) Terrain() *world.Terrain { return s.terrain }

// Assemblies returns the assemblies in insertion order.
func (s *Simulation) Assemblies() []*assembly.Assembly { return s.assemblies }

// Entities returns the entities in insertion order.
func (s *Simulation) Entities() []*entity.Entity { return s.entities }

// Stats returns the counters so far.
func (s *Simulation) Stats() Stats { return s.stats }

// Objects returns every assembly and entity.
func (s *Simulation) Objects() []Object {
	objs := make([]Object, 0, len(s.assemblies)+len(s.entities))
	for _, a := range s.assemblies {
		objs = append(objs, a)
	}
	for _, e := range s.entities {
		objs = append(objs, e)
	}
	return objs
}

// AssembliesNear returns the assemblies whose bounds intersect box, other
// than exclude.
func (s *Simulation) AssembliesNear(box cube.BBox, exclude *assembly.Assembly) []*assembly.Assembly {
	var out []*assembly.Assembly
	for _, a := range s.assemblies {
		if a == exclude {
			continue
		}
		if bounds, ok := a.Bounds(); ok && bounds.IntersectsWith(box) {
			out = append(out, a)
		}
	}
	return out
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.stats.Ticks++
	s.reloadMaterials()

	for _, e := range s.entities {
		e.BeginTick()
	}

	for _, a := range s.assemblies {
		a.TickContacts(s.cfg.ContactMemory)
		s.moveAssembly(a)
	}

	supported := make(map[*entity.Entity]bool)
	for _, a := range s.assemblies {
		region, ok := collision.GatherRegion(a)
		if !ok {
			continue
		}
		for _, r := range s.collider.CollideEntities(a, s.entitiesIn(region)) {
			s.record(r)
			if r.Surface {
				supported[r.Entity] = true
			}
		}
	}

	for _, e := range s.entities {
		s.integrate(e, supported[e])
	}
}

func (s *Simulation) moveAssembly(a *assembly.Assembly) {
	if d, ok := s.drivers[a.ID]; ok {
		d.Drive(a)
	}
	if a.Velocity == (mgl64.Vec3{}) {
		a.Hold()
		return
	}
	if s.collider.CollideBlocks(a) {
		s.stats.Blocked++
		a.Hold()
		s.opts.Cues.Play(audio.CueBlocked, a.Position, 0.5, 1)
		if d, ok := s.drivers[a.ID]; ok {
			d.Blocked(a)
		}
		return
	}
	a.Translate(a.Velocity)
}

func (s *Simulation) entitiesIn(region cube.BBox) []*entity.Entity {
	var out []*entity.Entity
	for _, e := range s.entities {
		if e.Bounds().IntersectsWith(region) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Simulation) record(r collision.Response) {
	switch {
	case r.Skipped:
		s.stats.Skipped++
	case r.Bounced:
		s.stats.Bounces++
	case r.Surface:
		s.stats.Surfaces++
	case r.Temporal:
		s.stats.Temporal++
	}
}

// integrate moves e by its velocity through the terrain and applies
// gravity and drag.
func (s *Simulation) integrate(e *entity.Entity, supported bool) {
	// Assemblies already resolved supported entities against their
	// surface this tick.
	if supported && e.Velocity[1] < 0 {
		e.Velocity[1] = 0
	}
	v := e.Velocity
	moved := s.terrain.AllowedMovement(e, v)
	e.Move(moved)

	landed := v[1] < 0 && moved[1] != v[1]
	for i := 0; i < 3; i++ {
		if moved[i] != v[i] {
			e.Velocity[i] = 0
		}
	}
	e.OnGround = landed || supported
	switch {
	case e.OnGround:
		e.FallDistance = 0
	case moved[1] < 0:
		e.FallDistance -= moved[1]
	}
	if e.Kind == entity.KindPlayer && e.Side == entity.SideServer && !e.OnGround {
		e.FloatingTicks++
	}

	drag := s.cfg.Drag
	if e.OnGround {
		drag *= s.cfg.GroundDrag
	}
	e.Velocity = mgl64.Vec3{
		e.Velocity[0] * drag,
		(e.Velocity[1] - s.cfg.Gravity) * s.cfg.Drag,
		e.Velocity[2] * drag,
	}
}

func (s *Simulation) reloadMaterials() {
	if s.opts.Materials == nil {
		return
	}
	select {
	case tbl, ok := <-s.opts.Materials:
		if !ok {
			s.opts.Materials = nil
			return
		}
		s.SetMaterials(tbl)
	default:
	}
}

// SetMaterials re-resolves every terrain and assembly cell against tbl by
// material name.
func (s *Simulation) SetMaterials(tbl *material.Table) {
	s.terrain.SetMaterials(tbl)
	for _, a := range s.assemblies {
		for _, c := range a.Cells() {
			if m, ok := tbl.Lookup(c.Material.Name); ok {
				a.SetCell(c.Pos, m)
			}
		}
	}
	s.stats.Reloads++
	log.Printf("simulation: reloaded %d materials", tbl.Len())
}

// Run steps the simulation once per tick until numSteps ticks have run or
// ctx is cancelled. Zero numSteps runs until cancelled.
func (s *Simulation) Run(ctx context.Context, numSteps int) error {
	log.Printf("simulation: starting, tick=%s assemblies=%d entities=%d",
		s.cfg.TickDuration(), len(s.assemblies), len(s.entities))
	s.PrintState()

	ticker := time.NewTicker(s.cfg.TickDuration())
	defer ticker.Stop()

	for i := 0; numSteps == 0 || i < numSteps; i++ {
		select {
		case <-ctx.Done():
			log.Printf("simulation: stopped after %d ticks", s.stats.Ticks)
			return ctx.Err()
		case <-ticker.C:
		}
		s.Step()
		if s.cfg.LogEvery > 0 && s.stats.Ticks%s.cfg.LogEvery == 0 {
			st := s.stats
			log.Printf("simulation: tick %d blocked=%d bounces=%d surfaces=%d temporal=%d skipped=%d",
				st.Ticks, st.Blocked, st.Bounces, st.Surfaces, st.Temporal, st.Skipped)
		}
	}

	fmt.Println("\n--- Simulation Finished ---")
	s.PrintState()
	return nil
}

// PrintState prints the current positions of all objects.
func (s *Simulation) PrintState() {
	fmt.Println("--- Current Simulation State ---")
	fmt.Printf("Tick: %d\n", s.stats.Ticks)
	fmt.Println("Assemblies:")
	if len(s.assemblies) == 0 {
		fmt.Println("  None")
	}
	for _, a := range s.assemblies {
		fmt.Printf("  %s Contacts: %d\n", a, a.Contacts())
	}
	fmt.Println("Entities:")
	if len(s.entities) == 0 {
		fmt.Println("  None")
	}
	entities := append([]*entity.Entity(nil), s.entities...)
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Kind < entities[j].Kind })
	for _, e := range entities {
		fmt.Printf("  %s\n", e)
	}
	fmt.Println("-----------------------------")
}
