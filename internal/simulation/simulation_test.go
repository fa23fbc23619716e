package simulation

import (
	"context"
	"errors"
	"testing"

	"assembly-sim/internal/assembly"
	"assembly-sim/internal/audio"
	"assembly-sim/internal/config"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/material"
	"assembly-sim/internal/world"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

type fixture struct {
	cfg     *config.Config
	tbl     *material.Table
	terrain *world.Terrain
	cues    *audio.Sink
}

func newFixture() *fixture {
	tbl := material.DefaultTable()
	terrain := world.New(tbl)
	terrain.LoadBox(cube.Box(-32, -32, -32, 32, 32, 32))
	cfg := config.Default()
	cfg.TickRate = 1000
	cfg.LogEvery = 0
	return &fixture{cfg: cfg, tbl: tbl, terrain: terrain, cues: audio.NewSink()}
}

func (f *fixture) sim(opts Options) *Simulation {
	opts.Cues = f.cues
	return New(f.cfg, f.terrain, opts)
}

func TestPatrolTurnsAtObstacle(t *testing.T) {
	f := newFixture()
	f.terrain.Set(cube.Pos{3, 5, 0}, f.tbl.MustLookup("stone"))
	s := f.sim(Options{})

	a := assembly.New(mgl64.Vec3{0.5, 5, 0})
	a.TerrainCollision = true
	a.SetCell(cube.Pos{}, f.tbl.MustLookup("stone"))
	if err := s.AddAssembly(a, NewPatrol(a, mgl64.Vec3{0.5, 0, 0}, 10)); err != nil {
		t.Fatal(err)
	}

	// Three free moves reach x=2, the fourth would enter the stone.
	for i := 0; i < 4; i++ {
		s.Step()
	}
	if a.Position[0] != 2 {
		t.Errorf("Expected assembly held at x=2, got %v", a.Position)
	}
	if !a.Motion().ApproxEqual(mgl64.Vec3{}) {
		t.Errorf("Expected no motion while blocked, got %v", a.Motion())
	}
	if got := s.Stats().Blocked; got != 1 {
		t.Errorf("Expected 1 blocked move, got %d", got)
	}
	if got := f.cues.Count(audio.CueBlocked); got != 1 {
		t.Errorf("Expected 1 blocked cue, got %d", got)
	}

	s.Step()
	if a.Position[0] != 1.5 {
		t.Errorf("Expected patrol to turn around to x=1.5, got %v", a.Position)
	}
}

func TestDuplicateAssembly(t *testing.T) {
	f := newFixture()
	s := f.sim(Options{})
	a := assembly.New(mgl64.Vec3{})
	if err := s.AddAssembly(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddAssembly(a, nil); err == nil {
		t.Error("Expected an error for a duplicate assembly")
	}

	e := entity.New(entity.KindMob, mgl64.Vec3{})
	if err := s.AddEntity(e); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEntity(e); err == nil {
		t.Error("Expected an error for a duplicate entity")
	}
	if got := len(s.Objects()); got != 2 {
		t.Errorf("Expected 2 objects, got %d", got)
	}
}

func TestEntityRidesFerry(t *testing.T) {
	f := newFixture()
	s := f.sim(Options{})

	ferry := assembly.New(mgl64.Vec3{0, 5, 0})
	fill(ferry, 3, 3, f.tbl.MustLookup("stone"))
	if err := s.AddAssembly(ferry, NewPatrol(ferry, mgl64.Vec3{0.25, 0, 0}, 100)); err != nil {
		t.Fatal(err)
	}
	mob := entity.New(entity.KindMob, mgl64.Vec3{1.5, 6, 1.5})
	if err := s.AddEntity(mob); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		s.Step()
	}

	if !scalar.EqualWithinAbs(mob.Pos[0], 4, 1e-4) {
		t.Errorf("Expected mob carried to x=4, got %v", mob.Pos)
	}
	if !scalar.EqualWithinAbs(mob.Pos[1], 6, 1e-4) {
		t.Errorf("Expected mob to stay on the deck, got %v", mob.Pos)
	}
	if !mob.OnGround {
		t.Error("Expected mob on ground")
	}
	if _, ok := ferry.InContact(mob.ID); !ok {
		t.Error("Expected ferry to track the mob")
	}
	if got := s.Stats().Surfaces; got != 10 {
		t.Errorf("Expected 10 surface contacts, got %d", got)
	}
}

func TestEntityFallsOntoTerrain(t *testing.T) {
	f := newFixture()
	f.terrain.Fill(cube.Pos{-2, 0, -2}, cube.Pos{2, 0, 2}, f.tbl.MustLookup("stone"))
	s := f.sim(Options{})
	mob := entity.New(entity.KindMob, mgl64.Vec3{0.5, 3, 0.5})
	if err := s.AddEntity(mob); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 40; i++ {
		s.Step()
	}
	if !scalar.EqualWithinAbs(mob.Pos[1], 1, 1e-9) {
		t.Errorf("Expected mob on the floor, got %v", mob.Pos)
	}
	if !mob.OnGround || mob.FallDistance != 0 {
		t.Errorf("Expected grounded mob without fall distance, got %t %f", mob.OnGround, mob.FallDistance)
	}
}

func TestMaterialReload(t *testing.T) {
	f := newFixture()
	f.terrain.Set(cube.Pos{0, 0, 0}, f.tbl.MustLookup("stone"))
	reloads := make(chan *material.Table, 1)
	s := f.sim(Options{Materials: reloads})

	a := assembly.New(mgl64.Vec3{0, 5, 0})
	a.SetCell(cube.Pos{}, f.tbl.MustLookup("stone"))
	if err := s.AddAssembly(a, nil); err != nil {
		t.Fatal(err)
	}

	tbl, err := material.ParseTable([]byte("materials:\n  - name: stone\n    hardness: 3\n    bounce: 0.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	reloads <- tbl
	s.Step()

	if got := f.terrain.Material(cube.Pos{0, 0, 0}).Hardness; got != 3 {
		t.Errorf("Expected terrain stone hardness 3, got %f", got)
	}
	cell, _ := a.Cell(cube.Pos{})
	if cell.Material.Bounce != 0.5 {
		t.Errorf("Expected assembly stone bounce 0.5, got %f", cell.Material.Bounce)
	}
	if got := s.Stats().Reloads; got != 1 {
		t.Errorf("Expected 1 reload, got %d", got)
	}

	close(reloads)
	s.Step()
	if got := s.Stats().Reloads; got != 1 {
		t.Errorf("Expected a closed channel not to reload, got %d", got)
	}
}

func TestRun(t *testing.T) {
	f := newFixture()
	s := f.sim(Options{})
	if err := s.Run(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if got := s.Stats().Ticks; got != 3 {
		t.Errorf("Expected 3 ticks, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if got := s.Stats().Ticks; got != 3 {
		t.Errorf("Expected no ticks after cancel, got %d", got)
	}
}

func TestDemoScene(t *testing.T) {
	cfg := config.Default()
	cfg.LogEvery = 0
	cues := audio.NewSink()
	s, err := BuildDemo(cfg, material.DefaultTable(), Options{Cues: cues})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.Assemblies()); got != 3 {
		t.Fatalf("Expected 3 assemblies, got %d", got)
	}
	wantEntities := 1 + cfg.Scene.RemoteEchos + 1 + cfg.Scene.Items + 1
	if got := len(s.Entities()); got != wantEntities {
		t.Fatalf("Expected %d entities, got %d", wantEntities, got)
	}
	for _, a := range s.Assemblies() {
		if _, ok := a.SimplifiedColliders(); !ok {
			t.Errorf("Expected simplified colliders on %s", a)
		}
	}

	for i := 0; i < 80; i++ {
		s.Step()
	}
	if s.Stats().Blocked == 0 {
		t.Error("Expected the ferry to hit the pillar")
	}
	if cues.Count(audio.CueBlocked) != s.Stats().Blocked {
		t.Errorf("Expected a cue per blocked move, got %d cues for %d", cues.Count(audio.CueBlocked), s.Stats().Blocked)
	}
	if s.Stats().Skipped == 0 {
		t.Error("Expected remote players to be skipped")
	}
	for _, e := range s.Entities() {
		if e.Pos[1] < 1-1e-6 {
			t.Errorf("Expected %s above the floor", e)
		}
	}
}

func TestDemoNeedsMaterials(t *testing.T) {
	tbl := material.NewTable(&material.Props{Name: "stone"})
	if _, err := BuildDemo(config.Default(), tbl, Options{}); err == nil {
		t.Error("Expected an error for a table without slime")
	}
}

func TestSpinner(t *testing.T) {
	a := assembly.New(mgl64.Vec3{})
	s := &Spinner{Rate: 0.25}
	s.Drive(a)
	s.Drive(a)
	if got := a.AngularVelocity; got != (mgl64.Vec3{0, 0.25, 0}) {
		t.Errorf("Expected angular velocity around Y, got %v", got)
	}
	if a.HasTilt() {
		t.Error("Expected a flat spinner not to tilt")
	}
	want := assembly.EulerRotation(0, 0.5, 0, 0)
	if !a.Rotation.Matrix.ApproxEqual(want.Matrix) {
		t.Errorf("Expected yaw 0.5, got %v", a.Rotation.Matrix)
	}
	s.Blocked(a)
	if a.Velocity != (mgl64.Vec3{}) {
		t.Errorf("Expected spinner never to translate, got %v", a.Velocity)
	}
}
