package collision

import (
	"math"
	"testing"

	"assembly-sim/internal/assembly"
	"assembly-sim/internal/audio"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/material"
	"assembly-sim/internal/obb"
	"assembly-sim/internal/syncnet"
	"assembly-sim/internal/world"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"
)

const tolerance = 1e-6

func vecEqual(a, b mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(a[i], b[i], tolerance) {
			return false
		}
	}
	return true
}

type assemblyList []*assembly.Assembly

func (l assemblyList) AssembliesNear(_ cube.BBox, exclude *assembly.Assembly) []*assembly.Assembly {
	var out []*assembly.Assembly
	for _, a := range l {
		if a != exclude {
			out = append(out, a)
		}
	}
	return out
}

type fixture struct {
	tbl     *material.Table
	terrain *world.Terrain
	sync    *syncnet.Recorder
	cues    *audio.Sink
	local   uuid.UUID
	c       *Collider
}

// newFixture returns a collider over loaded, empty terrain around the
// origin.
func newFixture(others ...*assembly.Assembly) *fixture {
	f := &fixture{
		tbl:   material.DefaultTable(),
		sync:  &syncnet.Recorder{},
		cues:  audio.NewSink(),
		local: uuid.New(),
	}
	f.terrain = world.New(f.tbl)
	f.terrain.LoadBox(cube.Box(-32, -32, -32, 32, 32, 32))
	f.c = New(Deps{
		Terrain:    f.terrain,
		Steps:      f.terrain,
		Sync:       f.sync,
		Cues:       f.cues,
		Assemblies: assemblyList(others),
	}, Options{LocalPlayer: f.local})
	return f
}

// platform returns a 3x1x3 slab of the named material with its top at
// y=1 when placed at the origin.
func (f *fixture) platform(name string) *assembly.Assembly {
	a := assembly.New(mgl64.Vec3{})
	for x := 0; x < 3; x++ {
		for z := 0; z < 3; z++ {
			a.SetCell(cube.Pos{x, 0, z}, f.tbl.MustLookup(name))
		}
	}
	return a
}

func TestRestingEntityIsGrounded(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1, 1.5})
	e.Velocity = mgl64.Vec3{0, -0.08, 0}
	e.FallDistance = 3

	rs := f.c.CollideEntities(a, []*entity.Entity{e})
	if len(rs) != 1 {
		t.Fatalf("Expected 1 response, got %d", len(rs))
	}
	r := rs[0]
	if !r.Surface || r.Temporal {
		t.Errorf("Expected a surface contact, got %+v", r)
	}
	if !e.OnGround || e.FallDistance != 0 {
		t.Errorf("Expected grounded entity with no fall distance, got %t %f", e.OnGround, e.FallDistance)
	}
	if e.Velocity[1] != 0 {
		t.Errorf("Expected vertical velocity cancelled, got %f", e.Velocity[1])
	}
	if r.PositionDelta.Len() > tolerance {
		t.Errorf("Expected no visible correction, got %v", r.PositionDelta)
	}
	if frames, ok := a.InContact(e.ID); !ok || frames != 0 {
		t.Errorf("Expected fresh contact, got %d %t", frames, ok)
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 0.9, 1.5})

	first := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !vecEqual(first.PositionDelta, mgl64.Vec3{0, 0.1, 0}) {
		t.Errorf("Expected sunk entity lifted by 0.1, got %v", first.PositionDelta)
	}
	second := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if second.PositionDelta.Len() > tolerance {
		t.Errorf("Expected no further correction, got %v", second.PositionDelta)
	}
}

func TestBounce(t *testing.T) {
	f := newFixture()
	a := f.platform("slime")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1.5, 1.5})
	e.Velocity = mgl64.Vec3{0, -1, 0}

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Bounced {
		t.Fatalf("Expected a bounce, got %+v", r)
	}
	if e.Velocity[1] <= 0 {
		t.Errorf("Expected upward velocity, got %v", e.Velocity)
	}
	if !vecEqual(e.Velocity, mgl64.Vec3{0, 0.8, 0}) {
		t.Errorf("Expected rebound (0, 0.8, 0), got %v", e.Velocity)
	}
	if got := f.cues.Count(audio.CueBounce); got != 1 {
		t.Errorf("Expected exactly one bounce cue, got %d", got)
	}
	if e.Pos != (mgl64.Vec3{1.5, 1.5, 1.5}) {
		t.Errorf("Expected bounce to leave position alone, got %v", e.Pos)
	}
}

func TestBounceSkippedWhenBypassingLanding(t *testing.T) {
	f := newFixture()
	a := f.platform("slime")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1.5, 1.5})
	e.Velocity = mgl64.Vec3{0, -1, 0}
	e.BypassesLanding = true

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if r.Bounced || f.cues.Count(audio.CueBounce) != 0 {
		t.Errorf("Expected no bounce, got %+v", r)
	}
}

func TestBounceTooWeak(t *testing.T) {
	f := newFixture()
	a := f.platform("slime")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1.1, 1.5})
	e.Velocity = mgl64.Vec3{0, -0.2, 0}

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if r.Bounced {
		t.Errorf("Expected a weak landing not to bounce, got %+v", r)
	}
	if f.cues.Count(audio.CueBounce) != 0 {
		t.Error("Expected no cue")
	}
}

func TestTemporalHitDoesNotPenetrate(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1.5, 1.5})
	e.Velocity = mgl64.Vec3{0, -1, 0}

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Temporal {
		t.Fatalf("Expected a temporal hit, got %+v", r)
	}
	if !scalar.EqualWithinAbs(r.TimeOfImpact, 0.5, tolerance) {
		t.Errorf("Expected toi 0.5, got %f", r.TimeOfImpact)
	}
	// Gap before the tick along the normal versus after integrating.
	before := e.Pos[1] - 1
	after := e.Pos[1] + e.Velocity[1] - 1
	if after < -tolerance || after > before {
		t.Errorf("Expected penetration not to grow: gap %f -> %f", before, after)
	}
}

func TestCarriedByMovingAssembly(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")
	a.Translate(mgl64.Vec3{0.25, 0, 0})
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 1, 1.5})

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Surface {
		t.Fatalf("Expected surface contact, got %+v", r)
	}
	if !vecEqual(r.ContactPointMotion, mgl64.Vec3{0.25, 0, 0}) {
		t.Errorf("Expected contact point motion (0.25, 0, 0), got %v", r.ContactPointMotion)
	}
	if !vecEqual(r.PositionDelta, mgl64.Vec3{0.25, 0, 0}) {
		t.Errorf("Expected entity carried by 0.25, got %v", r.PositionDelta)
	}
}

func TestItemsLoseHorizontalSpeed(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")
	e := entity.New(entity.KindItem, mgl64.Vec3{1.5, 1, 1.5})
	e.Velocity = mgl64.Vec3{0.2, 0, 0}

	f.c.CollideEntities(a, []*entity.Entity{e})
	if !scalar.EqualWithinAbs(e.Velocity[0], 0.1, tolerance) {
		t.Errorf("Expected halved horizontal speed, got %v", e.Velocity)
	}
}

func TestTiltedPlatformLiftsEntity(t *testing.T) {
	f := newFixture()
	a := assembly.New(mgl64.Vec3{})
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			a.SetCell(cube.Pos{x, 0, z}, f.tbl.MustLookup("stone"))
		}
	}
	a.Rotation = assembly.EulerRotation(0.1, 0, 0, 0)
	if !a.HasTilt() {
		t.Fatal("Expected a tilted assembly")
	}

	e := entity.New(entity.KindMob, mgl64.Vec3{0.5, 0.95, 0.5})
	e.Width, e.Height = 0.25, 0.5

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Surface || !r.Hard {
		t.Fatalf("Expected a hard surface contact, got %+v", r)
	}
	if dy := r.PositionDelta[1]; dy <= 0 || dy >= e.StepHeight {
		t.Errorf("Expected a lift within step height, got %f", dy)
	}
	if !e.OnGround {
		t.Error("Expected grounded entity")
	}
}

// TestIceSlopeSlides verifies an entity on a tilted slippery assembly
// slides downhill and is not grounded.
func TestIceSlopeSlides(t *testing.T) {
	const tilt = 0.3
	f := newFixture()
	a := assembly.New(mgl64.Vec3{})
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			a.SetCell(cube.Pos{x, 0, z}, f.tbl.MustLookup("ice"))
		}
	}
	a.Rotation = assembly.EulerRotation(tilt, 0, 0, 0)

	e := entity.New(entity.KindMob, mgl64.Vec3{0.5, 0.95, 0.5})
	e.Width, e.Height = 0.25, 0.5
	e.Velocity = mgl64.Vec3{0, -0.08, 0}

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Surface || !r.Hard || r.Bounced {
		t.Fatalf("Expected a hard surface contact without bounce, got %+v", r)
	}

	// Downhill follows the horizontal lean of the surface normal.
	normal := a.Frame().DirToWorld(mgl64.Vec3{0, 1, 0})
	speed := (slideBase + f.tbl.MustLookup("ice").SlideResistance()) * (0.08 + slideBias)
	downhill := speed * math.Cos(tilt)
	if normal[2] < 0 {
		downhill = -downhill
	}
	want := mgl64.Vec3{0, -slideDrop - speed*math.Sin(tilt), downhill}
	if !vecEqual(e.Velocity, want) {
		t.Errorf("Expected slide velocity %v, got %v", want, e.Velocity)
	}
	if e.OnGround {
		t.Error("Expected no grounding on a slippery slope")
	}
}

func TestFlatIceDoesNotSlide(t *testing.T) {
	f := newFixture()
	a := f.platform("ice")
	e := entity.New(entity.KindMob, mgl64.Vec3{1.5, 0.95, 1.5})
	e.Velocity = mgl64.Vec3{0, -0.08, 0}

	r := f.c.CollideEntities(a, []*entity.Entity{e})[0]
	if !r.Surface || !r.Hard {
		t.Fatalf("Expected a hard surface contact, got %+v", r)
	}
	if !vecEqual(e.Velocity, mgl64.Vec3{}) {
		t.Errorf("Expected velocity to stop without sliding, got %v", e.Velocity)
	}
}

func TestRoles(t *testing.T) {
	f := newFixture()
	a := f.platform("stone")

	remote := entity.New(entity.KindPlayer, mgl64.Vec3{0.5, 1, 0.5})
	remote.Side = entity.SideClient
	server := entity.New(entity.KindPlayer, mgl64.Vec3{0.5, 1, 2.5})
	server.FloatingTicks = 40
	local := entity.New(entity.KindPlayer, mgl64.Vec3{1.5, 1, 1.5})
	local.ID, local.Side = f.local, entity.SideClient
	stale := entity.New(entity.KindPlayer, mgl64.Vec3{2.5, 1, 2.5})
	stale.ID, stale.Side = f.local, entity.SideClient
	mob := entity.New(entity.KindMob, mgl64.Vec3{2.5, 1, 0.5})

	rs := f.c.CollideEntities(a, []*entity.Entity{remote, server, local, stale, mob})
	want := []struct {
		role    Role
		skipped bool
	}{
		{RoleRemote, true},
		{RoleAuthoritative, true},
		{RoleLocal, false},
		{RoleLocal, true},
		{RoleNone, false},
	}
	for i, w := range want {
		if rs[i].Role != w.role || rs[i].Skipped != w.skipped {
			t.Errorf("Entity %d: expected %s skipped=%t, got %s skipped=%t", i, w.role, w.skipped, rs[i].Role, rs[i].Skipped)
		}
	}
	if server.FloatingTicks != 0 {
		t.Errorf("Expected floating ticks reset, got %d", server.FloatingTicks)
	}
	if remote.OnGround || stale.OnGround {
		t.Error("Expected skipped entities untouched")
	}

	packets := f.sync.Packets()
	if len(packets) != 1 {
		t.Fatalf("Expected one motion packet, got %d", len(packets))
	}
	if id, err := packets[0].EntityID(); err != nil || id != f.local {
		t.Errorf("Expected packet for the local player, got %v %v", id, err)
	}
	if !packets[0].OnGround {
		t.Error("Expected grounded motion packet")
	}
}

func TestNoOpWithoutBounds(t *testing.T) {
	f := newFixture()
	e := entity.New(entity.KindMob, mgl64.Vec3{})
	if rs := f.c.CollideEntities(nil, []*entity.Entity{e}); rs != nil {
		t.Errorf("Expected nil assembly to be a no-op, got %v", rs)
	}
	if rs := f.c.CollideEntities(assembly.New(mgl64.Vec3{}), []*entity.Entity{e}); rs != nil {
		t.Errorf("Expected empty assembly to be a no-op, got %v", rs)
	}
}

// cornerBox is a 0.5x1.5 box with its feet at (1.25, 1.5, 0), half a block
// above a floor and half a block west of a wall.
func cornerBox() obb.Box {
	return obb.New(cube.Box(1, 1.5, -0.25, 1.5, 3, 0.25), mgl64.Ident3())
}

var (
	floor = cube.Box(-5, 0, -5, 5, 1, 5)
	wall  = cube.Box(2, 0, -5, 3, 10, 5)
)

// Equal times of impact keep whichever candidate came first.
func TestEqualTimeOfImpactKeepsFirst(t *testing.T) {
	motion := mgl64.Vec3{1, -1, 0}
	size := mgl64.Vec3{0.5, 1.5, 0.5}

	tests := []struct {
		name   string
		boxes  []cube.BBox
		normal mgl64.Vec3
	}{
		{"floor first", []cube.BBox{floor, wall}, mgl64.Vec3{0, 1, 0}},
		{"wall first", []cube.BBox{wall, floor}, mgl64.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := sweep(cornerBox(), motion, size, 0.6, tt.boxes, false)
			if !scalar.EqualWithinAbs(acc.toi, 0.5, tolerance) {
				t.Errorf("Expected toi 0.5, got %f", acc.toi)
			}
			if !vecEqual(acc.normal, tt.normal) {
				t.Errorf("Expected normal %v, got %v", tt.normal, acc.normal)
			}
		})
	}
}

// Overlaps always replace the recorded normal, so the last one wins.
func TestOverlapsKeepLast(t *testing.T) {
	sunk := obb.New(cube.Box(1, 0.9, -0.25, 1.5, 2.4, 0.25), mgl64.Ident3())
	wedge := cube.Box(1.4, 0, -5, 3, 10, 5)
	size := mgl64.Vec3{0.5, 1.5, 0.5}

	tests := []struct {
		name   string
		boxes  []cube.BBox
		normal mgl64.Vec3
	}{
		{"wall last", []cube.BBox{floor, wedge}, mgl64.Vec3{-1, 0, 0}},
		{"floor last", []cube.BBox{wedge, floor}, mgl64.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := sweep(sunk, mgl64.Vec3{}, size, 0.6, tt.boxes, false)
			if !acc.hard() {
				t.Fatal("Expected a hard collision")
			}
			if !vecEqual(acc.normal, tt.normal) {
				t.Errorf("Expected normal %v, got %v", tt.normal, acc.normal)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	tbl := material.DefaultTable()
	a := assembly.New(mgl64.Vec3{})
	a.SetCell(cube.Pos{0, 0, 0}, tbl.MustLookup("stone"))
	a.SetCell(cube.Pos{1, 0, 0}, tbl.MustLookup("stone"))
	a.SetCell(cube.Pos{0, 1, 0}, tbl.MustLookup("grass"))
	a.SetCell(cube.Pos{1, 1, 0}, tbl.MustLookup("slab"))
	a.SetCell(cube.Pos{40, 0, 0}, tbl.MustLookup("stone"))

	got := candidates(a, cube.Box(0.2, 1, 0.2, 0.8, 2.8, 0.8))
	want := []cube.BBox{
		cube.Box(0, 0, 0, 1, 1, 1),
		cube.Box(1, 0, 0, 2, 1, 1),
		cube.Box(1, 1, 0, 2, 1.5, 1),
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d candidates, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidate %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	a.SimplifyColliders()
	simplified, _ := a.SimplifiedColliders()
	if got := candidates(a, cube.Box(0.2, 1, 0.2, 0.8, 2.8, 0.8)); len(got) != len(simplified) {
		t.Errorf("Expected the simplified list, got %v", got)
	}
}

func TestGatherRegion(t *testing.T) {
	f := newFixture()
	region, ok := GatherRegion(f.platform("stone"))
	if !ok {
		t.Fatal("Expected a region")
	}
	if region.Min() != (mgl64.Vec3{-2, -2, -2}) || region.Max() != (mgl64.Vec3{5, 35, 5}) {
		t.Errorf("Expected [-2 -2 -2]-[5 35 5], got %v-%v", region.Min(), region.Max())
	}
	if _, ok := GatherRegion(assembly.New(mgl64.Vec3{})); ok {
		t.Error("Expected no region for an empty assembly")
	}
}
