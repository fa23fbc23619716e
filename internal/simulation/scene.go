package simulation

import (
	"fmt"

	"assembly-sim/internal/assembly"
	"assembly-sim/internal/config"
	"assembly-sim/internal/entity"
	"assembly-sim/internal/material"
	"assembly-sim/internal/world"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Demo scene layout.
var (
	sceneArea   = cube.Box(-32, -16, -32, 32, 48, 32)
	ferryOrigin = mgl64.Vec3{-6, 4, -1}
	turntableAt = mgl64.Vec3{-3, 1, 4}
	rampAt      = mgl64.Vec3{6, 3, 4}
	// pillarX stands in the ferry's path.
	pillarX = 4
)

// BuildDemo creates a sandbox with a stone floor, a patrolling ferry with
// a slime pad, a turntable and a tilted ice ramp, populated with a local
// player, remote copies of other players, a mob and falling items. The
// local player ID in opts is replaced by the demo player's.
func BuildDemo(cfg *config.Config, tbl *material.Table, opts Options) (*Simulation, error) {
	mat := func(name string) (*material.Props, error) {
		m, ok := tbl.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("simulation: demo needs material %q", name)
		}
		return m, nil
	}
	stone, err := mat("stone")
	if err != nil {
		return nil, err
	}
	slime, err := mat("slime")
	if err != nil {
		return nil, err
	}
	ice, err := mat("ice")
	if err != nil {
		return nil, err
	}

	terrain := world.New(tbl)
	terrain.LoadBox(sceneArea)
	terrain.Fill(cube.Pos{-20, 0, -10}, cube.Pos{20, 0, 10}, stone)
	terrain.Fill(cube.Pos{20, 1, -10}, cube.Pos{20, 6, 10}, stone)
	terrain.Fill(cube.Pos{-20, 1, -10}, cube.Pos{-20, 6, 10}, stone)
	terrain.Fill(cube.Pos{pillarX, 4, -1}, cube.Pos{pillarX, 4, 1}, stone)

	player := entity.New(entity.KindPlayer, ferryOrigin.Add(mgl64.Vec3{1.5, 1, 1.5}))
	player.Side = entity.SideClient
	opts.LocalPlayer = player.ID
	sim := New(cfg, terrain, opts)

	ferry := assembly.New(ferryOrigin)
	ferry.TerrainCollision = true
	fill(ferry, 5, 3, stone)
	ferry.SetCell(cube.Pos{2, 0, 1}, slime)
	if err := sim.AddAssembly(ferry, NewPatrol(ferry, mgl64.Vec3{cfg.Scene.FerrySpeed, 0, 0}, cfg.Scene.FerryRange)); err != nil {
		return nil, err
	}

	turntable := assembly.New(turntableAt)
	fill(turntable, 3, 3, stone)
	if err := sim.AddAssembly(turntable, &Spinner{Rate: cfg.Scene.SpinRate}); err != nil {
		return nil, err
	}

	ramp := assembly.New(rampAt)
	fill(ramp, 5, 3, ice)
	ramp.Rotation = assembly.EulerRotation(cfg.Scene.RampTilt, 0, 0, 0)
	if err := sim.AddAssembly(ramp, nil); err != nil {
		return nil, err
	}

	if cfg.Scene.Simplify {
		for _, a := range sim.Assemblies() {
			a.SimplifyColliders()
		}
	}

	entities := []*entity.Entity{player}
	for i := 0; i < cfg.Scene.RemoteEchos; i++ {
		echo := entity.New(entity.KindPlayer, player.Pos.Add(mgl64.Vec3{0, 0, float64(i%2) - 0.5}))
		echo.Side = entity.SideClient
		entities = append(entities, echo)
	}
	entities = append(entities, entity.New(entity.KindMob, turntableAt.Add(mgl64.Vec3{1.5, 1, 1.5})))
	for i := 0; i < cfg.Scene.Items; i++ {
		pad := ferryOrigin.Add(mgl64.Vec3{2.5, 3 + float64(i), 1.5})
		entities = append(entities, entity.New(entity.KindItem, pad))
	}
	entities = append(entities, entity.New(entity.KindItem, rampAt.Add(mgl64.Vec3{2.5, 2, 1.5})))

	for _, e := range entities {
		if err := sim.AddEntity(e); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

// fill lays a single layer of w by d cells of m.
func fill(a *assembly.Assembly, w, d int, m *material.Props) {
	for x := 0; x < w; x++ {
		for z := 0; z < d; z++ {
			a.SetCell(cube.Pos{x, 0, z}, m)
		}
	}
}
