package visualization

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"assembly-sim/internal/entity"
	"assembly-sim/internal/simulation"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	entityRadiusOnScreen = 4.0
	padding              = 50.0
)

var (
	backgroundColor = color.RGBA{230, 230, 230, 255}
	cellColor       = color.RGBA{110, 110, 120, 255}
	bouncyColor     = color.RGBA{90, 200, 90, 255}
	kindColors      = map[entity.Kind]color.RGBA{
		entity.KindPlayer: {0, 0, 255, 255},
		entity.KindMob:    {200, 120, 0, 255},
		entity.KindItem:   {255, 0, 0, 255},
	}
)

// mark is one drawn point: a cell center or an entity.
type mark struct {
	pos    mgl64.Vec3
	color  color.RGBA
	radius float64
	cell   bool
}

// Renderer implements ebiten.Game. It steps the simulation once per ebiten
// tick; space pauses.
type Renderer struct {
	sim       *simulation.Simulation
	projector Projector
	paused    bool

	screenWidth  int
	screenHeight int

	scale   float64
	offsetX float64
	offsetY float64

	marks     []mark
	projected []mgl64.Vec2
}

// NewRenderer creates a new Ebiten renderer.
func NewRenderer(sim *simulation.Simulation, projector Projector) *Renderer {
	return &Renderer{sim: sim, projector: projector}
}

// Update steps the simulation and reprojects the scene.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.paused = !r.paused
	}
	if !r.paused {
		r.sim.Step()
	}

	r.marks = r.collectMarks()
	points := make([]mgl64.Vec3, len(r.marks))
	for i, m := range r.marks {
		points[i] = m.pos
	}
	projected, err := r.projector.Project(points)
	if err != nil {
		// Keep drawing the previous frame.
		log.Printf("visualization: projection failed: %v", err)
		return nil
	}
	r.projected = projected
	r.calculateTransform()
	return nil
}

func (r *Renderer) collectMarks() []mark {
	var marks []mark
	for _, a := range r.sim.Assemblies() {
		f := a.Frame()
		for _, c := range a.Cells() {
			if !c.Material.HasShape() {
				continue
			}
			center := mgl64.Vec3{float64(c.Pos[0]) + 0.5, float64(c.Pos[1]) + 0.5, float64(c.Pos[2]) + 0.5}
			col := cellColor
			if c.Material.Bounce > 0 {
				col = bouncyColor
			}
			marks = append(marks, mark{pos: f.ToWorld(center), color: col, radius: 0.5, cell: true})
		}
	}
	for _, e := range r.sim.Entities() {
		center := e.Pos.Add(mgl64.Vec3{0, e.Height / 2, 0})
		marks = append(marks, mark{pos: center, color: kindColors[e.Kind], radius: e.Width / 2})
	}
	return marks
}

// calculateTransform fits the projected points onto the screen.
func (r *Renderer) calculateTransform() {
	r.scale = 1
	r.offsetX = float64(r.screenWidth) / 2
	r.offsetY = float64(r.screenHeight) / 2
	if len(r.projected) == 0 {
		return
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range r.projected {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	worldWidth := math.Max(maxX-minX, 1)
	worldHeight := math.Max(maxY-minY, 1)
	scaleX := (float64(r.screenWidth) - 2*padding) / worldWidth
	scaleY := (float64(r.screenHeight) - 2*padding) / worldHeight
	if s := math.Min(scaleX, scaleY); s > 0 && !math.IsInf(s, 0) {
		r.scale = s
	}

	r.offsetX = float64(r.screenWidth)/2 - (minX+maxX)/2*r.scale
	r.offsetY = float64(r.screenHeight)/2 - (minY+maxY)/2*r.scale
}

func (r *Renderer) worldToScreen(p mgl64.Vec2) (float32, float32) {
	return float32(p[0]*r.scale + r.offsetX), float32(p[1]*r.scale + r.offsetY)
}

// Draw renders cells as squares and entities as circles.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if len(r.projected) != len(r.marks) {
		ebitenutil.DebugPrint(screen, "Waiting for projection...")
		return
	}
	for i, m := range r.marks {
		x, y := r.worldToScreen(r.projected[i])
		if m.cell {
			side := float32(2 * m.radius * r.scale)
			vector.DrawFilledRect(screen, x-side/2, y-side/2, side, side, m.color, false)
			continue
		}
		radius := float32(math.Max(entityRadiusOnScreen, m.radius*r.scale))
		vector.DrawFilledCircle(screen, x, y, radius, m.color, true)
	}

	r.drawDebugInfo(screen)
}

func (r *Renderer) drawDebugInfo(screen *ebiten.Image) {
	st := r.sim.Stats()
	msg := fmt.Sprintf("Tick: %d", st.Ticks)
	if r.paused {
		msg += " (paused)"
	}
	msg += fmt.Sprintf("\nFPS: %.1f, TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	msg += fmt.Sprintf("Assemblies: %d, Entities: %d\n", len(r.sim.Assemblies()), len(r.sim.Entities()))
	msg += fmt.Sprintf("Surfaces: %d Bounces: %d Temporal: %d\n", st.Surfaces, st.Bounces, st.Temporal)
	msg += fmt.Sprintf("Blocked: %d Skipped: %d Reloads: %d", st.Blocked, st.Skipped, st.Reloads)
	ebitenutil.DebugPrint(screen, msg)
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	r.screenWidth = outsideWidth
	r.screenHeight = outsideHeight
	return r.screenWidth, r.screenHeight
}
