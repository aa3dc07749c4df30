package render

import (
	"fmt"
	"image/color"
	"math"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
)

var (
	colorBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xFF}
	colorHUD        = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	colorLocal      = color.RGBA{R: 0x22, G: 0xD3, B: 0xEE, A: 0xFF}
	colorRemote     = color.RGBA{R: 0xF4, G: 0x72, B: 0xB6, A: 0xFF}
	colorEnemy      = color.RGBA{R: 0xE1, G: 0x1D, B: 0x48, A: 0xFF}
	colorBomb       = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	colorBullet     = color.RGBA{R: 0xFA, G: 0xCC, B: 0x15, A: 0xFF}
	colorFireTop    = color.RGBA{R: 0xFD, G: 0xE0, B: 0x47, A: 0xFF}
	colorFireBottom = color.RGBA{R: 0xEA, G: 0x58, B: 0x0C, A: 0xFF}
	colorPickup     = color.RGBA{R: 0x4A, G: 0xDE, B: 0x80, A: 0xFF}
)

// Stats - что нарисовано за кадр.
type Stats struct {
	Cells    int
	Entities int
	// Anchored - сущности, впервые увиденные в этом кадре.
	Anchored int
}

// Scene рисует снапшот. Хранит только набор ID прошлого кадра.
type Scene struct {
	palette Palette
	localID string
	seen    map[string]struct{}
}

func NewScene(palette Palette) *Scene {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Scene{palette: palette, seen: make(map[string]struct{})}
}

// SetLocalPlayer - кого подсвечивать и чьи показатели выводить в HUD.
func (s *Scene) SetLocalPlayer(id string) { s.localID = id }

// Draw рисует кадр. snap и view не изменяются.
func (s *Scene) Draw(surf Surface, snap *domain.Snapshot, view camera.View) Stats {
	var st Stats
	surf.FillRect(0, 0, view.Viewport.X, view.Viewport.Y, colorBackground)
	if snap == nil || view.CellSize <= 0 {
		return st
	}

	if snap.Grid != nil {
		st.Cells = s.drawGrid(surf, snap.Grid, view)
	}

	next := make(map[string]struct{}, len(s.seen))
	// Новая сущность еще не прошла через сглаживание камеры: ставим ее
	// относительно целевого смещения, иначе она отстанет на кадр.
	place := func(id string, pos domain.Vec2) domain.Vec2 {
		next[id] = struct{}{}
		offset := view.Offset
		if _, ok := s.seen[id]; !ok {
			offset = offset.Add(view.Lag)
			st.Anchored++
		}
		return pos.Sub(offset)
	}

	for _, p := range snap.Pickups {
		sp := place("pickup:"+p.ID, domain.Vec2{X: p.X, Y: p.Y})
		if visible(sp, p.Size, view) {
			surf.FillRect(sp.X+p.Size/4, sp.Y+p.Size/4, p.Size/2, p.Size/2, colorPickup)
			st.Entities++
		}
	}
	for _, e := range snap.Enemies {
		if e.Destroyed {
			continue
		}
		sp := place("enemy:"+e.ID, domain.Vec2{X: e.X, Y: e.Y})
		if visible(sp, e.Size, view) {
			surf.Arc(sp.X+e.Size/2, sp.Y+e.Size/2, e.Size/2, colorEnemy)
			st.Entities++
		}
	}
	for _, p := range snap.Projectiles {
		sp := place("projectile:"+p.ID, domain.Vec2{X: p.X, Y: p.Y})
		if !visible(sp.Sub(domain.Vec2{X: p.Radius, Y: p.Radius}), 2*p.Radius, view) {
			continue
		}
		switch {
		case p.Exploding:
			surf.Gradient(sp.X-p.Radius, sp.Y-p.Radius, 2*p.Radius, 2*p.Radius, colorFireTop, colorFireBottom)
		case p.Kind == "bullet":
			surf.Arc(sp.X, sp.Y, p.Radius, colorBullet)
		default:
			surf.Arc(sp.X, sp.Y, p.Radius, colorBomb)
		}
		st.Entities++
	}
	for _, id := range sortedPlayerIDs(snap.Players) {
		p := snap.Players[id]
		sp := place("player:"+id, domain.Vec2{X: p.X, Y: p.Y})
		if !visible(sp, p.Size, view) {
			continue
		}
		c := colorRemote
		if id == s.localID {
			c = colorLocal
		}
		if p.Invulnerable {
			c.A = 0x80
		}
		surf.FillRect(sp.X, sp.Y, p.Size, p.Size, c)
		st.Entities++
	}
	s.seen = next

	s.drawHUD(surf, snap)
	return st
}

func (s *Scene) drawGrid(surf Surface, g *domain.Grid, view camera.View) int {
	cs := view.CellSize
	x0 := max(0, int(math.Floor(view.Offset.X/cs)))
	y0 := max(0, int(math.Floor(view.Offset.Y/cs)))
	x1 := min(g.Width(), int(math.Ceil((view.Offset.X+view.Viewport.X)/cs)))
	y1 := min(g.Height(), int(math.Ceil((view.Offset.Y+view.Viewport.Y)/cs)))

	drawn := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c, _ := g.At(x, y)
			if c == domain.CellEmpty {
				continue
			}
			surf.FillRect(float64(x)*cs-view.Offset.X, float64(y)*cs-view.Offset.Y, cs, cs, s.palette.Glyph(c).RGBA())
			drawn++
		}
	}
	return drawn
}

func (s *Scene) drawHUD(surf Surface, snap *domain.Snapshot) {
	line := fmt.Sprintf("LVL %d  TIME %.0f", snap.Meta.Level, snap.Meta.RemainingTime)
	if p, ok := snap.Player(s.localID); ok {
		line += fmt.Sprintf("  LIVES %d  BOMBS %d", p.Lives, p.Bombs)
		if p.Secondary > 0 {
			line += fmt.Sprintf("  SEC %d", p.Secondary)
		}
	}
	surf.Text(8, 16, line, colorHUD)
	if snap.Meta.Status == domain.GameStatusGameOver {
		surf.Text(8, 32, "GAME OVER", colorHUD)
	}
}

func visible(sp domain.Vec2, size float64, view camera.View) bool {
	return sp.X+size > 0 && sp.Y+size > 0 && sp.X < view.Viewport.X && sp.Y < view.Viewport.Y
}
