package main

import (
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"bomberman-client/internal/app"
	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/render"
)

// Раскладка: стрелки и WASD, пробел - бомба.
var keymap = map[ebiten.Key]domain.ActionType{
	ebiten.KeyArrowUp:    domain.ActionMoveUp,
	ebiten.KeyW:          domain.ActionMoveUp,
	ebiten.KeyArrowDown:  domain.ActionMoveDown,
	ebiten.KeyS:          domain.ActionMoveDown,
	ebiten.KeyArrowLeft:  domain.ActionMoveLeft,
	ebiten.KeyA:          domain.ActionMoveLeft,
	ebiten.KeyArrowRight: domain.ActionMoveRight,
	ebiten.KeyD:          domain.ActionMoveRight,
	ebiten.KeySpace:      domain.ActionPlaceBomb,
}

var (
	colorButton  = color.RGBA{R: 0x33, G: 0x41, B: 0x55, A: 0xE0}
	colorOverlay = color.RGBA{A: 0xA0}
)

// Game - хост ebiten: тикает цикл клиента из Update и показывает кадр в Draw.
type Game struct {
	rt      *app.Runtime
	client  *engine.Client
	sched   *engine.ManualScheduler
	scene   *render.Scene
	canvas  *canvas
	regions render.Regions
	log     logrus.FieldLogger

	dt      time.Duration
	status  engine.Status
	message string
	quit    atomic.Bool
}

func NewGame(rt *app.Runtime, sched *engine.ManualScheduler) *Game {
	c := rt.Client
	vp := c.Camera.Viewport()
	g := &Game{
		rt:     rt,
		client: c,
		sched:  sched,
		scene:  render.NewScene(render.DefaultPalette()),
		canvas: newCanvas(int(vp.X), int(vp.Y)),
		log:    rt.Log.WithField("component", "window"),
		dt:     time.Second / time.Duration(ebiten.TPS()),
	}

	c.Loop.SetRenderer(func(snap *domain.Snapshot, view camera.View) {
		g.scene.SetLocalPlayer(c.Session.PlayerID())
		g.scene.Draw(g.canvas, snap, view)
	})
	c.Loop.OnResize(func(w, h float64) {
		g.canvas.Resize(int(w), int(h))
		g.layoutButtons(w)
	})
	c.Session.OnStatus(func(st engine.Status, msg string) {
		g.status, g.message = st, msg
		g.log.WithFields(logrus.Fields{"status": st.String(), "message": msg}).Info("Session status")
	})
	g.layoutButtons(vp.X)
	return g
}

// layoutButtons регистрирует кликабельные области один раз на размер окна.
func (g *Game) layoutButtons(width float64) {
	g.regions.Add("resync", render.Rect{X: width - 92, Y: 4, W: 88, H: 20}, func() {
		g.client.Watchdog.RequestResync("manual")
	})
}

// Quit просит окно закрыться на следующем Update.
func (g *Game) Quit() { g.quit.Store(true) }

func (g *Game) Update() error {
	if g.quit.Load() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	in := g.client.Input
	if !ebiten.IsFocused() {
		in.Clear()
	} else {
		pressed := make(map[domain.ActionType]bool, 5)
		for key, action := range keymap {
			if ebiten.IsKeyPressed(key) {
				pressed[action] = true
			}
		}
		for _, a := range domain.MoveActions {
			in.Set(a, pressed[a])
		}
		in.Set(domain.ActionPlaceBomb, pressed[domain.ActionPlaceBomb])
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if id := g.regions.Click(float64(x), float64(y)); id != "" {
			g.log.WithField("region", id).Debug("Click")
		}
	}

	g.sched.Step(g.dt)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.canvas.img, &ebiten.DrawImageOptions{})

	vector.DrawFilledRect(screen, float32(screen.Bounds().Dx()-92), 4, 88, 20, colorButton, false)
	ebitenutil.DebugPrintAt(screen, "RESYNC", screen.Bounds().Dx()-70, 6)

	if g.status == engine.StatusPlaying {
		return
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, float32(b.Dy()/2-20), float32(b.Dx()), 40, colorOverlay, false)
	line := g.status.String()
	if g.message != "" {
		line = fmt.Sprintf("%s: %s", line, g.message)
	}
	ebitenutil.DebugPrintAt(screen, line, 12, b.Dy()/2-8)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := g.client.Camera.Viewport()
	return int(vp.X), int(vp.Y)
}
