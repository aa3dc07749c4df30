package camera

import (
	"math"
	"time"

	"bomberman-client/internal/domain"

	"github.com/sirupsen/logrus"
)

// Config - параметры камеры. Все расстояния в пикселях.
type Config struct {
	CellSize float64
	// Viewport - размер видимой области.
	Viewport domain.Vec2
	// DeadZone - полуразмер мертвой зоны по каждой оси вокруг центра экрана.
	DeadZone domain.Vec2
	// Gain - скорость сглаживания, 1/с. Доля пути за кадр = min(1, dt*Gain).
	Gain float64
	// SlowRadius - ближе этого расстояния до цели сглаживание замедляется.
	SlowRadius float64
	// SnapDistance - ближе этого расстояния камера встает точно в цель.
	SnapDistance float64
}

const minSlowScale = 0.25

// ViewportFor считает размер окна по размеру клетки и радиусу обзора в клетках.
func ViewportFor(cellSize float64, viewRadius int) domain.Vec2 {
	side := float64(2*viewRadius+1) * cellSize
	return domain.Vec2{X: side, Y: side}
}

func DefaultConfig() Config {
	return Config{
		CellSize:     40,
		Viewport:     ViewportFor(40, 7),
		DeadZone:     domain.Vec2{X: 60, Y: 60},
		Gain:         8,
		SlowRadius:   24,
		SnapDistance: 0.5,
	}
}

// View - то, что нужно рендеру на этом кадре.
type View struct {
	Offset   domain.Vec2
	Lag      domain.Vec2
	Viewport domain.Vec2
	CellSize float64
}

// Controller ведет камеру за локальным игроком: мертвая зона, ограничение по
// краям карты и сглаживание. Состояние меняется только из Advance.
type Controller struct {
	cfg Config
	log logrus.FieldLogger

	current     domain.Vec2
	target      domain.Vec2
	initialized bool
	degenerate  bool
}

func New(cfg Config, log logrus.FieldLogger) *Controller {
	return &Controller{
		cfg: cfg,
		log: log.WithField("component", "camera"),
	}
}

// Advance продвигает камеру на один кадр.
// player - позиция (центр) игрока, gridW/gridH - размер карты в клетках.
func (c *Controller) Advance(dt time.Duration, player domain.Vec2, gridW, gridH int) {
	if gridW <= 0 || gridH <= 0 || c.cfg.CellSize <= 0 || c.cfg.Viewport.X <= 0 || c.cfg.Viewport.Y <= 0 {
		if !c.degenerate {
			c.log.WithFields(logrus.Fields{
				"grid_w":    gridW,
				"grid_h":    gridH,
				"cell_size": c.cfg.CellSize,
			}).Warn("Degenerate camera input, offset reset to zero")
		}
		c.degenerate = true
		c.current = domain.Vec2{}
		c.target = domain.Vec2{}
		c.initialized = false
		return
	}
	c.degenerate = false

	maxX, maxY := c.bounds(gridW, gridH)
	center := c.cfg.Viewport.Scale(0.5)

	if !c.initialized {
		start := player.Sub(center)
		start.X = clamp(start.X, 0, maxX)
		start.Y = clamp(start.Y, 0, maxY)
		c.current = start
		c.target = start
		c.initialized = true
		return
	}

	// Отклонение игрока от центра экрана при текущем положении камеры.
	dev := player.Sub(c.current).Sub(center)
	if excess := math.Abs(dev.X) - c.cfg.DeadZone.X; excess > 0 {
		c.target.X = c.current.X + math.Copysign(excess, dev.X)
	}
	if excess := math.Abs(dev.Y) - c.cfg.DeadZone.Y; excess > 0 {
		c.target.Y = c.current.Y + math.Copysign(excess, dev.Y)
	}
	c.target.X = clamp(c.target.X, 0, maxX)
	c.target.Y = clamp(c.target.Y, 0, maxY)

	c.smooth(dt)
}

func (c *Controller) smooth(dt time.Duration) {
	diff := c.target.Sub(c.current)
	dist := diff.Len()
	if dist <= c.cfg.SnapDistance {
		c.current = c.target
		return
	}

	factor := math.Min(1, dt.Seconds()*c.cfg.Gain)
	if c.cfg.SlowRadius > 0 && dist < c.cfg.SlowRadius {
		factor *= math.Max(minSlowScale, dist/c.cfg.SlowRadius)
	}
	if factor <= 0 {
		return
	}
	c.current = c.current.Add(diff.Scale(factor))
	if c.target.Sub(c.current).Len() <= c.cfg.SnapDistance {
		c.current = c.target
	}
}

// bounds - максимальные смещения. Карта меньше окна дает 0.
func (c *Controller) bounds(gridW, gridH int) (float64, float64) {
	maxX := math.Max(0, float64(gridW)*c.cfg.CellSize-c.cfg.Viewport.X)
	maxY := math.Max(0, float64(gridH)*c.cfg.CellSize-c.cfg.Viewport.Y)
	return maxX, maxY
}

func (c *Controller) Offset() domain.Vec2 { return c.current }
func (c *Controller) Target() domain.Vec2 { return c.target }

// Lag - насколько камера отстает от цели (target - current).
func (c *Controller) Lag() domain.Vec2 { return c.target.Sub(c.current) }

func (c *Controller) Viewport() domain.Vec2 { return c.cfg.Viewport }

// SetViewport меняет размер окна. Возвращает true, если размер изменился.
func (c *Controller) SetViewport(v domain.Vec2) bool {
	if v == c.cfg.Viewport {
		return false
	}
	c.cfg.Viewport = v
	return true
}

func (c *Controller) View() View {
	return View{
		Offset:   c.current,
		Lag:      c.Lag(),
		Viewport: c.cfg.Viewport,
		CellSize: c.cfg.CellSize,
	}
}

// Reset возвращает камеру в исходное состояние (смена игры).
func (c *Controller) Reset() {
	c.current = domain.Vec2{}
	c.target = domain.Vec2{}
	c.initialized = false
	c.degenerate = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
