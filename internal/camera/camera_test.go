package camera

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"bomberman-client/internal/domain"
	"bomberman-client/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const frame = 16 * time.Millisecond

func newController(cfg Config) *Controller {
	return New(cfg, logger.Discard())
}

func squareViewConfig() Config {
	return Config{
		CellSize:     40,
		Viewport:     domain.Vec2{X: 400, Y: 400},
		DeadZone:     domain.Vec2{X: 100, Y: 100},
		Gain:         8,
		SlowRadius:   24,
		SnapDistance: 0.5,
	}
}

func TestAdvance_DeadZone(t *testing.T) {
	c := newController(squareViewConfig())
	// Карта 40x40 клеток = 1600px, края не мешают.
	start := domain.Vec2{X: 800, Y: 800}
	c.Advance(frame, start, 40, 40)

	initial := c.Target()
	if initial != (domain.Vec2{X: 600, Y: 600}) {
		t.Fatalf("first frame must center on player, got %+v", initial)
	}
	if c.Offset() != initial {
		t.Fatalf("first frame must not interpolate: offset %+v", c.Offset())
	}

	c.Advance(frame, domain.Vec2{X: 880, Y: 800}, 40, 40)
	if c.Target() != initial {
		t.Errorf("+80 is inside dead zone, target moved to %+v", c.Target())
	}

	c.Advance(frame, domain.Vec2{X: 960, Y: 800}, 40, 40)
	if got := c.Target().X - initial.X; got != 60 {
		t.Errorf("+160 must move target.x by 60, got %v", got)
	}
	if c.Target().Y != initial.Y {
		t.Errorf("y must stay, got %v", c.Target().Y)
	}
}

func TestAdvance_SmallGridCollapsesClamp(t *testing.T) {
	cfg := squareViewConfig()
	cfg.Viewport = ViewportFor(cfg.CellSize, 3) // 7 клеток
	cfg.DeadZone = domain.Vec2{}

	positions := []domain.Vec2{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 199, Y: 60}, {X: 5000, Y: -300}, {X: -900, Y: 40}}
	for _, p := range positions {
		c := newController(cfg)
		for i := 0; i < 200; i++ {
			c.Advance(frame, p, 5, 5)
		}
		if c.Offset().X != 0 || c.Target().X != 0 {
			t.Errorf("player %+v: offset.x=%v target.x=%v, want 0", p, c.Offset().X, c.Target().X)
		}
	}
}

func TestAdvance_BoundsAfterConvergence(t *testing.T) {
	cfg := squareViewConfig()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		w, h := 10+rng.Intn(40), 10+rng.Intn(40)
		maxX := float64(w)*cfg.CellSize - cfg.Viewport.X
		maxY := float64(h)*cfg.CellSize - cfg.Viewport.Y

		c := newController(cfg)
		// Позиции в том числе за пределами карты.
		p := domain.Vec2{
			X: rng.Float64()*float64(w)*cfg.CellSize*3 - float64(w)*cfg.CellSize,
			Y: rng.Float64()*float64(h)*cfg.CellSize*3 - float64(h)*cfg.CellSize,
		}
		c.Advance(frame, domain.Vec2{X: 200, Y: 200}, w, h)
		for f := 0; f < 500; f++ {
			c.Advance(frame, p, w, h)
		}
		off := c.Offset()
		if off.X < 0 || off.X > maxX || off.Y < 0 || off.Y > maxY {
			t.Fatalf("grid %dx%d player %+v: offset %+v outside [0,%v]x[0,%v]", w, h, p, off, maxX, maxY)
		}
	}
}

func TestAdvance_DeadZoneStability(t *testing.T) {
	c := newController(squareViewConfig())
	center := domain.Vec2{X: 800, Y: 800}
	c.Advance(frame, center, 40, 40)
	target := c.Target()

	for i := 0; i < 1000; i++ {
		phase := float64(i) / 10
		p := domain.Vec2{X: center.X + 95*math.Sin(phase), Y: center.Y + 95*math.Cos(phase*1.3)}
		c.Advance(frame, p, 40, 40)
		if c.Target() != target {
			t.Fatalf("frame %d: jitter inside dead zone moved target to %+v", i, c.Target())
		}
	}
}

func TestAdvance_ConvergesMonotonically(t *testing.T) {
	dts := []time.Duration{time.Millisecond, frame, 33 * time.Millisecond, 250 * time.Millisecond, 2 * time.Second}
	for _, dt := range dts {
		t.Run(dt.String(), func(t *testing.T) {
			c := newController(squareViewConfig())
			c.Advance(dt, domain.Vec2{X: 800, Y: 800}, 40, 40)
			far := domain.Vec2{X: 1300, Y: 500}

			prev := math.Inf(1)
			for f := 0; f < 20000; f++ {
				c.Advance(dt, far, 40, 40)
				d := c.Lag().Len()
				if d > prev {
					t.Fatalf("frame %d: distance grew %v -> %v", f, prev, d)
				}
				prev = d
				if d == 0 {
					return
				}
			}
			t.Fatalf("did not converge, remaining %v", prev)
		})
	}
}

func TestAdvance_DegenerateGrid(t *testing.T) {
	log, hook := test.NewNullLogger()
	c := New(squareViewConfig(), log)

	c.Advance(frame, domain.Vec2{X: 800, Y: 800}, 40, 40)
	c.Advance(frame, domain.Vec2{X: 800, Y: 800}, 0, 10)
	c.Advance(frame, domain.Vec2{X: 800, Y: 800}, -3, 10)

	if !c.Offset().IsZero() || !c.Lag().IsZero() {
		t.Errorf("degenerate grid must give zero offset, got %+v", c.Offset())
	}
	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("expected one warning per degenerate streak, got %d", warnings)
	}

	// После восстановления камера снова центрируется без интерполяции.
	c.Advance(frame, domain.Vec2{X: 800, Y: 800}, 40, 40)
	if c.Offset() != (domain.Vec2{X: 600, Y: 600}) {
		t.Errorf("recovery offset %+v", c.Offset())
	}
}

func TestSetViewport(t *testing.T) {
	c := newController(squareViewConfig())
	if c.SetViewport(domain.Vec2{X: 400, Y: 400}) {
		t.Error("same viewport reported as changed")
	}
	if !c.SetViewport(domain.Vec2{X: 520, Y: 520}) {
		t.Error("new viewport not reported")
	}
	if c.View().Viewport.X != 520 {
		t.Errorf("view viewport %+v", c.View().Viewport)
	}
}

func TestViewportFor(t *testing.T) {
	if got := ViewportFor(40, 3); got != (domain.Vec2{X: 280, Y: 280}) {
		t.Errorf("ViewportFor(40,3) = %+v", got)
	}
}
