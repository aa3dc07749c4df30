package agent

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
)

// Bot - "игрок-компьютер" (headless agent). Работает поверх того же клиентского
// ядра, что и окно: получает снимки через цикл кадров и отвечает вводом.
//
// Жизненный цикл:
//  1. NewBot -> Attach ставит OnFrame рендером цикла.
//  2. Каждый кадр OnFrame смотрит на реплику: где я, куда можно пойти.
//  3. Когда бот дошел до центра целевой клетки, он выбирает следующую
//     и иногда ставит бомбу рядом с разрушаемым блоком.
type Bot struct {
	client *engine.Client
	rng    *rand.Rand
	log    logrus.FieldLogger

	// BombChance - вероятность поставить бомбу, стоя рядом с блоком.
	BombChance float64
	// Tolerance - насколько близко к центру клетки считается "дошел", пикселей.
	Tolerance float64
	// AfterFrame вызывается после решения бота (офлайн-сервер шагает здесь).
	AfterFrame func()

	heading   domain.ActionType
	target    [2]int
	hasTarget bool
	lastPos   domain.Vec2
	stuck     int
	bombHeld  bool

	decisions int
	bombs     int
}

// stuckFrames - столько кадров без движения, и бот меняет цель.
const stuckFrames = 20

func NewBot(c *engine.Client, rng *rand.Rand, log logrus.FieldLogger) *Bot {
	return &Bot{
		client:     c,
		rng:        rng,
		log:        log.WithField("component", "bot"),
		BombChance: 0.3,
		Tolerance:  2,
	}
}

// Attach подключает бота к циклу кадров клиента.
func (b *Bot) Attach() {
	b.client.Loop.SetRenderer(b.OnFrame)
}

func (b *Bot) Decisions() int { return b.decisions }
func (b *Bot) Bombs() int     { return b.bombs }

// OnFrame - мозг бота. Выполняется на цикле кадров.
func (b *Bot) OnFrame(snap *domain.Snapshot, view camera.View) {
	if b.AfterFrame != nil {
		defer b.AfterFrame()
	}

	in := b.client.Input
	// Бомба - защелка: нажатие на один кадр, потом отпускаем.
	if b.bombHeld {
		in.Release()
		b.bombHeld = false
	}

	session := b.client.Session
	if !session.Active() || snap == nil || snap.Grid == nil || view.CellSize <= 0 {
		in.Clear()
		b.hasTarget = false
		return
	}
	me, ok := snap.Player(session.PlayerID())
	if !ok || me.Lives <= 0 {
		in.Clear()
		b.hasTarget = false
		return
	}

	center := me.Center()
	if center == b.lastPos {
		b.stuck++
	} else {
		b.stuck = 0
	}
	b.lastPos = center

	cs := view.CellSize
	cx, cy := int(center.X/cs), int(center.Y/cs)

	if b.hasTarget && b.stuck < stuckFrames {
		tx := (float64(b.target[0]) + 0.5) * cs
		ty := (float64(b.target[1]) + 0.5) * cs
		if math.Abs(center.X-tx) > b.Tolerance || math.Abs(center.Y-ty) > b.Tolerance {
			b.press(b.heading)
			return
		}
	}

	b.decide(snap.Grid, cx, cy)
}

// decide выбирает следующую клетку и, возможно, ставит бомбу.
func (b *Bot) decide(g *domain.Grid, cx, cy int) {
	b.decisions++
	b.stuck = 0

	if b.nearBlock(g, cx, cy) && b.rng.Float64() < b.BombChance {
		b.client.Input.Press()
		b.bombHeld = true
		b.bombs++
		b.log.WithFields(logrus.Fields{"x": cx, "y": cy}).Debug("Bot places bomb")
	}

	var options []domain.ActionType
	var reverse domain.ActionType
	for _, a := range domain.MoveActions {
		dx, dy := a.Step()
		hx, hy := b.heading.Step()
		if b.heading.IsMove() && dx == -hx && dy == -hy {
			reverse = a
		}
		if g.Passable(cx+dx, cy+dy) {
			options = append(options, a)
		}
	}

	// Разворот только из тупика.
	if len(options) > 1 && reverse != domain.ActionUnknown {
		filtered := options[:0]
		for _, a := range options {
			if a != reverse {
				filtered = append(filtered, a)
			}
		}
		options = filtered
	}

	if len(options) == 0 {
		b.hasTarget = false
		b.press(domain.ActionUnknown)
		return
	}

	next := options[b.rng.Intn(len(options))]
	dx, dy := next.Step()
	b.heading = next
	b.target = [2]int{cx + dx, cy + dy}
	b.hasTarget = true
	b.press(next)
}

// press оставляет нажатым только одно направление.
func (b *Bot) press(a domain.ActionType) {
	for _, m := range domain.MoveActions {
		b.client.Input.Set(m, m == a)
	}
}

func (b *Bot) nearBlock(g *domain.Grid, cx, cy int) bool {
	for _, a := range domain.MoveActions {
		dx, dy := a.Step()
		if t, ok := g.At(cx+dx, cy+dy); ok && t == domain.CellBreakableBlock {
			return true
		}
	}
	return false
}
