package engine

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/input"
	"bomberman-client/internal/network"
	"bomberman-client/internal/state"
	"bomberman-client/internal/watchdog"
	"bomberman-client/pkg/api"
)

// RenderFunc рисует кадр. snapshot и view только для чтения.
type RenderFunc func(snapshot *domain.Snapshot, view camera.View)

// ResizeFunc вызывается, когда меняется размер видимой области.
type ResizeFunc func(width, height float64)

// Scheduler решает, когда вызывать тик: таймер, колбэк окна или тест.
type Scheduler interface {
	Start(tick func(dt time.Duration))
	Stop()
}

// Loop - однопоточный кооперативный драйвер кадров.
//
// Тик:
//  0. выполнить накопленные события транспорта и подтверждения (Inbox);
//  1. если сессия активна, отправить ввод и защелкнутый коммит;
//  2. проверка сторожа ресинка;
//  3. шаг камеры;
//  4. рендер (пропускается без ошибки, пока нет снапшота).
//
// Ни один шаг не блокирует.
type Loop struct {
	inbox     *network.Inbox
	socket    network.Socket
	session   *Session
	store     *state.Store
	watchdog  *watchdog.Watchdog
	camera    *camera.Controller
	input     *input.State
	scheduler Scheduler
	clock     func() time.Time
	log       logrus.FieldLogger

	render       RenderFunc
	onResize     ResizeFunc
	lastViewport domain.Vec2

	mu      sync.Mutex
	running bool
	frames  uint64
}

func (l *Loop) SetRenderer(fn RenderFunc) { l.render = fn }
func (l *Loop) OnResize(fn ResizeFunc)    { l.onResize = fn }

// Start запускает планировщик.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	l.log.Info("Sync loop started")
	l.scheduler.Start(l.Tick)
}

// Stop останавливает тики и отцепляет сессию от транспорта.
// Вызывается вне тика или после остановки планировщика: TickerScheduler.Stop
// ждет окончания текущего тика.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	l.scheduler.Stop()
	l.session.Stop()
	l.log.WithField("frames", l.Frames()).Info("Sync loop stopped")
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Tick - один кадр. dt - время с предыдущего кадра.
func (l *Loop) Tick(dt time.Duration) {
	if !l.Running() {
		return
	}
	l.mu.Lock()
	l.frames++
	l.mu.Unlock()

	l.inbox.Drain()
	now := l.clock()

	if l.session.Active() {
		l.sendInput()
	}

	l.watchdog.Check(now)

	snap := l.store.Renderable()
	if snap != nil && snap.Grid != nil {
		if p, ok := snap.Player(l.session.PlayerID()); ok {
			l.camera.Advance(dt, p.Center(), snap.Grid.Width(), snap.Grid.Height())
		}
	}

	if vp := l.camera.Viewport(); vp != l.lastViewport {
		l.lastViewport = vp
		if l.onResize != nil {
			l.onResize(vp.X, vp.Y)
		}
	}

	if snap == nil || l.render == nil {
		return
	}
	l.render(snap, l.camera.View())
}

func (l *Loop) sendInput() {
	gameID := l.session.GameID()
	if err := l.socket.Emit(api.EventInput, l.input.Payload(gameID), nil); err != nil {
		l.log.WithError(err).Debug("Input not sent")
	}
	if l.input.TakeCommit() {
		if err := l.socket.Emit(api.EventPlaceBomb, api.PlaceBombPayload{GameID: gameID}, nil); err != nil {
			l.log.WithError(err).Debug("Place bomb not sent")
		}
	}
}

// --- планировщики ---

// TickerScheduler тикает из своей горутины с фиксированным периодом.
// Все изменения состояния происходят в этой горутине.
type TickerScheduler struct {
	Interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTickerScheduler(frameRate int) *TickerScheduler {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &TickerScheduler{Interval: time.Second / time.Duration(frameRate)}
}

func (t *TickerScheduler) Start(tick func(dt time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	stop, done := t.stop, t.done

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				tick(now.Sub(last))
				last = now
			}
		}
	}()
}

// Stop ждет окончания текущего тика. Из самого тика не вызывать.
func (t *TickerScheduler) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// ManualScheduler ничего не запускает сам: тики дает хост (Update окна) или тест.
type ManualScheduler struct {
	mu   sync.Mutex
	tick func(dt time.Duration)
}

func (m *ManualScheduler) Start(tick func(dt time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = tick
}

func (m *ManualScheduler) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = nil
}

// Step выполняет один тик, если планировщик запущен.
func (m *ManualScheduler) Step(dt time.Duration) {
	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()
	if tick != nil {
		tick(dt)
	}
}
