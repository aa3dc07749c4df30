package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/input"
	"bomberman-client/internal/network"
	"bomberman-client/internal/state"
	"bomberman-client/internal/watchdog"
	"bomberman-client/internal/world"
)

// Client - собранное ядро: реплика мира, сторож, камера, сессия и цикл кадров.
// Хост (окно, бот, воспроизведение) дает сокет и планировщик.
type Client struct {
	Inbox    *network.Inbox
	Socket   network.Socket
	Cache    *world.Cache
	Store    *state.Store
	Watchdog *watchdog.Watchdog
	Camera   *camera.Controller
	Input    *input.State
	Session  *Session
	Loop     *Loop
}

// NewClient собирает зависимости. Сокет должен публиковать события в тот же inbox.
func NewClient(cfg Config, socket network.Socket, inbox *network.Inbox, sched Scheduler, log logrus.FieldLogger) *Client {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if sched == nil {
		sched = NewTickerScheduler(cfg.FrameRate)
	}

	cache := world.NewCache(log)
	store := state.NewStore(cache, nil, log, state.WithClock(clock))
	cam := camera.New(cfg.Camera, log)
	in := &input.State{}

	c := &Client{
		Inbox:  inbox,
		Socket: socket,
		Cache:  cache,
		Store:  store,
		Camera: cam,
		Input:  in,
	}

	// Store -> Watchdog (single-flight) -> Session.RequestResync -> socket.
	var session *Session
	wd := watchdog.New(watchdog.Config{
		StaleAfter: cfg.StaleAfter,
		LastUpdate: store.LastUpdate,
		Active:     func() bool { return session != nil && session.Active() },
		Send:       func(reason string, seq uint64) bool { return session.RequestResync(reason, seq) },
		Clock:      clock,
	}, log)
	session = newSession(socket, store, wd, cam, in, log)
	store.SetResyncer(wd)
	session.Attach()

	c.Watchdog = wd
	c.Session = session
	c.Loop = &Loop{
		inbox:     inbox,
		socket:    socket,
		session:   session,
		store:     store,
		watchdog:  wd,
		camera:    cam,
		input:     in,
		scheduler: sched,
		clock:     clock,
		log:       log.WithField("component", "sync_loop"),
	}
	return c
}
