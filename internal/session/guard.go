package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/network"
	"bomberman-client/pkg/api"
)

// Authenticator - внешний сервис токенов.
type Authenticator interface {
	IsSessionValid() bool
	// RefreshSession может ходить в сеть. Guard вызывает его вне цикла кадров.
	RefreshSession(ctx context.Context) bool
}

// Connector - та часть сокета, которая нужна Guard.
type Connector interface {
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Hooks - реакции UI. Любое поле может быть nil.
type Hooks struct {
	// Connecting - начата попытка (пере)подключения.
	Connecting func()
	// Escalate - обновить токен не удалось, нужен повторный вход.
	Escalate func(reason string)
}

// Guard отвечает за ошибки авторизации на уровне транспорта:
// обновить токен и переподключиться, а если обновить не вышло - эскалировать в UI.
// Сетевая работа идет в горутинах, результат возвращается в цикл через Inbox.
type Guard struct {
	auth    Authenticator
	socket  Connector
	inbox   *network.Inbox
	hooks   Hooks
	log     logrus.FieldLogger
	timeout time.Duration
	backoff time.Duration

	mu         sync.Mutex
	refreshing bool
	stopped    bool
	wg         sync.WaitGroup
}

type Option func(*Guard)

// WithTimeout ограничивает одну попытку обновления и подключения.
func WithTimeout(d time.Duration) Option { return func(g *Guard) { g.timeout = d } }

// WithBackoff - пауза перед переподключением после обычного разрыва.
func WithBackoff(d time.Duration) Option { return func(g *Guard) { g.backoff = d } }

func NewGuard(auth Authenticator, socket Connector, inbox *network.Inbox, hooks Hooks, log logrus.FieldLogger, opts ...Option) *Guard {
	g := &Guard{
		auth:    auth,
		socket:  socket,
		inbox:   inbox,
		hooks:   hooks,
		log:     log.WithField("component", "session_guard"),
		timeout: 10 * time.Second,
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureValid проверяет токен до первого подключения.
// Блокирует: вызывается хостом при старте, до запуска цикла.
func (g *Guard) EnsureValid(ctx context.Context) bool {
	if g.auth.IsSessionValid() {
		return true
	}
	g.log.Info("Session invalid, refreshing before connect")
	return g.auth.RefreshSession(ctx)
}

// HandleConnectError - обработчик connect_error (вызывается в цикле кадров).
func (g *Guard) HandleConnectError(v api.ConnectErrorView) {
	if !v.IsAuthFailure() {
		g.log.WithField("message", v.Message).Warn("Connect error is not an auth failure, retrying later")
		g.reconnectLater(false)
		return
	}
	g.log.WithField("code", v.Code).Warn("Auth failure, refreshing session")
	g.reconnectLater(true)
}

// HandleDisconnect - обработчик разрыва (вызывается в цикле кадров).
func (g *Guard) HandleDisconnect(reason string) {
	g.reconnectLater(!g.auth.IsSessionValid())
}

// Refreshing true, пока идет попытка.
func (g *Guard) Refreshing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshing
}

// Stop ждет завершения фоновых попыток. Новые не запускаются.
func (g *Guard) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
	g.wg.Wait()
}

func (g *Guard) reconnectLater(refresh bool) {
	g.mu.Lock()
	if g.refreshing || g.stopped {
		g.mu.Unlock()
		return
	}
	g.refreshing = true
	g.wg.Add(1)
	g.mu.Unlock()

	if g.hooks.Connecting != nil {
		g.hooks.Connecting()
	}

	go func() {
		defer g.wg.Done()
		ok := true
		if refresh {
			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			ok = g.auth.RefreshSession(ctx)
			cancel()
		} else if g.backoff > 0 {
			time.Sleep(g.backoff)
		}

		// Флаг снимается до Reconnect: его connect_error должен запустить новую попытку.
		g.mu.Lock()
		g.refreshing = false
		stopped := g.stopped
		g.mu.Unlock()
		if stopped {
			return
		}

		if !ok {
			g.inbox.Post(func() {
				g.log.Error("Session refresh failed, re-login required")
				if g.hooks.Escalate != nil {
					g.hooks.Escalate("session expired, please log in again")
				}
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		if err := g.socket.Reconnect(ctx); err != nil {
			g.log.WithError(err).Warn("Reconnect failed")
		}
	}()
}
