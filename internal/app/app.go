package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/config"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/infrastructure/storage"
	"bomberman-client/internal/network"
	"bomberman-client/internal/server"
	"bomberman-client/internal/session"
	"bomberman-client/internal/version"
	"bomberman-client/pkg/logger"
)

// Runtime - клиент, собранный для работы по сети: сокет, авторизация,
// запись трассы и диагностический HTTP. Общий для окна и бота.
type Runtime struct {
	Config config.Config
	Log    *logrus.Logger
	Client *engine.Client
	Socket *network.WSSocket
	Auth   *session.StaticAuth
	Guard  *session.Guard

	trace     *storage.TraceWriter
	tracePath string
	debug     *server.Server
}

// LoadConfig читает файл, накладывает окружение и проверяет результат.
// override вызывается между окружением и проверкой (флаги командной строки).
func LoadConfig(path string, lookup func(string) (string, bool), override func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(lookup)
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Bootstrap собирает Runtime. Подключение не начинается до Connect.
func Bootstrap(cfg config.Config, sched engine.Scheduler, log *logrus.Logger) (*Runtime, error) {
	if log == nil {
		log = logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
	log.Info(version.String())

	rt := &Runtime{
		Config: cfg,
		Log:    log,
		Auth:   session.NewStaticAuth(cfg.Auth.Token),
	}

	wsCfg, err := cfg.WS(rt.Auth.Token)
	if err != nil {
		return nil, err
	}
	inbox := network.NewInbox()
	rt.Socket = network.NewWSSocket(wsCfg, inbox, log)
	rt.Client = engine.NewClient(cfg.Engine(), rt.Socket, inbox, sched, log)

	s := rt.Client.Session
	rt.Guard = session.NewGuard(rt.Auth, rt.Socket, inbox, session.Hooks{
		Connecting: s.MarkConnecting,
		Escalate:   s.MarkAuthRequired,
	}, log, session.WithTimeout(cfg.Server.AckTimeout))
	s.OnConnectError = rt.Guard.HandleConnectError
	s.OnDisconnect = rt.Guard.HandleDisconnect

	if cfg.Debug.Addr != "" {
		rt.debug = server.New(rt.Client, cfg.Debug.Addr, log)
		go func() {
			if err := rt.debug.Run(); err != nil {
				log.WithError(err).Error("Debug HTTP stopped")
			}
		}()
	}
	return rt, nil
}

// StartTrace начинает запись входящих событий игры gameID.
func (rt *Runtime) StartTrace(gameID string) error {
	if rt.Config.Trace.Dir == "" {
		return nil
	}
	rt.stopTrace()

	svc, err := storage.NewTraceService(rt.Config.Trace.Dir)
	if err != nil {
		return err
	}
	w, path, err := svc.Create(storage.TraceMeta{GameID: gameID, Codec: rt.Config.Server.Codec})
	if err != nil {
		return err
	}
	rt.trace, rt.tracePath = w, path
	rt.Client.Session.SetRecorder(w)
	rt.Log.WithField("path", path).Info("Recording trace")
	return nil
}

// TracePath - файл текущей трассы (пусто, если запись выключена).
func (rt *Runtime) TracePath() string { return rt.tracePath }

func (rt *Runtime) stopTrace() {
	if rt.trace == nil {
		return
	}
	rt.Client.Session.SetRecorder(nil)
	if err := rt.trace.Close(); err != nil {
		rt.Log.WithError(err).Warn("Failed to close trace")
	} else {
		rt.Log.WithFields(logrus.Fields{"path": rt.tracePath, "records": rt.trace.Count()}).Info("Trace saved")
	}
	rt.trace = nil
}

// Connect проверяет токен и подключается в фоне. onConnected выполняется
// на цикле кадров после первого успешного подключения.
func (rt *Runtime) Connect(ctx context.Context, onConnected func()) {
	go func() {
		if !rt.Guard.EnsureValid(ctx) {
			rt.Client.Inbox.Post(func() { rt.Client.Session.MarkAuthRequired("session expired") })
			return
		}
		if err := rt.Socket.Connect(ctx); err != nil {
			// connect_error уже ушел в цикл, Guard повторит попытку.
			rt.Log.WithError(err).Warn("Initial connect failed")
			return
		}
		if onConnected != nil {
			rt.Client.Inbox.Post(onConnected)
		}
	}()
}

// Close останавливает все в обратном порядке.
func (rt *Runtime) Close() {
	rt.Client.Loop.Stop()
	rt.Client.Session.Stop()
	rt.Guard.Stop()
	_ = rt.Socket.Close()
	rt.stopTrace()

	if rt.debug != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rt.debug.Shutdown(ctx)
	}
	rt.Client.Inbox.Close()
}
