package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/agent"
	"bomberman-client/internal/app"
	"bomberman-client/internal/config"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/network"
	"bomberman-client/internal/version"
	"bomberman-client/pkg/logger"
)

func main() {
	// 1. Парсинг конфигурации
	var (
		configPath string
		serverURL  string
		gameID     string
		offline    bool
		seed       int64
		duration   time.Duration
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config (defaults if empty)")
	flag.StringVar(&serverURL, "server", "", "Game server websocket URL (overrides config)")
	flag.StringVar(&gameID, "game", "", "Game to join (empty creates a new game)")
	flag.BoolVar(&offline, "offline", false, "Play against the built-in offline server")
	flag.Int64Var(&seed, "seed", 0, "Bot decision seed (0 for random)")
	flag.DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath, os.LookupEnv, func(c *config.Config) {
		if serverURL != "" {
			c.Server.URL = serverURL
		}
	})
	if err != nil {
		logger.FromEnv().WithError(err).Fatal("Failed to load config")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infof("🎲 Bot seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	// 2. Клиент: по сети или против офлайн-сервера
	sched := engine.NewTickerScheduler(cfg.Sync.FrameRate)
	var (
		client  *engine.Client
		connect func(onConnected func())
		closeFn func()
	)
	if offline {
		log.Info("Mode: offline")
		log.Info(version.String())
		inbox := network.NewInbox()
		pipe, peer := network.NewPipe(inbox, nil, log)
		server := agent.NewOffline(peer, log)
		client = engine.NewClient(cfg.Engine(), pipe, inbox, sched, log)

		bot := agent.NewBot(client, rng, log)
		bot.AfterFrame = func() { server.Step(sched.Interval) }
		bot.Attach()
		defer logStats(log, bot)

		connect = func(onConnected func()) {
			if err := pipe.Connect(context.Background()); err != nil {
				log.WithError(err).Fatal("Offline connect failed")
			}
			inbox.Post(onConnected)
		}
		closeFn = func() { client.Loop.Stop() }
	} else {
		rt, err := app.Bootstrap(cfg, sched, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to build client")
		}
		client = rt.Client

		bot := agent.NewBot(client, rng, log)
		bot.Attach()
		defer logStats(log, bot)

		ctx, cancel := context.WithCancel(context.Background())
		connect = func(onConnected func()) { rt.Connect(ctx, onConnected) }
		closeFn = func() {
			cancel()
			rt.Close()
		}
	}

	session := client.Session
	session.OnStatus(func(st engine.Status, msg string) {
		log.WithFields(logrus.Fields{"status": st.String(), "message": msg}).Info("Session status")
	})

	// 3. Вход в игру
	connect(func() {
		if gameID != "" {
			if err := session.Join(gameID, "", nil); err != nil {
				log.WithError(err).Error("Join failed")
			}
			return
		}
		_ = session.CreateGame(func(id string, err error) {
			if err != nil {
				return
			}
			if err := session.Join(id, "", nil); err != nil {
				log.WithError(err).Error("Join failed")
			}
		})
	})
	client.Loop.Start()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}
	select {
	case <-stop:
	case <-timeout:
	}

	log.Info("Shutting down...")
	closeFn()
}

func logStats(log logrus.FieldLogger, bot *agent.Bot) {
	log.WithFields(logrus.Fields{
		"decisions": bot.Decisions(),
		"bombs":     bot.Bombs(),
	}).Info("Bot finished")
}
