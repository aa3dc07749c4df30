package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"bomberman-client/internal/app"
	"bomberman-client/internal/config"
	"bomberman-client/internal/engine"
	"bomberman-client/pkg/logger"
)

func main() {
	// 1. Парсинг конфигурации
	var (
		configPath string
		serverURL  string
		gameID     string
		playerID   string
		token      string
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config (defaults if empty)")
	flag.StringVar(&serverURL, "server", "", "Game server websocket URL (overrides config)")
	flag.StringVar(&gameID, "game", "", "Game to join (empty creates a new game)")
	flag.StringVar(&playerID, "player", "", "Player id to join as (empty lets the server assign)")
	flag.StringVar(&token, "token", "", "Auth token (overrides config and BM_TOKEN)")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath, os.LookupEnv, func(c *config.Config) {
		if serverURL != "" {
			c.Server.URL = serverURL
		}
		if token != "" {
			c.Auth.Token = token
		}
	})
	if err != nil {
		logger.FromEnv().WithError(err).Fatal("Failed to load config")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("Starting bomberman client...")

	// 2. Ядро с ручным планировщиком: тики дает Update окна
	sched := &engine.ManualScheduler{}
	rt, err := app.Bootstrap(cfg, sched, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build client")
	}
	defer rt.Close()

	game := NewGame(rt, sched)
	session := rt.Client.Session

	// Трасса открывается до входа: в нее попадает и состояние из ответа на join.
	join := func(id string) {
		if err := rt.StartTrace(id); err != nil {
			log.WithError(err).Warn("Trace disabled")
		}
		if err := session.Join(id, playerID, nil); err != nil {
			log.WithError(err).Error("Join failed")
		}
	}

	// 3. Подключение и вход (выполняется на цикле кадров)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.Connect(ctx, func() {
		if gameID != "" {
			join(gameID)
			return
		}
		if err := session.CreateGame(func(id string, err error) {
			if err == nil {
				join(id)
			}
		}); err != nil {
			log.WithError(err).Error("Create game failed")
		}
	})

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		game.Quit()
	}()

	rt.Client.Loop.Start()

	ebiten.SetWindowTitle("Bomberman")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.WithError(err).Error("Window closed with error")
	}

	log.Info("Shutting down...")
	session.Leave()
}
