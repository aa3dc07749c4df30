package main

import (
	"flag"
	"fmt"
	"os"

	"bomberman-client/internal/app"
	"bomberman-client/internal/infrastructure/storage"
	"bomberman-client/internal/render"
	"bomberman-client/internal/replay"
	"bomberman-client/pkg/logger"
)

func main() {
	var (
		configPath string
		tracePath  string
		playerID   string
		dump       bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config (camera and sync settings)")
	flag.StringVar(&tracePath, "trace", "", "Path to .bmtr trace file to replay")
	flag.StringVar(&playerID, "player", "", "Player the camera follows (default: first player in the trace)")
	flag.BoolVar(&dump, "dump", false, "Print the final map")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath, os.LookupEnv, nil)
	if err != nil {
		logger.FromEnv().WithError(err).Fatal("Failed to load config")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if tracePath == "" {
		log.Fatal("-trace is required")
	}

	log.Info("💿 Mode: Replay Simulation")
	svc := &storage.TraceService{}
	meta, records, err := svc.Load(tracePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load trace")
	}
	log.WithField("game_id", meta.GameID).Infof("Loaded %d records", len(records))

	res, err := replay.Run(meta, records, replay.Options{PlayerID: playerID, Engine: cfg.Engine()}, log)
	if err != nil {
		log.WithError(err).Fatal("Replay failed")
	}

	fmt.Printf("game:     %s\n", meta.GameID)
	fmt.Printf("records:  %d\n", res.Records)
	fmt.Printf("frames:   %d\n", res.Frames)
	fmt.Printf("status:   %s\n", res.Status)
	fmt.Printf("resyncs:  %d\n", res.Resyncs)
	fmt.Printf("camera:   offset=(%.1f, %.1f) lag=(%.1f, %.1f)\n",
		res.Camera.Offset.X, res.Camera.Offset.Y, res.Camera.Lag.X, res.Camera.Lag.Y)
	if snap := res.Snapshot; snap != nil {
		fmt.Printf("level:    %d (%s, %.0fs left)\n", snap.Meta.Level, snap.Meta.Status, snap.Meta.RemainingTime)
		fmt.Printf("entities: players=%d enemies=%d projectiles=%d pickups=%d\n",
			len(snap.Players), len(snap.Enemies), len(snap.Projectiles), len(snap.Pickups))
		if dump && snap.Grid != nil {
			fmt.Print(render.DefaultPalette().Dump(snap.Grid))
		}
	}
}
