package replay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/infrastructure/storage"
	"bomberman-client/internal/network"
	"bomberman-client/pkg/api"
)

// frame - шаг цикла между записями трассы.
const frame = 16 * time.Millisecond

// Options - параметры воспроизведения.
type Options struct {
	// PlayerID - за кем следит камера. Пусто - первый по алфавиту игрок
	// из первого полного состояния.
	PlayerID string
	Engine   engine.Config
	// OnFrame вызывается после каждого кадра (например, чтобы рисовать).
	OnFrame engine.RenderFunc
}

// Result - итог воспроизведения.
type Result struct {
	Records  int
	Frames   uint64
	Status   string
	Resyncs  int
	Snapshot *domain.Snapshot
	Camera   camera.View
}

// Run прогоняет записи через свежий клиент, как будто их прислал сервер.
// Время берется из смещений записей, а не из часов.
func Run(meta storage.TraceMeta, records []storage.TraceRecord, opts Options, log logrus.FieldLogger) (Result, error) {
	log = log.WithField("component", "replay")
	if len(records) == 0 {
		return Result{}, errors.New("trace has no records")
	}
	codec, err := network.CodecByName(meta.Codec)
	if err != nil {
		return Result{}, err
	}

	playerID := opts.PlayerID
	if playerID == "" {
		playerID = guessPlayer(records, codec)
	}
	gameID := meta.GameID
	if gameID == "" {
		gameID = "replay"
	}

	inbox := network.NewInbox()
	pipe, peer := network.NewPipe(inbox, codec, log)
	peer.KeepHistory(false)
	peer.On(api.EventJoinGame, func(_ network.Message, reply func(any)) {
		reply(api.JoinGameResponse{Success: true, PlayerID: playerID})
	})
	// Сервера нет: ресинк невозможен, клиент должен дождаться полного состояния в трассе.
	peer.On(api.EventGetGameState, func(_ network.Message, reply func(any)) {
		reply(api.GameStateResponse{Success: false, Message: "replay has no server"})
	})

	now := meta.Started
	if now.IsZero() {
		now = time.Unix(0, 0)
	}
	cfg := opts.Engine
	if cfg.FrameRate == 0 {
		cfg = engine.NewConfig()
	}
	cfg.Clock = func() time.Time { return now }

	sched := &engine.ManualScheduler{}
	client := engine.NewClient(cfg, pipe, inbox, sched, log)
	var last camera.View
	client.Loop.SetRenderer(func(snap *domain.Snapshot, view camera.View) {
		last = view
		if opts.OnFrame != nil {
			opts.OnFrame(snap, view)
		}
	})

	if err := pipe.Connect(context.Background()); err != nil {
		return Result{}, err
	}
	client.Loop.Start()
	defer client.Loop.Stop()

	if err := client.Session.Join(gameID, playerID, nil); err != nil {
		return Result{}, fmt.Errorf("join: %w", err)
	}
	sched.Step(frame)

	var offset time.Duration
	for _, rec := range records {
		// Догоняем время записи кадрами, чтобы камера и сторож жили как вживую.
		for offset+frame < rec.Offset {
			offset += frame
			now = now.Add(frame)
			sched.Step(frame)
		}
		peer.EmitRaw(rec.Event, rec.Payload)
	}
	now = now.Add(frame)
	sched.Step(frame)

	res := Result{
		Records:  len(records),
		Frames:   client.Loop.Frames(),
		Status:   client.Session.Status().String(),
		Resyncs:  client.Watchdog.Requests(),
		Snapshot: client.Store.Renderable(),
		Camera:   last,
	}
	log.WithFields(logrus.Fields{
		"records": res.Records,
		"frames":  res.Frames,
		"status":  res.Status,
		"resyncs": res.Resyncs,
	}).Info("Replay finished")
	return res, nil
}

// guessPlayer выбирает первого по алфавиту игрока из первого game_state.
func guessPlayer(records []storage.TraceRecord, codec network.Codec) string {
	for _, rec := range records {
		if rec.Event != api.EventGameState {
			continue
		}
		var v api.GameStateView
		if err := codec.Unmarshal(rec.Payload, &v); err != nil || len(v.Players) == 0 {
			continue
		}
		ids := make([]string, 0, len(v.Players))
		for id := range v.Players {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids[0]
	}
	return "replay"
}
