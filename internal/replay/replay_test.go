package replay

import (
	"encoding/json"
	"testing"
	"time"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/infrastructure/storage"
	"bomberman-client/internal/network"
	"bomberman-client/pkg/api"
	"bomberman-client/pkg/arena"
	"bomberman-client/pkg/logger"
)

func record(t *testing.T, offset time.Duration, event string, v any) storage.TraceRecord {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return storage.TraceRecord{Offset: offset, Event: event, Payload: b}
}

func TestRun_RebuildsState(t *testing.T) {
	a := arena.Generate("replay-test", 1)
	state := a.StateView([]string{"p2", "p1"})

	records := []storage.TraceRecord{
		record(t, 0, api.EventGameState, state),
		record(t, 100*time.Millisecond, api.EventGameUpdate, api.GameUpdateView{
			MapDelta: []api.CellDeltaView{{X: 1, Y: 1, Type: int(domain.CellBreakableBlock)}},
		}),
		record(t, 400*time.Millisecond, api.EventGameOver, api.GameOverView{Reason: "time"}),
	}
	meta := storage.TraceMeta{GameID: "replay-test", Codec: "json", Started: time.Unix(1000, 0)}

	frames := 0
	res, err := Run(meta, records, Options{OnFrame: func(*domain.Snapshot, camera.View) { frames++ }}, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if res.Records != 3 || res.Status != "game_over" {
		t.Errorf("result = %+v", res)
	}
	if res.Frames < 20 || frames == 0 {
		t.Errorf("frames = %d (rendered %d), want the replay to step through offsets", res.Frames, frames)
	}
	if res.Snapshot == nil || res.Snapshot.Grid == nil {
		t.Fatal("no snapshot after replay")
	}
	if c, _ := res.Snapshot.Grid.At(1, 1); c != domain.CellBreakableBlock {
		t.Errorf("cell (1,1) = %v, map delta not applied", c)
	}
	if res.Snapshot.Meta.Status != domain.GameStatusGameOver {
		t.Errorf("meta status = %q", res.Snapshot.Meta.Status)
	}
	if res.Resyncs != 0 {
		t.Errorf("resyncs = %d", res.Resyncs)
	}
}

func TestRun_UpdateBeforeStateRequestsResync(t *testing.T) {
	records := []storage.TraceRecord{
		record(t, 0, api.EventGameUpdate, api.GameUpdateView{
			MapDelta: []api.CellDeltaView{{X: 0, Y: 0, Type: 0}},
		}),
	}
	res, err := Run(storage.TraceMeta{GameID: "g", Codec: "json"}, records, Options{PlayerID: "p1"}, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if res.Resyncs != 1 {
		t.Errorf("resyncs = %d, want 1 for a delta without a cached map", res.Resyncs)
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(storage.TraceMeta{}, nil, Options{}, logger.Discard()); err == nil {
		t.Error("expected error for empty trace")
	}
	recs := []storage.TraceRecord{{Event: api.EventGameOver, Payload: []byte("{}")}}
	if _, err := Run(storage.TraceMeta{Codec: "xml"}, recs, Options{}, logger.Discard()); err == nil {
		t.Error("expected codec error")
	}
}

func TestGuessPlayer(t *testing.T) {
	a := arena.Generate("g", 1)
	recs := []storage.TraceRecord{
		record(t, 0, api.EventGameOver, api.GameOverView{}),
		record(t, 0, api.EventGameState, a.StateView([]string{"zed", "amy"})),
	}
	if got := guessPlayer(recs, network.JSON); got != "amy" {
		t.Errorf("guessPlayer = %q, want amy", got)
	}
}
