package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/network"
	"bomberman-client/internal/version"
	"bomberman-client/pkg/api"
	"bomberman-client/pkg/logger"
)

func arenaView() *api.GameStateView {
	rows := make([][]int, 5)
	for y := range rows {
		rows[y] = make([]int, 7)
		for x := range rows[y] {
			if x == 0 || y == 0 || x == 6 || y == 4 {
				rows[y][x] = int(domain.CellSolidWall)
			}
		}
	}
	return &api.GameStateView{
		Players: map[string]api.PlayerView{"p1": {X: 40, Y: 40, Size: 40, Lives: 3}},
		Map:     rows,
		Level:   2,
		Status:  domain.GameStatusActive,
	}
}

// newJoinedClient собирает клиент на Pipe, входит в игру и запускает
// горутину, которая крутит кадры, пока тест не закончится.
func newJoinedClient(t *testing.T) *engine.Client {
	t.Helper()
	inbox := network.NewInbox()
	pipe, peer := network.NewPipe(inbox, network.JSON, logger.Discard())
	peer.On(api.EventJoinGame, func(m network.Message, reply func(any)) {
		reply(api.JoinGameResponse{Success: true, PlayerID: "p1", State: arenaView()})
	})

	sched := &engine.ManualScheduler{}
	c := engine.NewClient(engine.NewConfig(), pipe, inbox, sched, logger.Discard())
	if err := pipe.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Loop.Start()
	if err := c.Session.Join("g1", "", nil); err != nil {
		t.Fatal(err)
	}
	sched.Step(16 * time.Millisecond)
	if !c.Session.Active() {
		t.Fatalf("join failed: %s", c.Session.LastError())
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			case <-time.After(time.Millisecond):
				sched.Step(time.Millisecond)
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		<-stopped
	})
	return c
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	srv := New(nil, ":0", logger.Discard())
	h := srv.Handler()

	rec := get(t, h, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	rec = get(t, h, "/version")
	var info map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("/version body: %v", err)
	}
	if info["protocol"] != version.Protocol {
		t.Errorf("/version = %v", info)
	}
}

func TestDebugState(t *testing.T) {
	c := newJoinedClient(t)
	h := New(c, ":0", logger.Discard()).Handler()

	rec := get(t, h, "/debug/state")
	if rec.Code != http.StatusOK {
		t.Fatalf("/debug/state = %d %s", rec.Code, rec.Body.String())
	}
	var sum StateSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Status != "playing" || sum.GameID != "g1" || sum.PlayerID != "p1" {
		t.Errorf("session = %+v", sum)
	}
	if sum.Width != 7 || sum.Height != 5 || sum.Players != 1 || sum.Meta.Level != 2 {
		t.Errorf("replica = %+v", sum)
	}
	if sum.LastUpdate == nil || sum.MapVersion == 0 {
		t.Errorf("sync = %+v", sum)
	}
}

func TestDebugCameraAndWorld(t *testing.T) {
	c := newJoinedClient(t)
	h := New(c, ":0", logger.Discard()).Handler()

	rec := get(t, h, "/debug/camera")
	var cam CameraSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &cam); err != nil {
		t.Fatal(err)
	}
	if cam.Viewport.X <= 0 {
		t.Errorf("camera = %+v", cam)
	}

	rec = get(t, h, "/debug/world")
	if rec.Code != http.StatusOK {
		t.Fatalf("/debug/world = %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	if len(lines) != 5 || len(lines[0]) != 7 {
		t.Errorf("world dump:\n%s", rec.Body.String())
	}
}

func TestDebug_LoopNotRunning(t *testing.T) {
	inbox := network.NewInbox()
	pipe, _ := network.NewPipe(inbox, network.JSON, logger.Discard())
	c := engine.NewClient(engine.NewConfig(), pipe, inbox, &engine.ManualScheduler{}, logger.Discard())

	dh := NewDebugHandler(c)
	dh.Timeout = 20 * time.Millisecond
	mux := http.NewServeMux()
	dh.RegisterRoutes(mux)

	rec := get(t, mux, "/debug/state")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
}

func TestDebugWorld_NoMap(t *testing.T) {
	inbox := network.NewInbox()
	pipe, _ := network.NewPipe(inbox, network.JSON, logger.Discard())
	sched := &engine.ManualScheduler{}
	c := engine.NewClient(engine.NewConfig(), pipe, inbox, sched, logger.Discard())
	c.Loop.Start()

	dh := NewDebugHandler(c)
	mux := http.NewServeMux()
	dh.RegisterRoutes(mux)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- get(t, mux, "/debug/world") }()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case rec := <-done:
			if rec.Code != http.StatusNotFound {
				t.Errorf("code = %d, want 404", rec.Code)
			}
			return
		case <-deadline:
			t.Fatal("request did not complete")
		case <-time.After(time.Millisecond):
			sched.Step(time.Millisecond)
		}
	}
}
