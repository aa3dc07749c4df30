package agent

import (
	"context"
	"testing"
	"time"

	"bomberman-client/internal/domain"
	"bomberman-client/internal/network"
	"bomberman-client/pkg/api"
	"bomberman-client/pkg/logger"
)

type offlineHarness struct {
	t       *testing.T
	inbox   *network.Inbox
	pipe    *network.Pipe
	server  *Offline
	updates []api.GameUpdateView
	over    []api.GameOverView
}

func newOfflineHarness(t *testing.T) *offlineHarness {
	t.Helper()
	h := &offlineHarness{t: t, inbox: network.NewInbox()}
	var peer *network.Peer
	h.pipe, peer = network.NewPipe(h.inbox, network.JSON, logger.Discard())
	h.server = NewOffline(peer, logger.Discard())

	h.pipe.On(api.EventGameUpdate, func(m network.Message) {
		var v api.GameUpdateView
		if err := m.Decode(&v); err != nil {
			t.Errorf("decode update: %v", err)
		}
		h.updates = append(h.updates, v)
	})
	h.pipe.On(api.EventGameOver, func(m network.Message) {
		var v api.GameOverView
		_ = m.Decode(&v)
		h.over = append(h.over, v)
	})
	if err := h.pipe.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.inbox.Drain()
	return h
}

func (h *offlineHarness) join(gameID string) api.JoinGameResponse {
	h.t.Helper()
	var resp api.JoinGameResponse
	err := h.pipe.Emit(api.EventJoinGame, api.JoinGameRequest{GameID: gameID}, func(m network.Message, err error) {
		if err != nil {
			h.t.Fatalf("join ack: %v", err)
		}
		if err := m.Decode(&resp); err != nil {
			h.t.Fatalf("join decode: %v", err)
		}
	})
	if err != nil {
		h.t.Fatal(err)
	}
	h.inbox.Drain()
	if !resp.Success || resp.State == nil {
		h.t.Fatalf("join rejected: %+v", resp)
	}
	return resp
}

func (h *offlineHarness) last() api.GameUpdateView {
	h.t.Helper()
	h.inbox.Drain()
	if len(h.updates) == 0 {
		h.t.Fatal("no updates received")
	}
	return h.updates[len(h.updates)-1]
}

func TestOffline_JoinAssignsSpawn(t *testing.T) {
	h := newOfflineHarness(t)
	resp := h.join("g1")

	if resp.PlayerID != "p1" {
		t.Errorf("player id = %q, want p1", resp.PlayerID)
	}
	if err := resp.State.Validate(); err != nil {
		t.Fatalf("state invalid: %v", err)
	}
	p := resp.State.Players["p1"]
	if p.X != 40 || p.Y != 40 || p.Lives != 3 {
		t.Errorf("p1 = %+v, want first spawn", p)
	}
	if h.server.GameID() != "g1" {
		t.Errorf("game id = %q", h.server.GameID())
	}
}

func TestOffline_InputMovesPlayer(t *testing.T) {
	h := newOfflineHarness(t)
	h.join("g1")

	if err := h.pipe.Emit(api.EventInput, api.InputPayload{GameID: "g1", Inputs: api.InputFields{Right: true}}, nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		h.server.Step(100 * time.Millisecond)
	}

	got := h.last().Players["p1"]
	if got.X <= 40 || got.Y != 40 {
		t.Errorf("p1 at (%v,%v), expected to move right", got.X, got.Y)
	}
	if h.last().Projectiles == nil || h.last().Enemies == nil {
		t.Error("lists must be present in every update")
	}
}

func TestOffline_InputForOtherGameIgnored(t *testing.T) {
	h := newOfflineHarness(t)
	h.join("g1")

	_ = h.pipe.Emit(api.EventInput, api.InputPayload{GameID: "other", Inputs: api.InputFields{Down: true}}, nil)
	h.server.Step(500 * time.Millisecond)

	if got := h.last().Players["p1"]; got.X != 40 || got.Y != 40 {
		t.Errorf("p1 moved to (%v,%v)", got.X, got.Y)
	}
}

func TestOffline_BombDestroysBlockAndHurtsOwner(t *testing.T) {
	h := newOfflineHarness(t)
	h.join("g1")
	h.server.grid.Set(2, 1, domain.CellBreakableBlock)

	_ = h.pipe.Emit(api.EventPlaceBomb, api.PlaceBombPayload{GameID: "g1"}, nil)
	h.server.Step(10 * time.Millisecond)
	if got := h.last(); len(got.Projectiles) != 1 || got.Players["p1"].Bombs != 0 {
		t.Fatalf("bomb not placed: %+v", got)
	}

	h.server.Step(BombFuse)
	got := h.last()
	if len(got.MapDelta) != 1 || got.MapDelta[0] != (api.CellDeltaView{X: 2, Y: 1, Type: int(domain.CellEmpty)}) {
		t.Errorf("map delta = %+v", got.MapDelta)
	}
	if len(got.Projectiles) != 0 {
		t.Errorf("bomb still present: %+v", got.Projectiles)
	}
	p := got.Players["p1"]
	if p.Lives != 2 || p.Bombs != 1 {
		t.Errorf("p1 after blast = %+v", p)
	}
}

func TestOffline_TimeUp(t *testing.T) {
	h := newOfflineHarness(t)
	h.join("g1")
	h.server.Duration = time.Second

	h.server.Step(2 * time.Second)
	h.server.Step(time.Second)
	h.inbox.Drain()

	if len(h.over) != 1 || h.over[0].Reason != "time" {
		t.Errorf("game over = %+v", h.over)
	}
}
