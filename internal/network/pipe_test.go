package network

import (
	"context"
	"testing"

	"bomberman-client/pkg/api"
	"bomberman-client/pkg/logger"
)

func TestPipe_EmitWithAckGoesThroughInbox(t *testing.T) {
	in := NewInbox()
	pipe, peer := NewPipe(in, JSON, logger.Discard())
	peer.On(api.EventCreateGame, func(_ Message, reply func(any)) {
		reply(api.CreateGameResponse{Success: true, GameID: "g1"})
	})

	if err := pipe.Emit(api.EventCreateGame, struct{}{}, nil); err != ErrNotConnected {
		t.Fatalf("emit before connect: %v", err)
	}
	if err := pipe.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	var got api.CreateGameResponse
	acked := false
	err := pipe.Emit(api.EventCreateGame, struct{}{}, func(m Message, err error) {
		acked = true
		if err != nil {
			t.Errorf("ack err: %v", err)
			return
		}
		if err := m.Decode(&got); err != nil {
			t.Error(err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if acked {
		t.Fatal("ack must not run before the inbox is drained")
	}
	in.Drain()
	if !acked || got.GameID != "g1" {
		t.Errorf("acked=%v resp=%+v", acked, got)
	}
	if peer.Count(api.EventCreateGame) != 1 {
		t.Errorf("peer saw %d create_game", peer.Count(api.EventCreateGame))
	}
}

func TestPipe_PeerEventsAndConnect(t *testing.T) {
	in := NewInbox()
	pipe, peer := NewPipe(in, MsgPack, logger.Discard())

	var events []string
	for _, e := range []string{api.EventConnect, api.EventDisconnect} {
		e := e
		pipe.On(e, func(Message) { events = append(events, e) })
	}
	var left api.PlayerLeftView
	pipe.On(api.EventPlayerLeft, func(m Message) {
		events = append(events, api.EventPlayerLeft)
		if err := m.Decode(&left); err != nil {
			t.Error(err)
		}
	})

	if err := pipe.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	peer.Emit(api.EventPlayerLeft, api.PlayerLeftView{PlayerID: "p2"})
	peer.Drop("test")
	in.Drain()

	want := []string{api.EventConnect, api.EventPlayerLeft, api.EventDisconnect}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v", events)
		}
	}
	if left.PlayerID != "p2" {
		t.Errorf("player left payload = %+v", left)
	}
	if pipe.Connected() {
		t.Error("pipe still connected after drop")
	}
}

func TestPipe_RejectedConnect(t *testing.T) {
	in := NewInbox()
	pipe, peer := NewPipe(in, nil, logger.Discard())
	peer.RejectNextConnect(401, "token expired")

	var view api.ConnectErrorView
	pipe.On(api.EventConnectError, func(m Message) { _ = m.Decode(&view) })

	if err := pipe.Connect(context.Background()); err == nil {
		t.Fatal("rejected connect returned nil")
	}
	in.Drain()
	if !view.IsAuthFailure() {
		t.Errorf("connect_error = %+v", view)
	}
	if err := pipe.Reconnect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if peer.Connects() != 1 {
		t.Errorf("connects = %d", peer.Connects())
	}
}

func TestDispatcher_TapSeesEverything(t *testing.T) {
	d := NewDispatcher(logger.Discard())
	var tapped, handled int
	d.SetTap(func(Message) { tapped++ })
	d.Register("a", func(Message) { handled++ })

	d.Dispatch(Message{Event: "a"})
	if d.Dispatch(Message{Event: "b"}) {
		t.Error("unregistered event reported as handled")
	}
	d.Unregister("a")
	d.Dispatch(Message{Event: "a"})

	if tapped != 3 || handled != 1 {
		t.Errorf("tapped=%d handled=%d", tapped, handled)
	}
	if d.Has("a") || d.Count() != 0 {
		t.Error("unregister failed")
	}
}
