package network

import (
	"testing"

	"bomberman-client/pkg/api"
)

func TestCodecs_FrameRoundTrip(t *testing.T) {
	level := 3
	update := api.GameUpdateView{
		Enemies:  []api.EnemyView{{ID: "e1", Kind: "ghost", X: 10, Y: 20, Lives: 1}},
		MapDelta: []api.CellDeltaView{{X: 1, Y: 2, Type: 2}},
		Level:    &level,
	}

	for _, codec := range []Codec{JSON, MsgPack} {
		t.Run(codec.Name(), func(t *testing.T) {
			b, err := codec.EncodeFrame(api.EventGameUpdate, "req-1", "", update)
			if err != nil {
				t.Fatal(err)
			}
			f, err := codec.DecodeFrame(b)
			if err != nil {
				t.Fatal(err)
			}
			if f.Event != api.EventGameUpdate || f.ID != "req-1" || f.Ack != "" {
				t.Fatalf("frame header = %+v", f)
			}

			var got api.GameUpdateView
			if err := NewMessage(f.Event, f.Data, codec).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if len(got.Enemies) != 1 || got.Enemies[0].Kind != "ghost" {
				t.Errorf("enemies = %+v", got.Enemies)
			}
			if len(got.MapDelta) != 1 || got.MapDelta[0] != update.MapDelta[0] {
				t.Errorf("mapDelta = %+v", got.MapDelta)
			}
			if got.Level == nil || *got.Level != 3 {
				t.Errorf("level = %v", got.Level)
			}
			// omitempty: отсутствующие поля остаются nil, а не пустыми.
			if got.Players != nil || got.Pickups != nil || got.Status != nil {
				t.Errorf("absent fields decoded as present: %+v", got)
			}
		})
	}
}

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"msgpack", "msgpack", false},
		{"protobuf", "", true},
	}
	for _, tt := range tests {
		c, err := CodecByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("CodecByName(%q) err = %v", tt.name, err)
			continue
		}
		if err == nil && c.Name() != tt.want {
			t.Errorf("CodecByName(%q) = %s", tt.name, c.Name())
		}
	}
}

func TestMessage_DecodeEmpty(t *testing.T) {
	var v api.GameOverView
	if err := (Message{Event: api.EventGameOver}).Decode(&v); err == nil {
		t.Error("empty payload must fail to decode")
	}
}
