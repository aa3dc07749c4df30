package api_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"bomberman-client/pkg/api"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTrip превращает DTO в дерево map/slice, которое понимает валидатор.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_GameState(t *testing.T) {
	schema := compileSchema(t, "game_state.schema.json")

	state := api.GameStateView{
		Players: map[string]api.PlayerView{
			"p1": {X: 40, Y: 40, Size: 32, Lives: 3, Bombs: 1},
		},
		Enemies: []api.EnemyView{{ID: "e1", Kind: "coin", X: 120, Y: 80, Size: 32, Lives: 1}},
		Map:     [][]int{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}},
		Level:   1,
		Status:  "ACTIVE",
	}
	if err := schema.Validate(roundTrip(t, state)); err != nil {
		t.Fatalf("valid state rejected: %v", err)
	}

	var bad any
	_ = json.Unmarshal([]byte(`{"players":{},"map":[[0,9]]}`), &bad)
	if err := schema.Validate(bad); err == nil {
		t.Error("cell code 9 should be rejected by schema")
	}
}

func TestSchemas_GameUpdate(t *testing.T) {
	schema := compileSchema(t, "game_update.schema.json")

	complete := false
	update := api.GameUpdateView{
		MapDelta: []api.CellDeltaView{{X: 1, Y: 1, Type: 0}},
		Enemies:  []api.EnemyView{},
		Complete: &complete,
	}
	if err := schema.Validate(roundTrip(t, update)); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	var withMap any
	_ = json.Unmarshal([]byte(`{"map":[[0]]}`), &withMap)
	if err := schema.Validate(withMap); err == nil {
		t.Error("update carrying a full map should be rejected")
	}
}

func TestSchemas_JoinGame(t *testing.T) {
	schema := compileSchema(t, "join_game.schema.json")

	if err := schema.Validate(roundTrip(t, api.JoinGameRequest{GameID: "g1", PlayerID: "p1"})); err != nil {
		t.Fatalf("valid join rejected: %v", err)
	}
	if err := schema.Validate(roundTrip(t, api.JoinGameRequest{})); err == nil {
		t.Error("empty gameId should be rejected")
	}
}
