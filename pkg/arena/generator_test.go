package arena

import (
	"math/rand"
	"testing"

	"bomberman-client/internal/domain"
)

func TestGenerate(t *testing.T) {
	a := Generate("game-1", 1)

	// 1. Проверка размеров
	if a.Grid.Width() != MapWidth || a.Grid.Height() != MapHeight {
		t.Errorf("Expected map size %dx%d, got %dx%d", MapWidth, MapHeight, a.Grid.Width(), a.Grid.Height())
	}

	// 2. Рамка целиком из стен
	for x := 0; x < a.Grid.Width(); x++ {
		top, _ := a.Grid.At(x, 0)
		bottom, _ := a.Grid.At(x, a.Grid.Height()-1)
		if top != domain.CellSolidWall || bottom != domain.CellSolidWall {
			t.Fatalf("border broken at column %d", x)
		}
	}

	// 3. Старты проходимы, соседи свободны
	if len(a.Players) != 4 {
		t.Fatalf("expected 4 spawns, got %d", len(a.Players))
	}
	for _, p := range a.Players {
		if !a.Grid.Passable(p.X, p.Y) {
			t.Errorf("spawn %+v is not passable", p)
		}
		free := 0
		for _, d := range []Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			if a.Grid.Passable(p.X+d.X, p.Y+d.Y) {
				free++
			}
		}
		if free == 0 {
			t.Errorf("spawn %+v is boxed in", p)
		}
	}

	// 4. Враги на свободных клетках и не у старта
	if len(a.Enemies) == 0 {
		t.Error("No enemies generated")
	}
	for _, e := range a.Enemies {
		if c, _ := a.Grid.At(e.Cell.X, e.Cell.Y); c != domain.CellEnemySpawn {
			t.Errorf("enemy %s stands on %v", e.ID, c)
		}
		for _, p := range a.Players {
			if abs(e.Cell.X-p.X)+abs(e.Cell.Y-p.Y) <= SafeRadius {
				t.Errorf("enemy %s too close to spawn %+v", e.ID, p)
			}
		}
	}

	// 5. Выход спрятан под блоком
	if c, _ := a.Grid.At(a.Exit.X, a.Exit.Y); c != domain.CellBreakableBlock && c != domain.CellLevelExit {
		t.Errorf("exit %+v is on %v", a.Exit, c)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("same-id", 2)
	b := Generate("same-id", 2)
	if !a.Grid.Equal(b.Grid) || a.Exit != b.Exit || len(a.Enemies) != len(b.Enemies) {
		t.Error("same game id and level must give the same arena")
	}

	c := Generate("other-id", 2)
	if a.Grid.Equal(c.Grid) {
		t.Error("different game ids gave identical arenas")
	}
}

func TestGenerate_GrowsWithLevel(t *testing.T) {
	a := Generate("g", 3)
	if a.Grid.Width() != MapWidth+2 || a.Grid.Height() != MapHeight+2 {
		t.Errorf("level 3 size = %dx%d", a.Grid.Width(), a.Grid.Height())
	}
}

func TestBuilder_SmallSizeClamped(t *testing.T) {
	a := NewArena(0, rand.New(rand.NewSource(1))).WithSize(2, 4).WithSpawns(9).Build()
	if a.Grid.Width() != MinSide || a.Grid.Height() != MinSide {
		t.Errorf("size = %dx%d, want %dx%d", a.Grid.Width(), a.Grid.Height(), MinSide, MinSide)
	}
	if len(a.Players) != 4 {
		t.Errorf("spawns = %d, want 4", len(a.Players))
	}
}

func TestStateView(t *testing.T) {
	a := Generate("view", 1)
	v := a.StateView([]string{"p1", "p2"})

	if err := v.Validate(); err != nil {
		t.Fatalf("state view invalid: %v", err)
	}
	if len(v.Map) != a.Grid.Height() || len(v.Map[0]) != a.Grid.Width() {
		t.Errorf("map size mismatch")
	}
	p1 := v.Players["p1"]
	if p1.X != CellSize || p1.Y != CellSize {
		t.Errorf("p1 at %v,%v, want first spawn", p1.X, p1.Y)
	}
	if len(v.Enemies) != len(a.Enemies) {
		t.Errorf("enemies = %d, want %d", len(v.Enemies), len(a.Enemies))
	}
}
