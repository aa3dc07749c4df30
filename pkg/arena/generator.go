package arena

import (
	"math/rand"

	"bomberman-client/internal/domain"
	"bomberman-client/pkg/api"
	"bomberman-client/pkg/utils"
)

// Константы генерации
const (
	MapWidth  = 15
	MapHeight = 13
	// MinSide - меньше не поместятся рамка, колонны и уголки старта.
	MinSide = 7
	// SafeRadius - враги не появляются ближе к точке старта (манхэттен).
	SafeRadius = 4
	// BlockDensity - доля свободных клеток под разрушаемыми блоками.
	BlockDensity = 0.55
	// CellSize - размер клетки в пикселях при выдаче состояния на провод.
	CellSize = 40
)

// Generate создает арену уровня для игры. Одна и та же пара
// (gameID, level) всегда дает одну и ту же арену.
func Generate(gameID string, level int) *Arena {
	rng := rand.New(rand.NewSource(utils.StringToSeed(gameID) + int64(level)))

	b := NewArena(level, rng).
		WithSize(MapWidth+2*(level/3), MapHeight+2*(level/3)).
		WithPillars().
		WithSpawns(4).
		WithBlocks(BlockDensity)

	enemies := 2 + level
	for i := 0; i < enemies; i++ {
		switch {
		case level > 2 && i%3 == 0:
			b.SpawnEnemy("tank", 1)
		case i%2 == 0:
			b.SpawnEnemy("balloon", 1)
		default:
			b.SpawnEnemy("ghost", 1)
		}
	}

	return b.PlaceExit().Build()
}

// Rows - карта в виде кодов клеток, как ее шлет сервер.
func (a *Arena) Rows() [][]int {
	rows := make([][]int, len(a.Grid.Rows))
	for y, row := range a.Grid.Rows {
		rows[y] = make([]int, len(row))
		for x, c := range row {
			rows[y][x] = int(c)
		}
	}
	return rows
}

// CellOrigin - левый верхний угол клетки в пикселях.
func CellOrigin(c Cell) (float64, float64) {
	return float64(c.X) * CellSize, float64(c.Y) * CellSize
}

// StateView собирает полный снимок для провода. Игроки ставятся на точки
// старта в порядке ids.
func (a *Arena) StateView(ids []string) *api.GameStateView {
	view := &api.GameStateView{
		Players:     make(map[string]api.PlayerView, len(ids)),
		Projectiles: []api.ProjectileView{},
		Pickups:     []api.PickupView{},
		Map:         a.Rows(),
		Level:       a.Level,
		Status:      domain.GameStatusActive,
	}
	for i, id := range ids {
		if len(a.Players) == 0 {
			break
		}
		x, y := CellOrigin(a.Players[i%len(a.Players)])
		view.Players[id] = api.PlayerView{X: x, Y: y, Size: CellSize, Lives: 3, Bombs: 1}
	}
	view.Enemies = a.EnemyViews()
	return view
}

// EnemyViews - враги арены в пикселях. Список не nil даже без врагов.
func (a *Arena) EnemyViews() []api.EnemyView {
	out := make([]api.EnemyView, 0, len(a.Enemies))
	for _, e := range a.Enemies {
		x, y := CellOrigin(e.Cell)
		out = append(out, api.EnemyView{
			ID: e.ID, Kind: e.Kind, X: x, Y: y, Size: CellSize, Lives: e.Lives,
		})
	}
	return out
}
