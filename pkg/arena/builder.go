package arena

import (
	"fmt"
	"math/rand"

	"bomberman-client/internal/domain"
)

// Cell - координаты клетки.
type Cell struct {
	X, Y int
}

// Spawn - враг, размещенный генератором.
type Spawn struct {
	ID    string
	Kind  string
	Cell  Cell
	Lives int
}

// Arena - готовая арена: карта, точки старта игроков, враги и выход.
type Arena struct {
	Level   int
	Grid    *domain.Grid
	Players []Cell
	Enemies []Spawn
	Exit    Cell
}

// ArenaBuilder предоставляет fluent API для создания арен
type ArenaBuilder struct {
	level   int
	width   int
	height  int
	grid    *domain.Grid
	players []Cell
	enemies []Spawn
	exit    Cell
	rng     *rand.Rand
}

// NewArena создает builder для уровня. Размеры приводятся к нечетным,
// чтобы колонны стояли симметрично.
func NewArena(level int, rng *rand.Rand) *ArenaBuilder {
	return &ArenaBuilder{
		level:  level,
		width:  MapWidth,
		height: MapHeight,
		rng:    rng,
	}
}

// WithSize устанавливает размер карты
func (b *ArenaBuilder) WithSize(width, height int) *ArenaBuilder {
	if width < MinSide {
		width = MinSide
	}
	if height < MinSide {
		height = MinSide
	}
	b.width = width | 1
	b.height = height | 1
	return b
}

// WithPillars строит сплошную рамку и колонны в каждой четной клетке
func (b *ArenaBuilder) WithPillars() *ArenaBuilder {
	b.grid = domain.NewGrid(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			border := x == 0 || y == 0 || x == b.width-1 || y == b.height-1
			pillar := x%2 == 0 && y%2 == 0
			if border || pillar {
				b.grid.Set(x, y, domain.CellSolidWall)
			}
		}
	}
	return b
}

// WithSpawns размещает точки старта игроков по углам (не больше четырех).
// Вокруг каждой точки остается свободный "уголок", чтобы можно было
// поставить первую бомбу и уйти.
func (b *ArenaBuilder) WithSpawns(count int) *ArenaBuilder {
	b.ensureGrid()
	corners := []Cell{
		{1, 1},
		{b.width - 2, b.height - 2},
		{b.width - 2, 1},
		{1, b.height - 2},
	}
	if count > len(corners) {
		count = len(corners)
	}
	b.players = append(b.players[:0], corners[:count]...)
	for _, c := range b.players {
		b.grid.Set(c.X, c.Y, domain.CellPlayerSpawn)
	}
	return b
}

// WithBlocks засыпает свободные клетки разрушаемыми блоками с вероятностью density.
func (b *ArenaBuilder) WithBlocks(density float64) *ArenaBuilder {
	b.ensureGrid()
	for y := 1; y < b.height-1; y++ {
		for x := 1; x < b.width-1; x++ {
			if b.reserved(x, y) {
				continue
			}
			if c, _ := b.grid.At(x, y); c != domain.CellEmpty {
				continue
			}
			if b.rng.Float64() < density {
				b.grid.Set(x, y, domain.CellBreakableBlock)
			}
		}
	}
	return b
}

// SpawnEnemy размещает врагов из шаблона на случайных свободных клетках
// подальше от точек старта.
func (b *ArenaBuilder) SpawnEnemy(templateName string, count int) *ArenaBuilder {
	b.ensureGrid()
	template, ok := EnemyTemplates[templateName]
	if !ok {
		return b
	}

	for i := 0; i < count; i++ {
		cell, ok := b.randomFree(20)
		if !ok {
			continue
		}
		b.grid.Set(cell.X, cell.Y, domain.CellEnemySpawn)
		b.enemies = append(b.enemies, Spawn{
			ID:    fmt.Sprintf("e_%d_%d", b.level, len(b.enemies)),
			Kind:  template.Kind,
			Cell:  cell,
			Lives: template.Lives + b.level/3,
		})
	}
	return b
}

// PlaceExit прячет выход под разрушаемый блок, а если блоков нет - ставит
// на случайную свободную клетку.
func (b *ArenaBuilder) PlaceExit() *ArenaBuilder {
	b.ensureGrid()
	var blocks []Cell
	for y, row := range b.grid.Rows {
		for x, c := range row {
			if c == domain.CellBreakableBlock {
				blocks = append(blocks, Cell{x, y})
			}
		}
	}
	if len(blocks) > 0 {
		b.exit = blocks[b.rng.Intn(len(blocks))]
		return b
	}
	if cell, ok := b.randomFree(50); ok {
		b.exit = cell
		b.grid.Set(cell.X, cell.Y, domain.CellLevelExit)
	}
	return b
}

// Build собирает и возвращает арену
func (b *ArenaBuilder) Build() *Arena {
	b.ensureGrid()
	return &Arena{
		Level:   b.level,
		Grid:    b.grid,
		Players: b.players,
		Enemies: b.enemies,
		Exit:    b.exit,
	}
}

// --- Helper functions ---

func (b *ArenaBuilder) ensureGrid() {
	if b.grid == nil {
		b.WithPillars()
	}
}

// reserved - клетки старта и их соседи по осям.
func (b *ArenaBuilder) reserved(x, y int) bool {
	for _, p := range b.players {
		dx, dy := abs(x-p.X), abs(y-p.Y)
		if dx+dy <= 1 || (dx <= 2 && dy == 0) || (dy <= 2 && dx == 0) {
			return true
		}
	}
	return false
}

func (b *ArenaBuilder) randomFree(attempts int) (Cell, bool) {
	for attempt := 0; attempt < attempts; attempt++ {
		x := b.randRange(1, b.width-2)
		y := b.randRange(1, b.height-2)
		if b.reserved(x, y) || b.nearSpawn(x, y, SafeRadius) {
			continue
		}
		if c, _ := b.grid.At(x, y); c == domain.CellEmpty {
			return Cell{x, y}, true
		}
	}
	return Cell{}, false
}

func (b *ArenaBuilder) nearSpawn(x, y, radius int) bool {
	for _, p := range b.players {
		if abs(x-p.X)+abs(y-p.Y) <= radius {
			return true
		}
	}
	return false
}

func (b *ArenaBuilder) randRange(min, max int) int {
	return b.rng.Intn(max-min+1) + min
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
