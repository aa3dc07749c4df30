package domain

import "errors"

var (
	ErrNotRectangular = errors.New("grid rows have different lengths")
	ErrEmptyGrid      = errors.New("grid has no cells")
)

// Grid - тайловая карта одного уровня. Rows[y][x].
// Размеры фиксированы на время жизни игры; все строки одной длины.
type Grid struct {
	Rows [][]CellType `json:"rows"`
}

// CellDelta - изменение одной клетки. Координаты всегда в клетках, не в пикселях.
type CellDelta struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Type CellType `json:"type"`
}

// NewGrid создает карту width x height, заполненную CellEmpty.
func NewGrid(width, height int) *Grid {
	rows := make([][]CellType, height)
	for y := range rows {
		rows[y] = make([]CellType, width)
	}
	return &Grid{Rows: rows}
}

// GridFromRows строит карту из готовых строк, проверяя прямоугольность.
// Строки копируются.
func GridFromRows(rows [][]CellType) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(rows[0])
	out := make([][]CellType, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, ErrNotRectangular
		}
		out[y] = append([]CellType(nil), row...)
	}
	return &Grid{Rows: out}, nil
}

func (g *Grid) Width() int {
	if g == nil || len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}

// InBounds проверяет клетку по длине конкретной строки.
func (g *Grid) InBounds(x, y int) bool {
	if g == nil || y < 0 || y >= len(g.Rows) {
		return false
	}
	return x >= 0 && x < len(g.Rows[y])
}

// At возвращает тип клетки и false, если клетка вне карты.
func (g *Grid) At(x, y int) (CellType, bool) {
	if !g.InBounds(x, y) {
		return CellEmpty, false
	}
	return g.Rows[y][x], true
}

// Set меняет клетку. Возвращает false для координат вне карты.
func (g *Grid) Set(x, y int, t CellType) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Rows[y][x] = t
	return true
}

// Passable true, если по клетке можно пройти. Клетки вне карты непроходимы.
func (g *Grid) Passable(x, y int) bool {
	t, ok := g.At(x, y)
	return ok && t.Passable()
}

// Clone возвращает глубокую копию.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	rows := make([][]CellType, len(g.Rows))
	for y, row := range g.Rows {
		rows[y] = append([]CellType(nil), row...)
	}
	return &Grid{Rows: rows}
}

// Equal сравнивает карты поклеточно.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.Rows) != len(other.Rows) {
		return false
	}
	for y := range g.Rows {
		if len(g.Rows[y]) != len(other.Rows[y]) {
			return false
		}
		for x := range g.Rows[y] {
			if g.Rows[y][x] != other.Rows[y][x] {
				return false
			}
		}
	}
	return true
}
