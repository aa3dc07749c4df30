package domain

import "strings"

// CellType - код типа клетки карты. Значения совпадают с тем, что шлет сервер.
type CellType uint8

const (
	CellEmpty CellType = iota
	CellSolidWall
	CellBreakableBlock
	CellPlayerSpawn
	CellEnemySpawn
	CellLevelExit
)

// cellTypeCount - количество известных типов (для валидации кодов с провода)
const cellTypeCount = 6

var cellTypeToString = map[CellType]string{
	CellEmpty:          "EMPTY",
	CellSolidWall:      "SOLID_WALL",
	CellBreakableBlock: "BREAKABLE_BLOCK",
	CellPlayerSpawn:    "PLAYER_SPAWN",
	CellEnemySpawn:     "ENEMY_SPAWN",
	CellLevelExit:      "LEVEL_EXIT",
}

var cellStringToType = map[string]CellType{
	"EMPTY":           CellEmpty,
	"SOLID_WALL":      CellSolidWall,
	"BREAKABLE_BLOCK": CellBreakableBlock,
	"PLAYER_SPAWN":    CellPlayerSpawn,
	"ENEMY_SPAWN":     CellEnemySpawn,
	"LEVEL_EXIT":      CellLevelExit,
}

// String возвращает строковое представление (для логов и дебага)
func (c CellType) String() string {
	if val, ok := cellTypeToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseCellType конвертирует строку в CellType. Неизвестные строки дают CellEmpty и false.
func ParseCellType(s string) (CellType, bool) {
	val, ok := cellStringToType[strings.ToUpper(s)]
	return val, ok
}

// CellTypeFromCode проверяет числовой код с провода.
func CellTypeFromCode(code int) (CellType, bool) {
	if code < 0 || code >= cellTypeCount {
		return CellEmpty, false
	}
	return CellType(code), true
}

// Passable true для клеток, по которым можно ходить.
func (c CellType) Passable() bool {
	switch c {
	case CellEmpty, CellPlayerSpawn, CellEnemySpawn, CellLevelExit:
		return true
	default:
		return false
	}
}
