package domain

import "strings"

// ActionType - действие игрока, к которому привязываются клавиши и решения бота.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionPlaceBomb
)

// Маппинг для конфигов раскладки и команд бота
var actionStringToCmd = map[string]ActionType{
	"UP":         ActionMoveUp,
	"DOWN":       ActionMoveDown,
	"LEFT":       ActionMoveLeft,
	"RIGHT":      ActionMoveRight,
	"PLACE_BOMB": ActionPlaceBomb,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionMoveUp:    "UP",
	ActionMoveDown:  "DOWN",
	ActionMoveLeft:  "LEFT",
	ActionMoveRight: "RIGHT",
	ActionPlaceBomb: "PLACE_BOMB",
}

// ParseAction конвертирует строку в ActionType
func ParseAction(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsMove true для четырех направлений.
func (a ActionType) IsMove() bool {
	return a >= ActionMoveUp && a <= ActionMoveRight
}

// Step - смещение в клетках для направления движения.
func (a ActionType) Step() (dx, dy int) {
	switch a {
	case ActionMoveUp:
		return 0, -1
	case ActionMoveDown:
		return 0, 1
	case ActionMoveLeft:
		return -1, 0
	case ActionMoveRight:
		return 1, 0
	}
	return 0, 0
}

// MoveActions - все направления в фиксированном порядке.
var MoveActions = []ActionType{ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight}
