package input

import (
	"bomberman-client/internal/domain"
	"bomberman-client/pkg/api"
)

// State - текущее состояние управления локального игрока.
// Хост (окно или бот) выставляет флаги, цикл кадров читает их каждый тик.
//
// Коммит (бомба) защелкивается: одно нажатие дает ровно один place_bomb,
// следующий возможен только после явного Release.
type State struct {
	up, down, left, right bool

	commitHeld bool
	committed  bool
}

// Set выставляет флаг действия. Для ActionPlaceBomb это нажатие/отпускание коммита.
func (s *State) Set(a domain.ActionType, pressed bool) {
	switch a {
	case domain.ActionMoveUp:
		s.up = pressed
	case domain.ActionMoveDown:
		s.down = pressed
	case domain.ActionMoveLeft:
		s.left = pressed
	case domain.ActionMoveRight:
		s.right = pressed
	case domain.ActionPlaceBomb:
		if pressed {
			s.Press()
		} else {
			s.Release()
		}
	}
}

// Press - клавиша коммита нажата.
func (s *State) Press() {
	s.commitHeld = true
}

// Release сбрасывает защелку коммита.
func (s *State) Release() {
	s.commitHeld = false
	s.committed = false
}

// TakeCommit возвращает true один раз на нажатие.
func (s *State) TakeCommit() bool {
	if !s.commitHeld || s.committed {
		return false
	}
	s.committed = true
	return true
}

// Payload сериализует направления. Противоположные направления гасят друг друга.
func (s *State) Payload(gameID string) api.InputPayload {
	f := api.InputFields{Up: s.up, Down: s.down, Left: s.left, Right: s.right}
	if f.Up && f.Down {
		f.Up, f.Down = false, false
	}
	if f.Left && f.Right {
		f.Left, f.Right = false, false
	}
	return api.InputPayload{GameID: gameID, Inputs: f}
}

// Idle true, если ничего не нажато.
func (s *State) Idle() bool {
	return !s.up && !s.down && !s.left && !s.right && !s.commitHeld
}

// Clear отпускает все (потеря фокуса, смена игры).
func (s *State) Clear() {
	*s = State{}
}
