package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (r JoinGameRequest) Validate() error {
	if r.GameID == "" {
		return errors.New("gameId is required")
	}
	return nil
}

func (r GameStateRequest) Validate() error {
	if r.GameID == "" {
		return errors.New("gameId is required")
	}
	return nil
}

// Validate проверяет, что карта прямоугольная и непустая.
// Отдельные коды клеток не проверяются: неизвестный код - это проблема данных,
// а не формы сообщения.
func (v GameStateView) Validate() error {
	if len(v.Map) == 0 || len(v.Map[0]) == 0 {
		return errors.New("map is empty")
	}
	width := len(v.Map[0])
	for _, row := range v.Map {
		if len(row) != width {
			return errors.New("map rows have different lengths")
		}
	}
	return nil
}

func (p InputPayload) Validate() error {
	if p.GameID == "" {
		return errors.New("gameId is required")
	}
	if p.Inputs.Up && p.Inputs.Down {
		return errors.New("up and down are mutually exclusive")
	}
	if p.Inputs.Left && p.Inputs.Right {
		return errors.New("left and right are mutually exclusive")
	}
	return nil
}
