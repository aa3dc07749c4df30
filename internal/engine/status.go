package engine

// Status - состояние сессии, которое видит UI.
type Status uint8

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusJoining
	StatusPlaying
	StatusReconnecting
	StatusDisconnected
	StatusGameOver
	StatusAuthRequired
)

var statusToString = map[Status]string{
	StatusIdle:         "idle",
	StatusConnecting:   "connecting",
	StatusJoining:      "joining",
	StatusPlaying:      "playing",
	StatusReconnecting: "reconnecting",
	StatusDisconnected: "disconnected",
	StatusGameOver:     "game_over",
	StatusAuthRequired: "auth_required",
}

func (s Status) String() string {
	if val, ok := statusToString[s]; ok {
		return val
	}
	return "unknown"
}

// StatusFunc получает смену состояния и сообщение для пользователя (может быть пустым).
type StatusFunc func(status Status, message string)
