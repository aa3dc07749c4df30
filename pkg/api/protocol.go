package api

// --- СОБЫТИЯ ТРАНСПОРТА ---

// Служебные события сокета (генерирует сам транспорт).
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"
)

// СЕРВЕР -> КЛИЕНТ
const (
	// EventGameState несет полный снапшот (с картой).
	EventGameState = "game_state"
	// EventGameUpdate несет частичное обновление: сущности и/или дельты карты.
	EventGameUpdate = "game_update"
	EventPlayerLeft = "player_left"
	EventGameOver   = "game_over"
)

// КЛИЕНТ -> СЕРВЕР
const (
	EventCreateGame   = "create_game"
	EventJoinGame     = "join_game"
	EventGetGameState = "get_game_state"
	// EventInput - самое частое сообщение, без подтверждения.
	EventInput = "input"
	// EventPlaceBomb - дискретное действие, дебаунсится клиентом.
	EventPlaceBomb = "place_bomb"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// GameStateView это полный снимок игры. Map присутствует всегда,
// иначе сообщение считается конвертом-обновлением.
type GameStateView struct {
	Players     map[string]PlayerView `json:"players"`
	Enemies     []EnemyView           `json:"enemies"`
	Projectiles []ProjectileView      `json:"projectiles"`
	Pickups     []PickupView          `json:"pickups"`

	// Map - коды клеток по строкам: Map[y][x].
	Map [][]int `json:"map,omitempty"`

	Level         int     `json:"level"`
	RemainingTime float64 `json:"remainingTime"`
	Status        string  `json:"status"`
}

// GameUpdateView это частичное обновление. Любое поле может отсутствовать.
// Пустой массив и отсутствующий массив - разные вещи (см. Complete).
type GameUpdateView struct {
	Players     map[string]PlayerView `json:"players,omitempty"`
	Enemies     []EnemyView           `json:"enemies,omitempty"`
	Projectiles []ProjectileView      `json:"projectiles,omitempty"`
	Pickups     []PickupView          `json:"pickups,omitempty"`

	// MapDelta - упорядоченный список изменений клеток.
	MapDelta []CellDeltaView `json:"mapDelta,omitempty"`

	Level         *int     `json:"level,omitempty"`
	RemainingTime *float64 `json:"remainingTime,omitempty"`
	Status        *string  `json:"status,omitempty"`

	// Complete=false означает, что пришедшие списки не исчерпывающие:
	// сущности, которых нет в списке, не удаляются. По умолчанию true.
	Complete *bool `json:"complete,omitempty"`
}

// CellDeltaView - изменение одной клетки. Координаты в клетках.
type CellDeltaView struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Type int `json:"type"`
}

// PlayerView это DTO игрока. Позиция в пикселях.
type PlayerView struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Size         float64 `json:"size"`
	Lives        int     `json:"lives"`
	Bombs        int     `json:"bombs"`
	Secondary    int     `json:"secondary,omitempty"`
	Invulnerable bool    `json:"invulnerable,omitempty"`
	Team         string  `json:"team,omitempty"`
	UnitType     string  `json:"unitType,omitempty"`
}

type EnemyView struct {
	ID        string  `json:"id"`
	Kind      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Lives     int     `json:"lives"`
	Destroyed bool    `json:"destroyed,omitempty"`
}

type ProjectileView struct {
	ID        string  `json:"id"`
	Kind      string  `json:"type"`
	OwnerID   string  `json:"ownerId,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Exploding bool    `json:"exploding,omitempty"`
}

type PickupView struct {
	ID   string  `json:"id"`
	Kind string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// PlayerLeftView - игрок покинул игру.
type PlayerLeftView struct {
	PlayerID string `json:"playerId"`
}

// GameOverView - игра окончена.
type GameOverView struct {
	Reason   string `json:"reason,omitempty"`
	WinnerID string `json:"winnerId,omitempty"`
}

// ConnectErrorView - причина ошибки подключения (генерирует транспорт).
type ConnectErrorView struct {
	// Code - HTTP-код рукопожатия, если он известен (401/403 - ошибка авторизации).
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// DisconnectView - причина разрыва (генерирует транспорт).
type DisconnectView struct {
	Reason string `json:"reason,omitempty"`
}

// IsAuthFailure true для ошибок авторизации.
func (e ConnectErrorView) IsAuthFailure() bool {
	return e.Code == 401 || e.Code == 403
}

// --- КЛИЕНТ -> СЕРВЕР ---

// CreateGameResponse - ответ на create_game.
type CreateGameResponse struct {
	Success bool   `json:"success"`
	GameID  string `json:"gameId,omitempty"`
	Message string `json:"message,omitempty"`
}

// JoinGameRequest - вход в игру.
type JoinGameRequest struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId,omitempty"`
}

// JoinGameResponse - ответ на join_game. PlayerID может назначить сервер.
type JoinGameResponse struct {
	Success  bool           `json:"success"`
	PlayerID string         `json:"playerId,omitempty"`
	State    *GameStateView `json:"gameState,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// GameStateRequest - явный запрос полного состояния (ресинк).
// ID игрока не передается: сервер определяет его по соединению.
type GameStateRequest struct {
	GameID string `json:"gameId"`
}

// GameStateResponse - ответ на get_game_state.
type GameStateResponse struct {
	Success bool           `json:"success"`
	State   *GameStateView `json:"gameState,omitempty"`
	Message string         `json:"message,omitempty"`
}

// InputPayload - текущее состояние ввода. Отправляется каждый кадр.
type InputPayload struct {
	GameID string      `json:"gameId"`
	Inputs InputFields `json:"inputs"`
}

// InputFields - флаги направлений.
type InputFields struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// PlaceBombPayload - дискретное действие "поставить бомбу".
type PlaceBombPayload struct {
	GameID string `json:"gameId"`
}
