package domain

// Статусы игры (Meta.Status)
const (
	GameStatusPending  = "PENDING"
	GameStatusActive   = "ACTIVE"
	GameStatusPaused   = "PAUSED"
	GameStatusGameOver = "GAME_OVER"
)

// PlayerState - состояние игрока. Принадлежит серверу: клиент только перезаписывает его целиком.
type PlayerState struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Size         float64 `json:"size"`
	Lives        int     `json:"lives"`
	Bombs        int     `json:"bombs"`     // основное оружие
	Secondary    int     `json:"secondary"` // вторичное оружие
	Invulnerable bool    `json:"invulnerable"`
	Team         string  `json:"team,omitempty"`
	UnitType     string  `json:"unitType,omitempty"`
}

// Center возвращает центр спрайта игрока в пикселях.
func (p PlayerState) Center() Vec2 {
	return Vec2{X: p.X + p.Size/2, Y: p.Y + p.Size/2}
}

type EnemyState struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Lives     int     `json:"lives"`
	Destroyed bool    `json:"destroyed,omitempty"`
}

// ProjectileState - бомбы, пули и прочие снаряды.
type ProjectileState struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	OwnerID   string  `json:"ownerId,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Exploding bool    `json:"exploding,omitempty"`
}

type PickupState struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Meta - служебная часть снапшота.
type Meta struct {
	Level         int     `json:"level"`
	RemainingTime float64 `json:"remainingTime"`
	Status        string  `json:"status"`
}

// Snapshot - полное состояние игры, видимое клиенту.
// Grid == nil означает конверт-обновление (без базы).
type Snapshot struct {
	Players     map[string]PlayerState `json:"players"`
	Enemies     []EnemyState           `json:"enemies"`
	Projectiles []ProjectileState      `json:"projectiles"`
	Pickups     []PickupState          `json:"pickups"`
	Grid        *Grid                  `json:"grid,omitempty"`
	Meta        Meta                   `json:"meta"`
}

// IsFull true, если снапшот несет карту целиком.
func (s *Snapshot) IsFull() bool {
	return s != nil && s.Grid != nil
}

// Player ищет игрока по ID.
func (s *Snapshot) Player(id string) (PlayerState, bool) {
	if s == nil || s.Players == nil {
		return PlayerState{}, false
	}
	p, ok := s.Players[id]
	return p, ok
}

// MetaPatch - частичное обновление Meta (nil - поле не пришло).
type MetaPatch struct {
	Level         *int
	RemainingTime *float64
	Status        *string
}

// PartialEnvelope - инкрементальное обновление, требующее базовой карты в кэше.
// nil-список означает "не пришел"; пустой не-nil список - "пришел пустым".
type PartialEnvelope struct {
	Players     map[string]PlayerState
	Enemies     []EnemyState
	Projectiles []ProjectileState
	Pickups     []PickupState
	MapDelta    []CellDelta
	Meta        MetaPatch

	// Complete - признак исчерпывающего набора. nil трактуется как true:
	// пришедший список заменяет старый целиком, отсутствующие ID удаляются.
	Complete *bool
}

// Exhaustive возвращает итоговое значение флага Complete.
func (e *PartialEnvelope) Exhaustive() bool {
	return e.Complete == nil || *e.Complete
}
