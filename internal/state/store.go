package state

import (
	"time"

	"github.com/brunoga/deep/v2"
	"github.com/sirupsen/logrus"

	"bomberman-client/internal/domain"
	"bomberman-client/internal/world"
)

// Resyncer запрашивает у сервера полный снапшот. Возвращает false,
// если запрос не отправлен (уже есть неотвеченный запрос).
type Resyncer interface {
	RequestResync(reason string) bool
}

// PartialResult - итог ApplyPartial.
type PartialResult struct {
	Applied bool
	// CacheMiss - конверт отброшен целиком, запрошен ресинк.
	CacheMiss    bool
	CellsDropped int
}

// Store сводит полные и частичные конверты сервера в один согласованный снапшот,
// который можно сразу отдавать рендеру.
//
// Store владеет снапшотом эксклюзивно. Renderable отдает ссылку только для чтения.
// Как и Cache, Store не потокобезопасен: все вызовы идут из цикла кадров.
type Store struct {
	cache  *world.Cache
	resync Resyncer
	clock  func() time.Time
	log    logrus.FieldLogger

	snap       *domain.Snapshot
	lastUpdate time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func NewStore(cache *world.Cache, resync Resyncer, log logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		cache:  cache,
		resync: resync,
		clock:  time.Now,
		log:    log.WithField("component", "state_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetResyncer подключает запросчик ресинка после создания (разрыв циклической зависимости
// Store -> Watchdog -> Store.LastUpdate).
func (s *Store) SetResyncer(r Resyncer) {
	s.resync = r
}

// ApplyFull сохраняет полный снапшот и отдает его карту в WorldCache.
func (s *Store) ApplyFull(snapshot *domain.Snapshot) {
	if snapshot == nil {
		return
	}

	grid := snapshot.Grid
	body := *snapshot
	body.Grid = nil
	stored := deep.MustCopy(&body)

	if stored.Players == nil {
		stored.Players = make(map[string]domain.PlayerState)
	}

	if grid != nil {
		s.cache.SetFull(grid)
	} else {
		s.log.Warn("Full snapshot without grid, keeping cached grid")
	}

	s.snap = stored
	s.lastUpdate = s.clock()
	s.attachGrid()

	s.log.WithFields(logrus.Fields{
		"players": len(stored.Players),
		"enemies": len(stored.Enemies),
		"level":   stored.Meta.Level,
	}).Debug("Full snapshot applied")
}

// ApplyPartial применяет инкрементальный конверт.
// Без базы (нет снапшота или карты) конверт отбрасывается целиком и запрашивается ресинк:
// частичный конверт без базы нельзя безопасно отрисовать.
func (s *Store) ApplyPartial(env *domain.PartialEnvelope) PartialResult {
	if env == nil {
		return PartialResult{}
	}

	if s.snap == nil || !s.cache.HasGrid() {
		return s.cacheMiss("no base snapshot")
	}

	var res PartialResult
	if len(env.MapDelta) > 0 {
		dr := s.cache.ApplyDelta(env.MapDelta)
		if dr.CacheMiss() {
			return s.cacheMiss("delta without base grid")
		}
		res.CellsDropped = dr.Dropped
	}

	exhaustive := env.Exhaustive()
	if env.Players != nil {
		s.snap.Players = mergePlayers(s.snap.Players, env.Players, exhaustive)
	}
	s.snap.Enemies = mergeByID(s.snap.Enemies, env.Enemies, func(e domain.EnemyState) string { return e.ID }, exhaustive)
	s.snap.Projectiles = mergeByID(s.snap.Projectiles, env.Projectiles, func(p domain.ProjectileState) string { return p.ID }, exhaustive)
	s.snap.Pickups = mergeByID(s.snap.Pickups, env.Pickups, func(p domain.PickupState) string { return p.ID }, exhaustive)

	if env.Meta.Level != nil {
		s.snap.Meta.Level = *env.Meta.Level
	}
	if env.Meta.RemainingTime != nil {
		s.snap.Meta.RemainingTime = *env.Meta.RemainingTime
	}
	if env.Meta.Status != nil {
		s.snap.Meta.Status = *env.Meta.Status
	}

	s.lastUpdate = s.clock()
	s.attachGrid()
	res.Applied = true
	return res
}

func (s *Store) cacheMiss(reason string) PartialResult {
	s.log.WithField("reason", reason).Warn("Partial update discarded, requesting resync")
	if s.resync != nil {
		s.resync.RequestResync("cache_miss")
	}
	return PartialResult{CacheMiss: true}
}

// attachGrid подвешивает к снапшоту актуальную карту из кэша, если ссылка устарела.
// Рендер не должен увидеть снапшот с nil-картой, когда в кэше есть валидная.
func (s *Store) attachGrid() {
	if s.snap == nil {
		return
	}
	if current := s.cache.Grid(); s.snap.Grid != current {
		s.snap.Grid = current
	}
}

// RemovePlayer удаляет игрока (событие player_left).
func (s *Store) RemovePlayer(id string) bool {
	if s.snap == nil {
		return false
	}
	if _, ok := s.snap.Players[id]; !ok {
		return false
	}
	delete(s.snap.Players, id)
	return true
}

// SetStatus меняет статус игры (например, на GAME_OVER).
func (s *Store) SetStatus(status string) {
	if s.snap != nil {
		s.snap.Meta.Status = status
	}
}

// Renderable возвращает последний согласованный снапшот или nil. Никогда не блокирует.
// Вызывающий не должен мутировать результат.
func (s *Store) Renderable() *domain.Snapshot {
	if s.snap != nil {
		s.attachGrid()
	}
	return s.snap
}

// LastUpdate - время последнего примененного обновления (нулевое, если их не было).
func (s *Store) LastUpdate() time.Time {
	return s.lastUpdate
}

// Reset забывает снапшот и карту (смена игры).
func (s *Store) Reset() {
	s.snap = nil
	s.lastUpdate = time.Time{}
	s.cache.Clear()
}
