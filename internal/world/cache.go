package world

import (
	"errors"

	"github.com/brunoga/deep/v2"
	"github.com/sirupsen/logrus"

	"bomberman-client/internal/domain"
)

// ErrCacheMiss - дельта пришла раньше базовой карты.
var ErrCacheMiss = errors.New("world cache has no base grid")

// DeltaResult - итог применения пачки дельт.
type DeltaResult struct {
	Applied int
	Dropped int
	// Err == ErrCacheMiss, если базовой карты нет. Тогда ничего не применено.
	Err error
}

// CacheMiss true, если пачку нужно отбросить и запросить полный ресинк.
func (r DeltaResult) CacheMiss() bool {
	return errors.Is(r.Err, ErrCacheMiss)
}

// Cache хранит локальную копию карты для одной игровой сессии.
//
// Жизненный цикл:
//  1. Создается пустым при входе в игру.
//  2. SetFull - заполняется первым полным снапшотом.
//  3. ApplyDelta - мутируется на месте инкрементальными правками.
//  4. Clear - сбрасывается при смене игры (кэш между играми не переиспользуется).
//
// Кэш не потокобезопасен: им владеет цикл кадров.
type Cache struct {
	grid    *domain.Grid
	version uint64
	log     logrus.FieldLogger
}

func NewCache(log logrus.FieldLogger) *Cache {
	return &Cache{log: log.WithField("component", "world_cache")}
}

// SetFull заменяет карту целиком. Карта копируется: буферы транспорта
// не должны разделять память с долгоживущим кэшем.
func (c *Cache) SetFull(grid *domain.Grid) {
	if grid == nil {
		c.log.Warn("SetFull called with nil grid, ignoring")
		return
	}
	c.grid = deep.MustCopy(grid)
	c.version++
	c.log.WithFields(logrus.Fields{
		"width":   c.grid.Width(),
		"height":  c.grid.Height(),
		"version": c.version,
	}).Debug("Grid replaced")
}

// ApplyDelta применяет пачку изменений по порядку; поздние правки одной клетки побеждают.
// Клетки вне карты отбрасываются с предупреждением, остальная пачка продолжает применяться.
func (c *Cache) ApplyDelta(deltas []domain.CellDelta) DeltaResult {
	if c.grid == nil {
		return DeltaResult{Err: ErrCacheMiss}
	}

	var res DeltaResult
	for _, d := range deltas {
		if !c.grid.Set(d.X, d.Y, d.Type) {
			res.Dropped++
			c.log.WithFields(logrus.Fields{
				"x":      d.X,
				"y":      d.Y,
				"type":   d.Type,
				"width":  c.grid.Width(),
				"height": c.grid.Height(),
			}).Warn("Data integrity: cell delta out of range, dropped")
			continue
		}
		res.Applied++
	}
	if res.Applied > 0 {
		c.version++
	}
	return res
}

// Clear забывает карту (смена игры или выход из сессии).
func (c *Cache) Clear() {
	c.grid = nil
	c.version++
}

// Grid возвращает текущую карту только для чтения (или nil).
func (c *Cache) Grid() *domain.Grid {
	return c.grid
}

// HasGrid true, если базовая карта уже получена.
func (c *Cache) HasGrid() bool {
	return c.grid != nil
}

// Version растет при каждом изменении кэша.
func (c *Cache) Version() uint64 {
	return c.version
}
