package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/domain"
	"bomberman-client/pkg/api"
)

// GridFromCodes собирает карту из кодов клеток. Неизвестные коды превращаются
// в пустые клетки: лучше показать дыру, чем потерять весь снапшот.
func GridFromCodes(rows [][]int, log logrus.FieldLogger) (*domain.Grid, error) {
	cells := make([][]domain.CellType, len(rows))
	unknown := 0
	for y, row := range rows {
		cells[y] = make([]domain.CellType, len(row))
		for x, code := range row {
			t, ok := domain.CellTypeFromCode(code)
			if !ok {
				unknown++
			}
			cells[y][x] = t
		}
	}
	if unknown > 0 {
		log.WithField("cells", unknown).Warn("Data integrity: unknown cell codes replaced with EMPTY")
	}
	grid, err := domain.GridFromRows(cells)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	return grid, nil
}

// SnapshotFromView переводит полный снапшот с провода в доменную модель.
func SnapshotFromView(v *api.GameStateView, log logrus.FieldLogger) (*domain.Snapshot, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	grid, err := GridFromCodes(v.Map, log)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{
		Players:     playersFromView(v.Players),
		Enemies:     enemiesFromView(v.Enemies),
		Projectiles: projectilesFromView(v.Projectiles),
		Pickups:     pickupsFromView(v.Pickups),
		Grid:        grid,
		Meta: domain.Meta{
			Level:         v.Level,
			RemainingTime: v.RemainingTime,
			Status:        v.Status,
		},
	}, nil
}

// EnvelopeFromStateView - game_state без карты. Такой снапшот не может быть базой,
// поэтому он идет как исчерпывающее обновление сущностей поверх кэша.
func EnvelopeFromStateView(v *api.GameStateView) *domain.PartialEnvelope {
	level, remaining, status := v.Level, v.RemainingTime, v.Status
	env := &domain.PartialEnvelope{
		Players:     playersFromView(v.Players),
		Enemies:     enemiesFromView(v.Enemies),
		Projectiles: projectilesFromView(v.Projectiles),
		Pickups:     pickupsFromView(v.Pickups),
		Meta:        domain.MetaPatch{Level: &level, RemainingTime: &remaining},
	}
	if status != "" {
		env.Meta.Status = &status
	}
	return env
}

// EnvelopeFromView переводит game_update. Дельты с неизвестным типом клетки
// отбрасываются так же, как дельты вне карты.
func EnvelopeFromView(v *api.GameUpdateView, log logrus.FieldLogger) *domain.PartialEnvelope {
	env := &domain.PartialEnvelope{
		Players:     playersFromView(v.Players),
		Enemies:     enemiesFromView(v.Enemies),
		Projectiles: projectilesFromView(v.Projectiles),
		Pickups:     pickupsFromView(v.Pickups),
		Meta: domain.MetaPatch{
			Level:         v.Level,
			RemainingTime: v.RemainingTime,
			Status:        v.Status,
		},
		Complete: v.Complete,
	}
	if v.MapDelta != nil {
		env.MapDelta = make([]domain.CellDelta, 0, len(v.MapDelta))
		for _, d := range v.MapDelta {
			t, ok := domain.CellTypeFromCode(d.Type)
			if !ok {
				log.WithFields(logrus.Fields{
					"x": d.X, "y": d.Y, "type": d.Type,
				}).Warn("Data integrity: cell delta with unknown type, dropped")
				continue
			}
			env.MapDelta = append(env.MapDelta, domain.CellDelta{X: d.X, Y: d.Y, Type: t})
		}
	}
	return env
}

func playersFromView(in map[string]api.PlayerView) map[string]domain.PlayerState {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.PlayerState, len(in))
	for id, p := range in {
		out[id] = domain.PlayerState{
			ID:           id,
			X:            p.X,
			Y:            p.Y,
			Size:         p.Size,
			Lives:        p.Lives,
			Bombs:        p.Bombs,
			Secondary:    p.Secondary,
			Invulnerable: p.Invulnerable,
			Team:         p.Team,
			UnitType:     p.UnitType,
		}
	}
	return out
}

func enemiesFromView(in []api.EnemyView) []domain.EnemyState {
	if in == nil {
		return nil
	}
	out := make([]domain.EnemyState, len(in))
	for i, e := range in {
		out[i] = domain.EnemyState{
			ID: e.ID, Kind: e.Kind, X: e.X, Y: e.Y,
			Size: e.Size, Lives: e.Lives, Destroyed: e.Destroyed,
		}
	}
	return out
}

func projectilesFromView(in []api.ProjectileView) []domain.ProjectileState {
	if in == nil {
		return nil
	}
	out := make([]domain.ProjectileState, len(in))
	for i, p := range in {
		out[i] = domain.ProjectileState{
			ID: p.ID, Kind: p.Kind, OwnerID: p.OwnerID, X: p.X, Y: p.Y,
			Radius: p.Radius, Exploding: p.Exploding,
		}
	}
	return out
}

func pickupsFromView(in []api.PickupView) []domain.PickupState {
	if in == nil {
		return nil
	}
	out := make([]domain.PickupState, len(in))
	for i, p := range in {
		out[i] = domain.PickupState{ID: p.ID, Kind: p.Kind, X: p.X, Y: p.Y, Size: p.Size}
	}
	return out
}

// StateViewFromSnapshot - обратное преобразование (офлайн-сервер, отладка).
func StateViewFromSnapshot(s *domain.Snapshot) api.GameStateView {
	v := api.GameStateView{
		Players:       make(map[string]api.PlayerView, len(s.Players)),
		Enemies:       make([]api.EnemyView, 0, len(s.Enemies)),
		Projectiles:   make([]api.ProjectileView, 0, len(s.Projectiles)),
		Pickups:       make([]api.PickupView, 0, len(s.Pickups)),
		Level:         s.Meta.Level,
		RemainingTime: s.Meta.RemainingTime,
		Status:        s.Meta.Status,
	}
	for id, p := range s.Players {
		v.Players[id] = api.PlayerView{
			X: p.X, Y: p.Y, Size: p.Size, Lives: p.Lives, Bombs: p.Bombs,
			Secondary: p.Secondary, Invulnerable: p.Invulnerable, Team: p.Team, UnitType: p.UnitType,
		}
	}
	for _, e := range s.Enemies {
		v.Enemies = append(v.Enemies, api.EnemyView{
			ID: e.ID, Kind: e.Kind, X: e.X, Y: e.Y, Size: e.Size, Lives: e.Lives, Destroyed: e.Destroyed,
		})
	}
	for _, p := range s.Projectiles {
		v.Projectiles = append(v.Projectiles, api.ProjectileView{
			ID: p.ID, Kind: p.Kind, OwnerID: p.OwnerID, X: p.X, Y: p.Y, Radius: p.Radius, Exploding: p.Exploding,
		})
	}
	for _, p := range s.Pickups {
		v.Pickups = append(v.Pickups, api.PickupView{ID: p.ID, Kind: p.Kind, X: p.X, Y: p.Y, Size: p.Size})
	}
	if s.Grid != nil {
		v.Map = make([][]int, s.Grid.Height())
		for y, row := range s.Grid.Rows {
			v.Map[y] = make([]int, len(row))
			for x, c := range row {
				v.Map[y][x] = int(c)
			}
		}
	}
	return v
}
