package render

import (
	"sort"

	"bomberman-client/internal/domain"
)

// sortedPlayerIDs - детерминированный порядок отрисовки игроков.
func sortedPlayerIDs(players map[string]domain.PlayerState) []string {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
