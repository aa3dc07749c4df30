package state

import "bomberman-client/internal/domain"

// mergeByID сливает список сущностей.
//   - incoming == nil: список не пришел, старый остается как есть;
//   - exhaustive: пришедший список заменяет старый целиком;
//   - иначе: замена по ID, новые ID добавляются в конец, отсутствующие не удаляются.
func mergeByID[T any](old, incoming []T, id func(T) string, exhaustive bool) []T {
	if incoming == nil {
		return old
	}
	if exhaustive {
		return append(make([]T, 0, len(incoming)), incoming...)
	}

	out := append(make([]T, 0, len(old)+len(incoming)), old...)
	index := make(map[string]int, len(out))
	for i, e := range out {
		index[id(e)] = i
	}
	for _, e := range incoming {
		if i, ok := index[id(e)]; ok {
			out[i] = e
			continue
		}
		index[id(e)] = len(out)
		out = append(out, e)
	}
	return out
}

func mergePlayers(old, incoming map[string]domain.PlayerState, exhaustive bool) map[string]domain.PlayerState {
	out := make(map[string]domain.PlayerState, len(incoming)+len(old))
	if !exhaustive {
		for id, p := range old {
			out[id] = p
		}
	}
	for id, p := range incoming {
		out[id] = p
	}
	return out
}
