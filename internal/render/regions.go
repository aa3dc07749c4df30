package render

// Rect - прямоугольник в пикселях экрана.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

type region struct {
	id     string
	rect   Rect
	action func()
}

// Regions - постоянный реестр кликабельных областей (кнопки меню, HUD).
// Области регистрируются один раз, клик проверяется один раз на событие.
// Побеждает последняя добавленная область (она рисуется сверху).
type Regions struct {
	items []region
}

// Add добавляет или заменяет область с таким id.
func (r *Regions) Add(id string, rect Rect, action func()) {
	for i := range r.items {
		if r.items[i].id == id {
			r.items[i] = region{id: id, rect: rect, action: action}
			return
		}
	}
	r.items = append(r.items, region{id: id, rect: rect, action: action})
}

func (r *Regions) Remove(id string) {
	for i := range r.items {
		if r.items[i].id == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

func (r *Regions) Clear() { r.items = nil }

func (r *Regions) Len() int { return len(r.items) }

// Click вызывает действие верхней области под точкой. Возвращает id или "".
func (r *Regions) Click(x, y float64) string {
	for i := len(r.items) - 1; i >= 0; i-- {
		it := r.items[i]
		if it.rect.Contains(x, y) {
			if it.action != nil {
				it.action()
			}
			return it.id
		}
	}
	return ""
}
