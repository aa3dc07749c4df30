package render

import "image/color"

// Surface - 2D-поверхность, на которой рисует ядро. Координаты в пикселях экрана.
type Surface interface {
	FillRect(x, y, w, h float64, c color.RGBA)
	// Arc рисует закрашенный круг.
	Arc(cx, cy, r float64, c color.RGBA)
	Text(x, y float64, s string, c color.RGBA)
	// Gradient - вертикальный градиент from сверху, to снизу.
	Gradient(x, y, w, h float64, from, to color.RGBA)
	Resize(width, height int)
}
