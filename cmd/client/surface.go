package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugFontHeight - высота строки ebitenutil.DebugPrint.
const debugFontHeight = 16

// canvas - render.Surface поверх offscreen-изображения ebiten.
// Сцена рисует в него из тика цикла (Update), Draw только копирует на экран.
type canvas struct {
	img *ebiten.Image
}

func newCanvas(w, h int) *canvas {
	return &canvas{img: ebiten.NewImage(max(w, 1), max(h, 1))}
}

func (c *canvas) FillRect(x, y, w, h float64, clr color.RGBA) {
	vector.DrawFilledRect(c.img, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func (c *canvas) Arc(cx, cy, r float64, clr color.RGBA) {
	vector.DrawFilledCircle(c.img, float32(cx), float32(cy), float32(r), clr, true)
}

// Text: отладочный шрифт одноцветный, цвет игнорируется.
func (c *canvas) Text(x, y float64, s string, _ color.RGBA) {
	top := int(y) - debugFontHeight + 4
	if top < 0 {
		top = 0
	}
	ebitenutil.DebugPrintAt(c.img, s, int(x), top)
}

func (c *canvas) Gradient(x, y, w, h float64, from, to color.RGBA) {
	rows := int(h)
	if rows <= 0 {
		return
	}
	for i := 0; i < rows; i++ {
		t := float64(i) / float64(rows)
		clr := color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: lerp(from.A, to.A, t),
		}
		vector.DrawFilledRect(c.img, float32(x), float32(y)+float32(i), float32(w), 1, clr, false)
	}
}

func (c *canvas) Resize(w, h int) {
	b := c.img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return
	}
	c.img.Deallocate()
	c.img = ebiten.NewImage(max(w, 1), max(h, 1))
	ebiten.SetWindowSize(max(w, 1), max(h, 1))
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
