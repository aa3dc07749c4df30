package render

import (
	"fmt"
	"image/color"

	"bomberman-client/internal/domain"
)

// Glyph - упакованный цветной символ клетки.
// Использует 32 бита (uint32):
//
//	[0:8] - символ (для текстового дампа карты) - маска 0xFF
//	[8:32] - RGB-цвет заливки - маска 0xFFFFFF
type Glyph uint32

const (
	bitsChar  = 8
	bitsColor = 24

	shiftColor = bitsChar

	maskChar  = (1 << bitsChar) - 1  // 0xFF
	maskColor = (1 << bitsColor) - 1 // 0xFFFFFF
)

// MakeGlyph создает Glyph из RGB-цвета 0xRRGGBB и символа.
// Учитываются только младшие 24 бита цвета.
//
//	glyph := MakeGlyph(0xFFA500, 'A') // 0xFFA50041
func MakeGlyph(colorRGB uint32, char byte) Glyph {
	return Glyph((colorRGB&maskColor)<<shiftColor | (uint32(char) & maskChar))
}

// Color извлекает 24-битный RGB-цвет.
func (g Glyph) Color() uint32 {
	return uint32(g>>shiftColor) & maskColor
}

// Char извлекает символ.
func (g Glyph) Char() byte {
	return byte(g & maskChar)
}

// RGBA - цвет для поверхности рисования (непрозрачный).
func (g Glyph) RGBA() color.RGBA {
	c := g.Color()
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
}

// String формат: "Glyph{char='A', color=#FFA500}"
func (g Glyph) String() string {
	char := g.Char()
	charStr := string([]byte{char})

	// Для непечатаемых символов показываем hex
	if char < 32 || char > 126 {
		charStr = fmt.Sprintf("\\x%02X", char)
	}
	return fmt.Sprintf("Glyph{char='%s', color=%s}", charStr, g.HexColor())
}

// HexColor возвращает HEX-представление цвета (например, "#00FF00").
func (g Glyph) HexColor() string {
	return fmt.Sprintf("#%06X", g.Color())
}

// Palette - как выглядит каждый тип клетки.
type Palette map[domain.CellType]Glyph

// DefaultPalette - стандартная раскраска арены.
func DefaultPalette() Palette {
	return Palette{
		domain.CellEmpty:          MakeGlyph(0x1F3B1F, '.'),
		domain.CellSolidWall:      MakeGlyph(0x5A5A5A, '#'),
		domain.CellBreakableBlock: MakeGlyph(0x9C6B30, '%'),
		domain.CellPlayerSpawn:    MakeGlyph(0x2B4F2B, 'S'),
		domain.CellEnemySpawn:     MakeGlyph(0x4F2B2B, 'E'),
		domain.CellLevelExit:      MakeGlyph(0x3FA7D6, '>'),
	}
}

// Glyph для неизвестного типа - пурпурный '?', чтобы дыру было видно.
func (p Palette) Glyph(c domain.CellType) Glyph {
	if g, ok := p[c]; ok {
		return g
	}
	return MakeGlyph(0xFF00FF, '?')
}

// Dump - текстовое представление карты (логи, /debug/world, бот).
func (p Palette) Dump(g *domain.Grid) string {
	if g == nil {
		return ""
	}
	buf := make([]byte, 0, (g.Width()+1)*g.Height())
	for _, row := range g.Rows {
		for _, c := range row {
			buf = append(buf, p.Glyph(c).Char())
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
