package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/systems"
)

// alphaRamp 按透明度从低到高选择字符
var alphaRamp = []string{".", ":", "*", "o", "@"}

// cell is the drawable TerminalRenderer hands out for one particle.
type cell struct {
	p     *particle.Particle
	glyph string // Extra["glyph"], empty means pick by alpha
	index int
}

// TerminalRenderer draws particles as colored glyphs on a tcell screen.
//
// The world rectangle [0, WorldWidth) × [0, WorldHeight) is stretched over
// the whole screen, so effects authored for the ebiten viewer play unchanged
// in a terminal.
type TerminalRenderer struct {
	screen tcell.Screen

	WorldWidth, WorldHeight float64

	cells []*cell
}

// NewTerminalRenderer creates a renderer drawing onto screen.
func NewTerminalRenderer(screen tcell.Screen, worldWidth, worldHeight float64) *TerminalRenderer {
	return &TerminalRenderer{
		screen:      screen,
		WorldWidth:  worldWidth,
		WorldHeight: worldHeight,
	}
}

// NewDrawable implements systems.RenderBackend.
func (r *TerminalRenderer) NewDrawable(p *particle.Particle) systems.Drawable {
	glyph, _ := p.Extra["glyph"].(string)
	return &cell{p: p, glyph: glyph, index: -1}
}

// AddDrawable implements systems.RenderBackend.
func (r *TerminalRenderer) AddDrawable(d systems.Drawable) {
	c, ok := d.(*cell)
	if !ok || c.index >= 0 {
		return
	}
	c.index = len(r.cells)
	r.cells = append(r.cells, c)
}

// RemoveDrawable implements systems.RenderBackend.
func (r *TerminalRenderer) RemoveDrawable(d systems.Drawable) {
	c, ok := d.(*cell)
	if !ok || c.index < 0 || c.index >= len(r.cells) || r.cells[c.index] != c {
		return
	}
	last := len(r.cells) - 1
	r.cells[c.index] = r.cells[last]
	r.cells[c.index].index = c.index
	r.cells[last] = nil
	r.cells = r.cells[:last]
	c.index = -1
}

// Len returns the number of cells in the render list.
func (r *TerminalRenderer) Len() int {
	return len(r.cells)
}

// Draw puts every visible particle on the screen. The caller clears the
// screen before and calls Show after.
func (r *TerminalRenderer) Draw() {
	for _, c := range r.cells {
		if !c.p.Alive() || c.p.Alpha <= 0 {
			continue
		}
		x, y, ok := r.toCell(c.p.Position.X, c.p.Position.Y)
		if !ok {
			continue
		}
		glyph := c.glyph
		if glyph == "" {
			glyph = glyphForAlpha(c.p.Alpha)
		}
		r.putGlyph(x, y, glyph, particleStyle(c.p))
	}
}

// toCell maps a world position to a screen cell; ok is false off screen.
func (r *TerminalRenderer) toCell(wx, wy float64) (x, y int, ok bool) {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 || r.WorldWidth <= 0 || r.WorldHeight <= 0 {
		return 0, 0, false
	}
	x = int(math.Floor(wx * float64(w) / r.WorldWidth))
	y = int(math.Floor(wy * float64(h) / r.WorldHeight))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}

// ToWorld maps a screen cell to the world position of its center.
func (r *TerminalRenderer) ToWorld(x, y int) (wx, wy float64) {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	wx = (float64(x) + 0.5) * r.WorldWidth / float64(w)
	wy = (float64(y) + 0.5) * r.WorldHeight / float64(h)
	return wx, wy
}

// DrawText writes text starting at (x, y), advancing by display width.
func (r *TerminalRenderer) DrawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		s := string(ch)
		r.putGlyph(x, y, s, style)
		x += max(runewidth.StringWidth(s), 1)
	}
}

func (r *TerminalRenderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// 宽字符占两列，填充第二列避免残影
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

func glyphForAlpha(alpha float64) string {
	i := int(clamp01(alpha) * float64(len(alphaRamp)))
	if i >= len(alphaRamp) {
		i = len(alphaRamp) - 1
	}
	return alphaRamp[i]
}

// particleStyle 前景色为粒子颜色，按透明度压暗
func particleStyle(p *particle.Particle) tcell.Style {
	cr, cg, cb := unpackTint(p.Tint)
	a := float32(clamp01(p.Alpha))
	fg := tcell.NewRGBColor(
		int32(math.Round(float64(cr*a*255))),
		int32(math.Round(float64(cg*a*255))),
		int32(math.Round(float64(cb*a*255))),
	)
	return tcell.StyleDefault.Foreground(fg)
}
